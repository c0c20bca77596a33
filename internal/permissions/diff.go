package permissions

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders baseline against edited as a unified diff, one line
// per key. Equal sets render as the empty string.
func UnifiedDiff(baseline, edited Set) (string, error) {
	if baseline == edited {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(render(baseline)),
		B:        difflib.SplitLines(render(edited)),
		FromFile: "saved",
		ToFile:   "edited",
		Context:  1,
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("render permission diff: %w", err)
	}
	return out, nil
}

func render(s Set) string {
	var b strings.Builder
	for _, k := range keyOrder {
		level := s.Level(k)
		fmt.Fprintf(&b, "%-14s %4d  %s\n", k.String(), level, LevelLabel(level))
	}
	return b.String()
}
