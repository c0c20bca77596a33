package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/five82/roomperms/internal/editor"
	"github.com/five82/roomperms/internal/permissions"
)

// Output formats accepted by Show.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats lists the output formats in help order.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML, FormatTOML}
}

type report struct {
	Room     string          `json:"room" yaml:"room" toml:"room"`
	Sections []sectionReport `json:"sections" yaml:"sections" toml:"sections"`
}

type sectionReport struct {
	Name        string             `json:"name" yaml:"name" toml:"name"`
	Title       string             `json:"title" yaml:"title" toml:"title"`
	Permissions []permissionReport `json:"permissions" yaml:"permissions" toml:"permissions"`
}

type permissionReport struct {
	Key   string `json:"key" yaml:"key" toml:"key"`
	Label string `json:"label" yaml:"label" toml:"label"`
	Level int    `json:"level" yaml:"level" toml:"level"`
	Role  string `json:"role" yaml:"role" toml:"role"`
}

// Show prints the room's permissions grouped by section.
func Show(ctx context.Context, opts Options, format string, w io.Writer) error {
	s, err := open(ctx, opts, true)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	return show(ctx, s.room, s.label(), format, w)
}

func show(ctx context.Context, room editor.Room, label, format string, w io.Writer) error {
	set, err := room.FetchPermissions(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch permissions")
	}
	if set == nil {
		return errors.New("room returned no permissions")
	}
	return writeReport(w, buildReport(label, *set), format)
}

func buildReport(label string, set permissions.Set) report {
	r := report{Room: label}
	for _, section := range permissions.Sections() {
		sr := sectionReport{Name: section.String(), Title: section.Title()}
		for _, key := range section.Items() {
			level := set.Level(key)
			sr.Permissions = append(sr.Permissions, permissionReport{
				Key:   key.String(),
				Label: key.Label(),
				Level: level,
				Role:  permissions.LevelLabel(level),
			})
		}
		r.Sections = append(r.Sections, sr)
	}
	return r
}

func writeReport(w io.Writer, r report, format string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		_, err = io.WriteString(w, renderText(r))
		return errors.Wrap(err, "write report")
	case FormatJSON:
		data, err = json.MarshalIndent(r, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.Marshal(r)
	case FormatTOML:
		data, err = toml.Marshal(r)
	default:
		return errors.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
	if err != nil {
		return errors.Wrapf(err, "encode %s", format)
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "write report")
}

func renderText(r report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Room %s\n", r.Room)
	for _, sr := range r.Sections {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("Action", "Key", "Level", "Who")
		for _, p := range sr.Permissions {
			t.Row(p.Label, p.Key, strconv.Itoa(p.Level), p.Role)
		}
		fmt.Fprintf(&b, "\n%s\n%s\n", sr.Title, t.Render())
	}
	return b.String()
}

// assignment is one parsed key=value argument.
type assignment struct {
	key    permissions.Key
	role   permissions.Role
	byRole bool
	level  int
}

func (a assignment) event() editor.Event {
	if a.byRole {
		return editor.ChangeMinimumRoleForAction{Key: a.key, Role: a.role}
	}
	return editor.ChangeLevelForAction{Key: a.key, Level: a.level}
}

// parseAssignments reads arguments of the form key=role or key=level.
func parseAssignments(args []string) ([]assignment, error) {
	if len(args) == 0 {
		return nil, errors.New("no assignments given (want key=role or key=level)")
	}
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, errors.Errorf("assignment %q is not key=value", arg)
		}
		key, err := permissions.ParseKey(name)
		if err != nil {
			return nil, err
		}
		a := assignment{key: key}
		if role, err := permissions.ParseRole(value); err == nil {
			a.role, a.byRole = role, true
		} else if a.level, err = permissions.ParseLevel(value); err != nil {
			return nil, errors.Wrapf(err, "assignment %q", arg)
		}
		out = append(out, a)
	}
	return out, nil
}

// Apply edits the room's permissions from key=value assignments and saves
// them, printing the pending diff first. dryRun stops after the diff.
func Apply(ctx context.Context, opts Options, args []string, dryRun bool, w io.Writer) error {
	assignments, err := parseAssignments(args)
	if err != nil {
		return err
	}
	s, err := open(ctx, opts, true)
	if err != nil {
		return err
	}
	defer s.close()
	return apply(ctx, s.room, assignments, dryRun, s.cfg.RequestTimeout, w)
}

func apply(ctx context.Context, room editor.Room, assignments []assignment, dryRun bool, timeout time.Duration, w io.Writer) error {
	section, _ := assignments[0].key.Section()
	recorder := &fetchRecorder{Room: room}
	p := editor.New(ctx, section, recorder, editor.WithCallTimeout(timeout))
	defer p.Close()

	p.Activate()
	if err := p.AwaitFetch(ctx); err != nil {
		return err
	}
	if !p.State().Loaded() {
		if err := recorder.lastErr(); err != nil {
			return errors.Wrap(err, "fetch permissions")
		}
		return errors.New("room returned no permissions")
	}

	for _, a := range assignments {
		p.Dispatch(a.event())
	}

	st := p.State()
	if !st.HasChanges() {
		_, err := fmt.Fprintln(w, "no changes")
		return errors.Wrap(err, "write output")
	}
	diff, err := st.Diff()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, diff); err != nil {
		return errors.Wrap(err, "write output")
	}
	if dryRun {
		return nil
	}
	changed := len(st.Changes())

	id, updates := p.Subscribe(1)
	defer p.Unsubscribe(id)
	p.Dispatch(editor.Save{})
	for st = p.State(); !st.SaveAction.IsTerminal(); st = p.State() {
		select {
		case <-updates:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := st.SaveAction.Err(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "saved %d change(s)\n", changed)
	return errors.Wrap(err, "write output")
}

// fetchRecorder keeps the last fetch error, which the presenter only logs.
type fetchRecorder struct {
	editor.Room

	mu  sync.Mutex
	err error
}

func (r *fetchRecorder) FetchPermissions(ctx context.Context) (*permissions.Set, error) {
	set, err := r.Room.FetchPermissions(ctx)
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	return set, err
}

func (r *fetchRecorder) lastErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
