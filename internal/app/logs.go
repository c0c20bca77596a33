package app

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/five82/roomperms/internal/config"
	"github.com/five82/roomperms/internal/logtail"
)

// Logs prints the last lines of the roomperms log file. The config only
// needs to locate the file, so it is not validated.
func Logs(opts Options, lines int, color bool, w io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	return printLogs(cfg.Log.FilePath(), lines, color, w)
}

func printLogs(path string, lines int, color bool, w io.Writer) error {
	entries, err := logtail.Read(path, lines)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "no log entries in %s\n", path)
		return errors.Wrap(err, "write output")
	}
	return logtail.Render(w, entries, color)
}
