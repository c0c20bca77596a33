// Package logtail reads the end of the roomperms log file and renders its
// JSON events for humans.
//
// Read keeps a ring buffer of the last N lines, so memory stays bounded by
// N rather than by the file size. Render feeds each JSON line through
// zerolog.ConsoleWriter, the same format the headless commands print to
// stderr; anything that does not parse as an event is passed through.
//
//	lines, err := logtail.Read(cfg.Log.FilePath(), 200)
//	if err != nil {
//		return err
//	}
//	return logtail.Render(os.Stdout, lines, true)
package logtail
