// Package app wires configuration, logging, the Matrix client and the
// editor together. It is the composition root behind every command.
//
// # Components
//
//   - app.go: Run, which opens the configured room and starts the TUI
//   - activator.go: background loop that activates a presenter until its
//     snapshot loads, backing off between attempts
//   - headless.go: Show and Apply, the non-interactive commands
//
// # Startup
//
//	Run()
//	 ├─> config.Load() + Validate()   file, env, flag overrides
//	 ├─> logger.Init()                rolling file, console when headless
//	 ├─> matrix.NewClient()
//	 ├─> client.WhoAmI()              M_UNKNOWN_TOKEN → ErrTokenRejected
//	 ├─> matrix.OpenRoom()            resolves #alias to !room id
//	 └─> ui.Run()                     one presenter per section visit,
//	                                  each started by StartActivator
//
// # Errors
//
// A missing room, an invalid config, a rejected token or an unresolvable
// alias ends the run before the UI starts. Once running, fetch failures are
// retried with exponential backoff (2s doubling up to 30s) unless the
// homeserver refuses for good (matrix.IsPermanent: M_FORBIDDEN or
// M_UNKNOWN_TOKEN). Then the loop closes the presenter and the UI shows
// the cause. Save failures are shown to the user and are not fatal.
//
// Apply drives the same editor.Presenter the TUI uses, so headless edits
// follow the same load, edit and save rules.
package app
