// Package logger configures the global zerolog logger.
//
// The terminal UI owns stdout and stderr while it runs, so by default logs
// go only to a rolling JSON file (lumberjack). Headless commands add a
// console writer on stderr. At trace level errors carry their pkg/errors
// stack.
package logger
