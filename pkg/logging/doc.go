// Package logging configures zerolog for obsidian-backup.
//
// Verbosity maps to levels as -v INFO, -vv DEBUG, -vvv TRACE; without flags
// only warnings and errors are shown.
package logging
