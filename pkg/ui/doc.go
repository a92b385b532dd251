// Package ui renders user-facing output.
//
// Output is either styled for a color terminal or plain text. The choice is
// made once per writer by DetectFormat, which honours NO_COLOR and falls back
// to plain text for pipes, files and dumb terminals. Styles are semantic
// (Success, Error, Skip, ...) and are defined in the embedded styles.yaml.
package ui
