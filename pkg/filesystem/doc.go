// Package filesystem provides filesystem implementations for obsidian-backup.
//
// NewOS is the production filesystem and the only one that can create hard
// links. NewMemory and Wrap give afero-backed filesystems for tests and for
// the read-only operations.
package filesystem
