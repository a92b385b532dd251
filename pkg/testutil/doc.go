// Package testutil provides helpers shared by the obsidian-backup tests.
//
// Tests that create hard links need the real filesystem and build their
// trees under t.TempDir() with CreateFile and CreateDir. Tests of read-only
// behaviour can use MemoryTree, which lays out the same kind of tree on an
// in-memory afero filesystem.
package testutil
