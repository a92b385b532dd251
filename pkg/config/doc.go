// Package config handles configuration management for obsidian-backup.
//
// Configuration is layered with koanf, later layers winning:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file in the XDG config directory
//  3. a file given with --config
//  4. .obsidian-backup.toml in the source root
//  5. OBSIDIAN_BACKUP_<SECTION>__<KEY> environment variables
//
// Lists replace rather than append, so an ignore list set in a later layer
// is the whole ignore list.
package config
