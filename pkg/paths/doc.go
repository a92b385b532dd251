// Package paths provides centralized path handling for obsidian-backup.
// It resolves the XDG directories used for configuration and logs and
// normalizes the source and destination roots given on the command line.
//
// Directory layout:
//
//	$XDG_CONFIG_HOME/obsidian-backup/config.toml   user configuration
//	$XDG_STATE_HOME/obsidian-backup/obsidian-backup.log
//	<source>/.obsidian-backup.toml                 per-tree configuration
//
// OBSIDIAN_BACKUP_CONFIG_DIR and OBSIDIAN_BACKUP_STATE_DIR replace the XDG
// locations outright.
package paths
