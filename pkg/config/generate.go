package config

import (
	"bytes"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
)

const generatedHeader = `# obsidian-backup configuration
# Save as $XDG_CONFIG_HOME/obsidian-backup/config.toml or as
# .obsidian-backup.toml in the source directory.

`

// Generate renders cfg as a TOML document that Load accepts.
func Generate(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(generatedHeader)

	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return buf.Bytes(), nil
}

// DefaultContent returns the embedded defaults file verbatim, comments included.
func DefaultContent() []byte {
	out := make([]byte, len(defaultConfig))
	copy(out, defaultConfig)
	return out
}
