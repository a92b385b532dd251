package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/logging"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "OBSIDIAN_BACKUP_"

// envLevelSeparator separates section and key in environment variable names,
// e.g. OBSIDIAN_BACKUP_PLUGINS__MARKER_FILE.
const envLevelSeparator = "__"

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// LoadOptions selects the configuration layers.
type LoadOptions struct {
	// UserConfigPath defaults to paths.ConfigFilePath(). Missing is fine.
	UserConfigPath string
	// ExplicitPath comes from --config and must exist when set.
	ExplicitPath string
	// SourceRoot is searched for paths.RootConfigFileName. Empty skips it.
	SourceRoot string
	// Overrides are applied after every other layer, keyed like "plugins.ignore".
	Overrides map[string]interface{}
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}
	return unmarshal(k)
}

// Load builds the effective configuration from all layers and validates it.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config, optional
	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath = paths.ConfigFilePath()
	}
	if err := loadOptionalFile(k, userPath); err != nil {
		return nil, err
	}

	// 3. Explicit config, required
	if opts.ExplicitPath != "" {
		explicit := paths.ExpandHome(opts.ExplicitPath)
		if _, err := os.Stat(explicit); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", explicit)
		}
		if err := loadFile(k, explicit); err != nil {
			return nil, err
		}
	}

	// 4. Per-tree config in the source root
	if opts.SourceRoot != "" {
		if err := loadOptionalFile(k, filepath.Join(opts.SourceRoot, paths.RootConfigFileName)); err != nil {
			return nil, err
		}
	}

	// 5. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// 6. Programmatic overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Strs("ignore", cfg.Plugins.Ignore).
		Str("markerFile", cfg.Plugins.MarkerFile).
		Strs("patterns", cfg.Link.Patterns).
		Strs("extraFiles", cfg.Link.ExtraFiles).
		Msg("Configuration loaded")

	return cfg, nil
}

// envKey maps OBSIDIAN_BACKUP_LINK__EXTRA_FILES to link.extra_files.
// Variables without a section separator, such as OBSIDIAN_BACKUP_STATE_DIR,
// are not configuration keys and are dropped.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if !strings.Contains(key, envLevelSeparator) {
		return ""
	}
	return strings.ReplaceAll(key, envLevelSeparator, ".")
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrConfigLoad, "cannot access config file %s", path)
	}
	return loadFile(k, path)
}

func loadFile(k *koanf.Koanf, path string) error {
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
	}
	logger := logging.GetLogger("config")
	logger.Debug().Str("path", path).Msg("Loaded config file")
	return nil
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				trimSliceHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	return &cfg, nil
}
