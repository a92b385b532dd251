package ui

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Semantic style names defined in styles.yaml.
const (
	StyleHeader  = "Header"
	StyleSuccess = "Success"
	StyleError   = "Error"
	StyleSkip    = "Skip"
	StyleInfo    = "Info"
	StyleMuted   = "Muted"
	StyleMarked  = "Marked"
	StylePath    = "Path"
)

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
}

// StyleConfig is the parsed form of a styles file.
type StyleConfig struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedStyles []byte

// ParseStyles parses a styles document. Styles may only reference colors
// defined in the same document.
func ParseStyles(data []byte) (*StyleConfig, error) {
	var cfg StyleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}
	for name, def := range cfg.Styles {
		for _, ref := range []string{def.Foreground, def.Background} {
			if ref == "" {
				continue
			}
			if _, ok := cfg.Colors[ref]; !ok {
				return nil, fmt.Errorf("style %s references unknown color %q", name, ref)
			}
		}
	}
	return &cfg, nil
}

// DefaultStyles returns the embedded style set.
func DefaultStyles() *StyleConfig {
	cfg, err := ParseStyles(embeddedStyles)
	if err != nil {
		// Unstyled output is still correct output.
		return &StyleConfig{}
	}
	return cfg
}

// Build turns the definitions into lipgloss styles bound to r.
func (c *StyleConfig) Build(r *lipgloss.Renderer) map[string]lipgloss.Style {
	styles := make(map[string]lipgloss.Style, len(c.Styles))
	for name, def := range c.Styles {
		style := r.NewStyle()
		if def.Bold {
			style = style.Bold(true)
		}
		if def.Italic {
			style = style.Italic(true)
		}
		if def.Underline {
			style = style.Underline(true)
		}
		if color, ok := c.Colors[def.Foreground]; ok {
			style = style.Foreground(lipgloss.AdaptiveColor{Light: color.Light, Dark: color.Dark})
		}
		if color, ok := c.Colors[def.Background]; ok {
			style = style.Background(lipgloss.AdaptiveColor{Light: color.Light, Dark: color.Dark})
		}
		styles[name] = style
	}
	return styles
}
