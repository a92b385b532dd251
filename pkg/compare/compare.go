// Package compare reports which plugin directories exist on each side of a
// source/destination pair.
package compare

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/logging"
)

// Options configures which subdirectories count as plugin directories.
type Options struct {
	Ignore     []string
	MarkerFile string
}

// Row is one line of the comparison table.
type Row struct {
	Name          string
	InSource      bool
	InDestination bool
}

// Asymmetric reports whether the name exists on only one side.
func (r Row) Asymmetric() bool {
	return r.InSource != r.InDestination
}

// Report is the outcome of comparing two roots.
type Report struct {
	Source      []string
	Destination []string
	Rows        []Row
}

// Equal reports whether both roots hold exactly the same plugin directories.
func (r *Report) Equal() bool {
	for _, row := range r.Rows {
		if row.Asymmetric() {
			return false
		}
	}
	return true
}

// PluginDirs returns the sorted names of the immediate subdirectories of root
// that are not ignored and directly contain the marker file. Anything else is
// silently left out.
func PluginDirs(fs afero.Fs, root string, opts Options) ([]string, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to list %s", root)
	}

	ignored := make(map[string]struct{}, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignored[name] = struct{}{}
	}

	var names []string
	for _, entry := range entries {
		if !isDir(fs, root, entry) {
			continue
		}
		if _, skip := ignored[entry.Name()]; skip {
			continue
		}
		if !hasMarker(fs, filepath.Join(root, entry.Name()), opts.MarkerFile) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// isDir follows symlinks so a linked plugin directory still counts.
func isDir(fs afero.Fs, root string, entry os.FileInfo) bool {
	if entry.Mode()&os.ModeSymlink == 0 {
		return entry.IsDir()
	}
	info, err := fs.Stat(filepath.Join(root, entry.Name()))
	return err == nil && info.IsDir()
}

func hasMarker(fs afero.Fs, dir, marker string) bool {
	info, err := fs.Stat(filepath.Join(dir, marker))
	return err == nil && !info.IsDir()
}

// Compare lists plugin directories under both roots and pairs them by name.
func Compare(fs afero.Fs, source, destination string, opts Options) (*Report, error) {
	logger := logging.GetLogger("compare")
	done := logging.LogOperationStart(logger, "compare")
	defer done()

	src, err := PluginDirs(fs, source, opts)
	if err != nil {
		return nil, err
	}
	dst, err := PluginDirs(fs, destination, opts)
	if err != nil {
		return nil, err
	}

	report := &Report{Source: src, Destination: dst, Rows: pair(src, dst)}

	logger.Info().
		Int("source", len(src)).
		Int("destination", len(dst)).
		Bool("equal", report.Equal()).
		Msg("Compared plugin directories")

	return report, nil
}

// pair merges two sorted name lists into rows of their union.
func pair(src, dst []string) []Row {
	rows := make([]Row, 0, len(src)+len(dst))
	i, j := 0, 0
	for i < len(src) || j < len(dst) {
		switch {
		case j >= len(dst) || (i < len(src) && src[i] < dst[j]):
			rows = append(rows, Row{Name: src[i], InSource: true})
			i++
		case i >= len(src) || dst[j] < src[i]:
			rows = append(rows, Row{Name: dst[j], InDestination: true})
			j++
		default:
			rows = append(rows, Row{Name: src[i], InSource: true, InDestination: true})
			i++
			j++
		}
	}
	return rows
}

// RenderOptions shapes the printed table.
type RenderOptions struct {
	ColumnWidth      int
	SourceTitle      string
	DestinationTitle string

	// Highlight decorates an already padded cell of an asymmetric row.
	// Nil leaves cells plain.
	Highlight func(string) string

	// Success is printed after the table when both sides match.
	Success string
}

// Render writes the two-column table. Names present on only one side are
// wrapped in asterisks.
func (r *Report) Render(w io.Writer, opts RenderOptions) error {
	width := opts.ColumnWidth
	highlight := opts.Highlight
	if highlight == nil {
		highlight = func(s string) string { return s }
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s | %-*s\n", width, opts.SourceTitle, width, opts.DestinationTitle)
	b.WriteString(strings.Repeat("-", 2*width+2))
	b.WriteString("\n")

	for _, row := range r.Rows {
		left := cell(row.Name, row.InSource, row.Asymmetric(), width)
		right := cell(row.Name, row.InDestination, row.Asymmetric(), width)
		if row.Asymmetric() {
			if row.InSource {
				left = highlight(left)
			} else {
				right = highlight(right)
			}
		}
		b.WriteString(left)
		b.WriteString(" | ")
		b.WriteString(right)
		b.WriteString("\n")
	}

	if r.Equal() && opts.Success != "" {
		b.WriteString(opts.Success)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func cell(name string, present, marked bool, width int) string {
	value := " "
	if present {
		value = name
		if marked {
			value = "*" + name + "*"
		}
	}
	return fmt.Sprintf("%-*s", width, value)
}
