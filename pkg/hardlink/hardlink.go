package hardlink

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/filesystem"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/logging"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/walk"
)

// Options selects the files to link.
type Options struct {
	// Ignore prunes marker-file traversal by directory name and filters
	// pattern matches by path substring.
	Ignore     []string
	MarkerFile string
	Patterns   []string
	ExtraFiles []string

	// DryRun reports what would be linked without touching the destination.
	DryRun bool
}

// Outcome is what happened to one qualifying file.
type Outcome string

const (
	Linked  Outcome = "linked"
	Skipped Outcome = "skipped"
	Failed  Outcome = "failed"
	Planned Outcome = "planned"
)

// Result describes one qualifying file.
type Result struct {
	Source      string
	Destination string
	Outcome     Outcome
	// Err is set for Failed results.
	Err error
}

// Summary tallies a run.
type Summary struct {
	Results []Result
	Linked  int
	Skipped int
	Failed  int
	Planned int
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case Linked:
		s.Linked++
	case Skipped:
		s.Skipped++
	case Failed:
		s.Failed++
	case Planned:
		s.Planned++
	}
}

// Synchronizer mirrors qualifying source files into a destination tree as
// hard links.
type Synchronizer struct {
	fs     filesystem.FS
	logger zerolog.Logger
}

// New creates a Synchronizer working on fs.
func New(fs filesystem.FS) *Synchronizer {
	return &Synchronizer{fs: fs, logger: logging.GetLogger("hardlink")}
}

// Plan returns the qualifying files under source, de-duplicated, in
// discovery order: marker files, then pattern matches, then extra files.
func (s *Synchronizer) Plan(source string, opts Options) ([]string, error) {
	var planned []string
	seen := make(map[string]struct{})
	add := func(paths []string) {
		for _, p := range paths {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			planned = append(planned, p)
		}
	}

	markers, err := s.regularFiles(source, []string{opts.MarkerFile}, walk.Options{Include: walk.ExcludeNames(opts.Ignore)})
	if err != nil {
		return nil, err
	}
	add(markers)

	matches, err := s.regularFiles(source, opts.Patterns, walk.Options{})
	if err != nil {
		return nil, err
	}
	add(withoutIgnoredSubstrings(source, matches, opts.Ignore))

	extras, err := s.regularFiles(source, opts.ExtraFiles, walk.Options{})
	if err != nil {
		return nil, err
	}
	add(extras)

	s.logger.Debug().
		Int("markers", len(markers)).
		Int("patternMatches", len(matches)).
		Int("extras", len(extras)).
		Int("planned", len(planned)).
		Msg("Planned links")

	return planned, nil
}

func (s *Synchronizer) regularFiles(root string, patterns []string, opts walk.Options) ([]string, error) {
	out, err := walk.FindMatches(s.fs, root, patterns, opts)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to walk %s", root)
	}
	return out, nil
}

// withoutIgnoredSubstrings drops paths whose string, relative to root,
// mentions an ignored name anywhere. Coarser than directory-name pruning:
// "my-digitalgarden-notes/x.json" is dropped too.
func withoutIgnoredSubstrings(root string, paths, ignore []string) []string {
	if len(ignore) == 0 {
		return paths
	}
	kept := paths[:0:0]
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		if containsAny(rel, ignore) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Sync links every qualifying file from source into destination. Existing
// destination entries are never touched. Per-file problems are recorded in
// the summary and do not stop the run; report, when non-nil, sees each
// result as soon as it is known.
func (s *Synchronizer) Sync(source, destination string, opts Options, report func(Result)) (*Summary, error) {
	done := logging.LogOperationStart(s.logger, "link")
	defer done()

	files, err := s.Plan(source, opts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, src := range files {
		result := s.linkOne(source, destination, src, opts.DryRun)
		summary.add(result)
		if report != nil {
			report(result)
		}
	}

	s.logger.Info().
		Int("linked", summary.Linked).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("planned", summary.Planned).
		Bool("dryRun", opts.DryRun).
		Msg("Link run finished")

	return summary, nil
}

func (s *Synchronizer) linkOne(source, destination, src string, dryRun bool) Result {
	result := Result{Source: src}

	rel, err := filepath.Rel(source, src)
	if err != nil {
		return s.fail(result, errors.Wrapf(err, errors.ErrInternal, "cannot relate %s to %s", src, source))
	}
	dst := filepath.Join(destination, rel)
	result.Destination = dst

	exists, err := filesystem.Exists(s.fs, dst)
	if err != nil {
		return s.fail(result, errors.Wrapf(err, errors.ErrFileAccess, "cannot check %s", dst))
	}
	if exists {
		s.logger.Debug().Str("destination", dst).Msg("Destination exists, skipping")
		result.Outcome = Skipped
		return result
	}

	if dryRun {
		result.Outcome = Planned
		return result
	}

	if err := s.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return s.fail(result, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(dst)))
	}

	if err := s.fs.Link(src, dst); err != nil {
		return s.fail(result, errors.Wrap(err, errors.ErrLinkCreate, "hard link failed"))
	}

	same, err := s.fs.SameFile(src, dst)
	if err != nil {
		return s.fail(result, errors.Wrap(err, errors.ErrLinkVerify, "cannot verify hard link"))
	}
	if !same {
		return s.fail(result, errors.Newf(errors.ErrLinkVerify, "%s and %s do not share an inode", src, dst))
	}

	s.logger.Info().Str("source", src).Str("destination", dst).Msg("Hard link created")
	result.Outcome = Linked
	return result
}

func (s *Synchronizer) fail(result Result, err error) Result {
	s.logger.Error().Err(err).
		Str("source", result.Source).
		Str("destination", result.Destination).
		Msg("Link failed")
	result.Outcome = Failed
	result.Err = err
	return result
}
