package assembler

import (
	"path/filepath"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/fileset"
	"github.com/arthur-debert/kegpack/pkg/filesystem"
	"github.com/arthur-debert/kegpack/pkg/logging"
	"github.com/arthur-debert/kegpack/pkg/rules"
)

// PlanResult is the frozen selection of a source tree
type PlanResult struct {
	Source   string
	All      fileset.Set
	Excluded fileset.Set
	Copy     fileset.Set
}

// Plan resolves the source and computes the copy set without writing
// anything
func Plan(opts Options) (*PlanResult, error) {
	source, err := resolveSource(opts.fs(), opts.Source)
	if err != nil {
		return nil, err
	}
	return plan(opts, source)
}

func plan(opts Options, source string) (*PlanResult, error) {
	logger := logging.GetLogger("assembler.plan")
	enum := fileset.NewEnumerator(
		fileset.WithFS(opts.fs()),
		fileset.WithCycleDetection(opts.DetectCycles),
	)
	ev := rules.NewEvaluator(enum)

	opts.reporter().Status("Collect files to exclude")
	excluded, err := ev.Excludes(source, opts.Rules)
	if err != nil {
		return nil, err
	}

	opts.reporter().Status("Collect files to copy from " + opts.Source)
	all := ev.AllFiles(source, opts.Categories)
	copySet := rules.CopySet(all, excluded)

	logger.Info().
		Str("source", source).
		Int("all", all.Len()).
		Int("excluded", excluded.Len()).
		Int("copy", copySet.Len()).
		Msg("Computed copy set")

	return &PlanResult{
		Source:   source,
		All:      all,
		Excluded: excluded.Filter(all.Has),
		Copy:     copySet,
	}, nil
}

// resolveSource returns the real absolute path of a source directory
func resolveSource(fsys filesystem.FS, source string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrSourceNotFound, "Source directory doesn't exist: %s", source)
	}
	resolved, err := fsys.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrSourceNotFound, "Source directory doesn't exist: %s", source).
			WithDetail("path", source)
	}
	info, err := fsys.Stat(resolved)
	if err != nil || !info.IsDir() {
		return "", errors.Newf(errors.ErrSourceNotFound, "Source directory doesn't exist: %s", source).
			WithDetail("path", source)
	}
	return resolved, nil
}
