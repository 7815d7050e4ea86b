package assembler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/kegpack/pkg/copier"
	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/filesystem"
	"github.com/arthur-debert/kegpack/pkg/logging"
	"github.com/arthur-debert/kegpack/pkg/versionfile"
)

// Result describes a completed run
type Result struct {
	Source  string
	Dest    string
	Version string // Empty when no version file was read
	Marker  string // Path of the written version marker, if any

	Plan    *PlanResult
	Copy    *copier.Result
	Payload []string // Destination paths written by the payload overlay

	Warnings []string
}

// Run packs opts.Source into opts.Dest. On a copy failure the partial
// result is returned together with the error.
func Run(opts Options) (*Result, error) {
	logger := logging.GetLogger("assembler.run")
	defer logging.LogOperationStart(logger, "run")()

	fsys := opts.fs()
	report := opts.reporter()

	source, err := resolveSource(fsys, opts.Source)
	if err != nil {
		return nil, err
	}
	dest, err := filepath.Abs(opts.Dest)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "Failed to create target directory: %s", opts.Dest)
	}
	if resolved, err := fsys.EvalSymlinks(dest); err == nil {
		dest = resolved
	}
	if err := checkDisjoint(source, dest); err != nil {
		return nil, err
	}

	result := &Result{Source: source, Dest: dest}

	version, err := readVersion(fsys, logger, opts, result)
	if err != nil {
		return nil, err
	}
	payload, err := checkPayload(fsys, logger, opts, result)
	if err != nil {
		return nil, err
	}

	if err := prepareDest(fsys, logger, opts, dest); err != nil {
		return nil, err
	}

	report.Status("Prepare files for the installer")
	p, err := plan(opts, source)
	if err != nil {
		return result, err
	}
	result.Plan = p

	report.Status("Copy files from " + opts.Source + " to " + opts.Dest)
	c := copier.New(copier.WithFS(fsys))
	copied, err := c.Copy(source, dest, p.Copy)
	result.Copy = copied
	if err != nil {
		return result, errors.Wrapf(err, errors.ErrCopyFailed, "Failed to copy files from %s", opts.Source).
			WithDetails(errors.GetErrorDetails(err))
	}
	result.Warnings = append(result.Warnings, copied.Warnings()...)
	for _, link := range copied.Dangling {
		result.Warnings = append(result.Warnings, "dangling symlink: "+link)
	}

	if version != nil && opts.VersionMarker != "" {
		marker := filepath.Join(dest, opts.VersionMarker)
		if isDir(fsys, filepath.Dir(marker)) {
			report.Status("Create version file in " + filepath.Join(opts.Dest, filepath.Dir(opts.VersionMarker)))
			if err := versionfile.WriteMarker(fsys, marker, *version); err != nil {
				return result, errors.Wrapf(err, errors.ErrCopyFailed, "Failed to copy files from %s", opts.Source).
					WithStack()
			}
			result.Marker = marker
		} else {
			logger.Debug().Str("dir", filepath.Dir(marker)).Msg("Marker directory not in destination, skipping version file")
		}
	}

	if payload != "" {
		for _, sub := range opts.PayloadSubdirs {
			from := filepath.Join(payload, sub)
			if !isDir(fsys, from) {
				logger.Debug().Str("dir", from).Msg("Payload subdirectory missing, skipping")
				continue
			}
			overlay, err := c.CopyTree(from, filepath.Join(dest, sub))
			if overlay != nil {
				result.Payload = append(result.Payload, overlay.Copied...)
				result.Warnings = append(result.Warnings, overlay.Warnings()...)
			}
			if err != nil {
				return result, errors.Wrapf(err, errors.ErrCopyFailed, "Failed to copy payload %s", from).
					WithDetails(errors.GetErrorDetails(err))
			}
		}
	}

	logger.Info().
		Str("dest", dest).
		Int("copied", len(copied.Copied)).
		Int("linked", len(copied.Linked)).
		Int("payload", len(result.Payload)).
		Int("warnings", len(result.Warnings)).
		Msg("Run completed")
	return result, nil
}

func readVersion(fsys filesystem.FS, logger zerolog.Logger, opts Options, result *Result) (*versionfile.Version, error) {
	if opts.VersionFile == "" {
		return nil, nil
	}
	if _, err := fsys.Stat(opts.VersionFile); os.IsNotExist(err) && !opts.VersionRequired {
		logger.Warn().Str("path", opts.VersionFile).Msg("No version file, the version marker will not be written")
		result.Warnings = append(result.Warnings, "version file not found: "+opts.VersionFile)
		return nil, nil
	}

	v, err := versionfile.Read(opts.VersionFile)
	if err != nil {
		return nil, err
	}
	if err := v.Check(opts.RequirePrefix); err != nil {
		return nil, err
	}
	result.Version = v.String()
	return &v, nil
}

func checkPayload(fsys filesystem.FS, logger zerolog.Logger, opts Options, result *Result) (string, error) {
	if opts.PayloadDir == "" {
		return "", nil
	}
	dir, err := filepath.Abs(opts.PayloadDir)
	if err != nil || !isDir(fsys, dir) {
		if !opts.PayloadRequired {
			logger.Warn().Str("dir", opts.PayloadDir).Msg("No payload directory, auxiliary files will not be added")
			result.Warnings = append(result.Warnings, "payload directory not found: "+opts.PayloadDir)
			return "", nil
		}
		return "", errors.Newf(errors.ErrPayloadNotFound, "Payload directory doesn't exist: %s", opts.PayloadDir).
			WithDetail("path", opts.PayloadDir)
	}
	return dir, nil
}

func prepareDest(fsys filesystem.FS, logger zerolog.Logger, opts Options, dest string) error {
	if isDir(fsys, dest) {
		if !opts.Prune {
			return errors.Newf(errors.ErrDestExists,
				"Target directory already exists: %s - use --prune to force removal.", opts.Dest).
				WithDetail("path", opts.Dest)
		}
		logger.Info().Str("dest", dest).Msg("Pruning destination")
		if err := fsys.RemoveAll(dest); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "Failed to remove target directory: %s", opts.Dest).
				WithDetail("path", opts.Dest)
		}
	}

	if err := fsys.MkdirAll(dest, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "Failed to create target directory: %s", opts.Dest).
			WithDetail("path", opts.Dest)
	}
	if !isDir(fsys, dest) {
		return errors.Newf(errors.ErrDirCreate, "Failed to create target directory: %s", opts.Dest).
			WithDetail("path", opts.Dest)
	}
	return nil
}

// checkDisjoint refuses destinations that overlap the source, since pruning
// or copying would then modify the source
func checkDisjoint(source, dest string) error {
	if within(dest, source) || within(source, dest) {
		return errors.Newf(errors.ErrInvalidInput, "source %s and destination %s overlap", source, dest).
			WithDetail("source", source).
			WithDetail("dest", dest)
	}
	return nil
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isDir(fsys filesystem.FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}
