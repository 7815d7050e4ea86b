// Package versionfile reads the toolchain version from a shell-style
// assignment file and writes the plain-text version marker that installers
// read as a compatibility check.
//
// The version file holds simple assignments:
//
//	MAJOR=2
//	MINOR=2
//	REVISION=41
//
// REVISION is optional. The resulting version string is MAJOR.MINOR or
// MAJOR.MINOR.REVISION.
package versionfile

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/filesystem"
)

// Keys read from the version file
const (
	KeyMajor    = "MAJOR"
	KeyMinor    = "MINOR"
	KeyRevision = "REVISION"
)

// Version is a dotted toolchain version
type Version struct {
	Major    string
	Minor    string
	Revision string
}

// String returns MAJOR.MINOR[.REVISION]
func (v Version) String() string {
	s := v.Major + "." + v.Minor
	if v.Revision != "" {
		s += "." + v.Revision
	}
	return s
}

// Read parses the version file at path
func Read(path string) (Version, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Version{}, errors.Wrapf(err, errors.ErrVersionInvalid, "version file not found: %s", path).
				WithDetail("path", path)
		}
		return Version{}, errors.Wrapf(err, errors.ErrVersionInvalid, "unable to get version from '%s'", path).
			WithDetail("path", path)
	}

	v, err := Parse(values)
	if err != nil {
		return Version{}, errors.Wrapf(err, errors.ErrVersionInvalid, "unable to get version from '%s'", path).
			WithDetail("path", path)
	}
	return v, nil
}

// Parse builds a version from already parsed assignments
func Parse(values map[string]string) (Version, error) {
	v := Version{
		Major:    strings.TrimSpace(values[KeyMajor]),
		Minor:    strings.TrimSpace(values[KeyMinor]),
		Revision: strings.TrimSpace(values[KeyRevision]),
	}

	var missing []string
	if v.Major == "" {
		missing = append(missing, KeyMajor)
	}
	if v.Minor == "" {
		missing = append(missing, KeyMinor)
	}
	if len(missing) > 0 {
		return Version{}, errors.Newf(errors.ErrVersionInvalid, "missing %s", strings.Join(missing, " and "))
	}
	return v, nil
}

// Check fails unless the version string starts with prefix. An empty
// prefix accepts any version.
func (v Version) Check(prefix string) error {
	if prefix == "" || strings.HasPrefix(v.String(), prefix) {
		return nil
	}
	return errors.Newf(errors.ErrVersionInvalid, "invalid version '%s'", v).
		WithDetail("version", v.String()).
		WithDetail("required_prefix", prefix)
}

// WriteMarker writes the version string, without a trailing newline, to path
func WriteMarker(fsys filesystem.FS, path string, v Version) error {
	if err := fsys.WriteFile(path, []byte(v.String()), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write version marker %s", path).
			WithDetail("path", path)
	}
	return nil
}
