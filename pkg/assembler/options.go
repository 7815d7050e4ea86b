package assembler

import (
	"github.com/arthur-debert/kegpack/pkg/config"
	"github.com/arthur-debert/kegpack/pkg/filesystem"
	"github.com/arthur-debert/kegpack/pkg/rules"
)

// Reporter receives one line per step of a run
type Reporter interface {
	Status(msg string)
}

type nopReporter struct{}

func (nopReporter) Status(string) {}

// Options holds the inputs of a run
type Options struct {
	Source string
	Dest   string
	Prune  bool

	Categories   []string
	Rules        []rules.Rule
	DetectCycles bool

	VersionFile     string
	VersionMarker   string
	RequirePrefix   string
	VersionRequired bool

	PayloadDir      string
	PayloadSubdirs  []string
	PayloadRequired bool

	FileSystem filesystem.FS // Allow injecting a filesystem for testing
	Reporter   Reporter
}

// OptionsFromConfig fills the rule and layout options from cfg
func OptionsFromConfig(cfg *config.Config, source, dest string, prune bool) Options {
	return Options{
		Source:          source,
		Dest:            dest,
		Prune:           prune,
		Categories:      cfg.Categories,
		Rules:           cfg.Rules(),
		DetectCycles:    cfg.Traversal.DetectCycles,
		VersionFile:     cfg.Version.File,
		VersionMarker:   cfg.Version.Marker,
		RequirePrefix:   cfg.Version.RequirePrefix,
		VersionRequired: cfg.Version.Required,
		PayloadDir:      cfg.Payload.Dir,
		PayloadSubdirs:  cfg.Payload.Subdirs,
		PayloadRequired: cfg.Payload.Required,
	}
}

func (o Options) fs() filesystem.FS {
	if o.FileSystem == nil {
		return filesystem.NewOS()
	}
	return o.FileSystem
}

func (o Options) reporter() Reporter {
	if o.Reporter == nil {
		return nopReporter{}
	}
	return o.Reporter
}
