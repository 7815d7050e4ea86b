package kegpack

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Prepare an installable distribution tree from an installed keg"
	MsgRunShort        = "Copy the selected files of a keg into a new directory"
	MsgPlanShort       = "Show the files a run would copy"
	MsgManifestShort   = "Print the manifest of a directory tree"
	MsgRulesShort      = "Explain the effective selection rules"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgRunTitle        = "Prepare %s for the installer"
	MsgRunDone         = "Copied %d files and %d symlinks to %s"
	MsgManifestWritten = "Manifest written to %s"
	MsgPlanSummary     = "%d files selected, %d excluded"
	MsgVersionFormat   = "kegpack %s (commit %s, built %s)\n"

	// Error messages
	MsgErrArgCount  = "%s expects %d argument(s), got %d"
	MsgErrUsage     = "invalid usage"
	MsgErrNoCommand = "no command specified"
	MsgErrBadFlags  = "invalid flags"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Read the user configuration from `file`"
	MsgFlagVersionFile = "Read the version from `file` (required to exist)"
	MsgFlagPayload     = "Overlay auxiliary files from `dir` (required to exist)"
	MsgFlagFormat      = "Output format: auto, term or text"
	MsgFlagNoCycles    = "Do not guard against directory symlink cycles in the source"
	MsgFlagPrune       = "Remove the destination directory before copying"
	MsgFlagManifest    = "Write a manifest of the result to `file`"
	MsgFlagExcluded    = "Show the excluded files instead of the copied ones"
	MsgFlagDigest      = "Print only the tree digest"
	MsgFlagTemplate    = "Print a commented user configuration template"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/run-example.txt
	msgRunExampleRaw string
	MsgRunExample    = strings.TrimRight(msgRunExampleRaw, "\n")

	//go:embed msgs/plan-long.txt
	msgPlanLongRaw string
	MsgPlanLong    = strings.TrimSpace(msgPlanLongRaw)

	//go:embed msgs/manifest-long.txt
	msgManifestLongRaw string
	MsgManifestLong    = strings.TrimSpace(msgManifestLongRaw)

	//go:embed msgs/rules-long.txt
	msgRulesLongRaw string
	MsgRulesLong    = strings.TrimSpace(msgRulesLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
