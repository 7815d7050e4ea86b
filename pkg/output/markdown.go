package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/arthur-debert/kegpack/pkg/config"
	"github.com/arthur-debert/kegpack/pkg/rules"
)

// GlamourRenderer uses the glamour library for rich markdown rendering
type GlamourRenderer struct {
	Style string // Style name: "dark", "light", "notty", "auto", or path to custom style
	Width int    // Terminal width (0 = auto-detect)
}

// NewGlamourRenderer creates a markdown renderer using glamour with auto-detection
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{
		Style: "auto",
		Width: 0,
	}
}

// Render converts markdown to terminal output. On any renderer error the
// markdown is returned as is.
func (r *GlamourRenderer) Render(content string) string {
	var options []glamour.TermRendererOption

	switch r.Style {
	case "", "auto":
		options = append(options, glamour.WithAutoStyle())
	case "dark", "light", "notty", "ascii", "dracula", "pink", "tokyo-night":
		options = append(options, glamour.WithStandardStyle(r.Style))
	default:
		options = append(options, glamour.WithStylePath(r.Style))
	}

	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// RenderMarkdown renders content for format. Plain text output keeps the
// markdown source.
func RenderMarkdown(content string, format Format) string {
	if format != FormatTerminal {
		return content
	}
	return NewGlamourRenderer().Render(content)
}

// RulesMarkdown explains the selection rules of cfg
func RulesMarkdown(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString("# Selection rules\n\n")
	fmt.Fprintf(&b, "Files are collected from %s. ", codeList(cfg.Categories))
	b.WriteString("Every rule below removes files from that set; ")
	b.WriteString("whatever remains is copied.\n\n")

	if len(cfg.Exclude) > 0 {
		b.WriteString("## Excluded\n\n")
		for _, group := range cfg.Exclude {
			fmt.Fprintf(&b, "### `%s`\n\n", group.Dir)
			if group.Note != "" {
				b.WriteString(group.Note + "\n\n")
			}
			for _, p := range group.Patterns {
				fmt.Fprintf(&b, "- `%s`%s\n", p, patternKind(p))
			}
			b.WriteString("\n")
		}
	}

	if len(cfg.KeepOnly) > 0 {
		b.WriteString("## Keep only\n\n")
		b.WriteString("Everything under these directories is dropped except the listed candidates")
		b.WriteString(" whose file name matches the expression.\n\n")
		for _, group := range cfg.KeepOnly {
			fmt.Fprintf(&b, "### `%s`\n\n", group.Dir)
			if group.Note != "" {
				b.WriteString(group.Note + "\n\n")
			}
			fmt.Fprintf(&b, "- candidates: %s\n", codeList(group.Candidates))
			if group.Match != "" {
				fmt.Fprintf(&b, "- match: `%s`\n", group.Match)
			} else {
				b.WriteString("- match: every candidate\n")
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func patternKind(p string) string {
	switch rules.Classify("", []string{p})[0].Kind {
	case rules.KindSubtree:
		return " (whole subtree)"
	case rules.KindWildcard:
		return " (wildcard)"
	default:
		return ""
	}
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "`" + item + "`"
	}
	return strings.Join(quoted, ", ")
}
