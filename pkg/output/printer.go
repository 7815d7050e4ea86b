package output

import (
	"fmt"
	"io"

	"github.com/arthur-debert/kegpack/pkg/errors"
)

// Printer writes status lines to one stream
type Printer struct {
	w      io.Writer
	format Format
	styles Styles
}

// NewPrinter creates a printer. FormatAuto must be resolved by the caller;
// it is treated as text.
func NewPrinter(w io.Writer, format Format) *Printer {
	if format == FormatAuto {
		format = FormatText
	}
	return &Printer{w: w, format: format, styles: NewStyles(w, format)}
}

// Format returns the effective format
func (p *Printer) Format() Format {
	return p.format
}

// Title prints a heading
func (p *Printer) Title(msg string) {
	_, _ = fmt.Fprintln(p.w, p.styles.Title.Render(msg))
}

// Status prints a step line
func (p *Printer) Status(msg string) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.styles.Status.Render("==>"), msg)
}

// Success prints a completion line
func (p *Printer) Success(msg string) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.styles.Success.Render("==>"), msg)
}

// Warning prints a non-fatal problem
func (p *Printer) Warning(msg string) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.styles.Warning.Render("Warning:"), msg)
}

// Error prints a fatal error. With showStack the captured stack, if any, is
// printed below it.
func (p *Printer) Error(err error, showStack bool) {
	_, _ = fmt.Fprintf(p.w, "%s: %s\n", p.styles.Error.Render("Error"), Describe(err))

	if !showStack {
		return
	}
	if stack, ok := errors.GetErrorDetails(err)[errors.DetailStack].(string); ok && stack != "" {
		_, _ = fmt.Fprintln(p.w, p.styles.Muted.Render(stack))
	}
}

// Describe returns the message of a coded error without its code, followed
// by the underlying cause
func Describe(err error) string {
	var kegErr *errors.KegError
	if !errors.As(err, &kegErr) {
		return err.Error()
	}
	if kegErr.Wrapped != nil {
		return kegErr.Message + ": " + Describe(kegErr.Wrapped)
	}
	return kegErr.Message
}
