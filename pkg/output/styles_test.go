package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStyles_TextIsPlain(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf, FormatText)

	for name, style := range map[string]func(...string) string{
		"title":   styles.Title.Render,
		"status":  styles.Status.Render,
		"success": styles.Success.Render,
		"error":   styles.Error.Render,
		"warning": styles.Warning.Render,
		"muted":   styles.Muted.Render,
	} {
		assert.Equal(t, "lib/libfoo.dylib", style("lib/libfoo.dylib"), name)
	}
}
