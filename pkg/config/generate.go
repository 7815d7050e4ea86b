package config

import (
	"strings"
)

// DefaultsContent returns the embedded defaults file
func DefaultsContent() string {
	return string(defaultConfig)
}

// GenerateConfigContent returns the defaults as a user config template with
// every value commented out
func GenerateConfigContent() string {
	header := "# kegpack user configuration\n" +
		"# Uncomment to change a value. Rule groups added here are appended to\n" +
		"# the defaults; set inherit_rules = false to replace them.\n\n"
	return header + commentOutConfigValues(DefaultsContent())
}

// commentOutConfigValues comments out assignments, their continuation lines
// and rule group headers. Blank lines, comments and plain section headers
// are kept.
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "[[") && strings.HasSuffix(trimmed, "]"):
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}

	return strings.Join(result, "\n")
}
