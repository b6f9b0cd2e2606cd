package utils

import (
	"regexp"
	"strings"
)

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// DisplayName returns name, or the id when no name was supplied
func DisplayName(name, id string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return id
	}
	return name
}

// CleanFileName removes invalid characters from filename
func CleanFileName(filename string) string {
	// Replace invalid characters with underscore
	cleaned := invalidFileChars.ReplaceAllString(filename, "_")

	// Remove extra spaces and trim
	cleaned = strings.TrimSpace(cleaned)
	cleaned = whitespaceRun.ReplaceAllString(cleaned, "_")

	return cleaned
}
