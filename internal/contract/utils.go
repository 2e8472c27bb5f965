package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// profileColors cycles through distinct colors for profile labels.
var profileColors = []*color.Color{
	color.New(color.FgRed, color.Bold),
	color.New(color.FgCyan, color.Bold),
	color.New(color.FgYellow),
	color.New(color.FgGreen),
	color.New(color.FgMagenta, color.Bold),
	color.New(color.FgBlue),
}

// placeholderColor is used for labels that came from the placeholder fallback.
var placeholderColor = color.New(color.FgHiBlack)

// GetColorProfile returns a colored profile label for console output (table).
// The color is picked from the cluster id so the same cluster keeps one color.
func GetColorProfile(cluster int, label string, placeholder bool) string {
	if placeholder || cluster < 0 {
		return placeholderColor.Sprint(label)
	}
	return profileColors[cluster%len(profileColors)].Sprint(label)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for fit cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pokestats_cache.db"
	}
	return filepath.Join(homeDir, ".pokestats_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pokestats_runs.db"
	}
	return filepath.Join(homeDir, ".pokestats_runs.db")
}

// TruncateName truncates a display name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the ellipsis and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
