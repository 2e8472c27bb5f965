// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
	"golang.org/x/term"
)

// LogRunHeader prints a concise, 2-line header before a labeler run.
// Headers go to stderr so that stdout carries only the result.
func LogRunHeader(cfg *contract.Config) {
	// Line 1: The input table and where the bundle goes
	fmt.Fprintf(os.Stderr, "🔎 Data: %s → %s\n", filepath.Base(cfg.DataPath), filepath.Join(cfg.ArtifactsDir, cfg.TableFile))

	// Line 2: The fit parameters
	fmt.Fprintf(os.Stderr, "🧮 Clusters: %d (seed: %d, restarts: %d, max-iter: %d)\n", cfg.Clusters, cfg.Seed, cfg.Restarts, cfg.MaxIter)
}

// LogCompareHeader prints a header for a pair comparison.
func LogCompareHeader(result *schema.ComparisonResult) {
	source := "input table"
	if result.Labeled {
		source = "labeled bundle"
	}
	fmt.Fprintf(os.Stderr, "📊 Comparing: %s ↔ %s (%s)\n", result.Left.Name, result.Right.Name, source)
}

// terminalWidth returns the width override or the detected terminal width.
func terminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// maxNameWidth calculates the maximum width for entity names in table output
// based on terminal width and the fixed columns next to it.
func maxNameWidth(cfg *contract.Config, fixed int) int {
	available := terminalWidth(cfg) - fixed
	if available < 10 {
		// Minimum reasonable name width
		return 10
	}
	if available > 30 {
		// Names longer than this are rare
		return 30
	}
	return available
}

// typeLabel joins the primary and secondary type.
func typeLabel(p schema.Pokemon) string {
	if p.Type2 == "" {
		return p.Type1
	}
	return p.Type1 + "/" + p.Type2
}

// profileCell renders a profile label for text tables.
func profileCell(cfg *contract.Config, cluster int, profile string) string {
	if cluster < 0 {
		profile = "-"
	}
	if !cfg.UseColors {
		return profile
	}
	return contract.GetColorProfile(cluster, profile, strings.HasPrefix(profile, "Cluster "))
}
