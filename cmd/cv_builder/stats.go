package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/cv-builder/internal/analysis"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how complete a CV document is",
	Long:  "Computes the completeness score, the completed sections and the improvement suggestions for a CV JSON document.",
	RunE:  runStats,
}

var (
	statsIn   string
	statsJSON bool
)

func init() {
	statsCmd.Flags().StringVarP(&statsIn, "in", "i", "", "Path to the CV JSON document (required)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print the stats as JSON")
	rootCmd.AddCommand(statsCmd)
}

// sectionOrder is the display order of analysis.SectionStatus keys.
var sectionOrder = []string{"contact", "profile", "experience", "education", "skills", "languages"}

func progressBar(pct, width int) string {
	filled := pct * width / 100
	return labelStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func runStats(cmd *cobra.Command, _ []string) error {
	cv, err := readDocument(statsIn)
	if err != nil {
		return err
	}
	stats := analysis.ComputeStats(cv)
	sections := analysis.SectionStatus(cv)
	w := cmd.OutOrStdout()

	if statsJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			analysis.Stats
			Sections map[string]bool `json:"sections"`
		}{stats, sections})
	}

	fmt.Fprintln(w, titleStyle.Render("CV completeness"))
	fmt.Fprintf(w, "%s %d%%\n", progressBar(stats.Completeness, 20), stats.Completeness)
	fmt.Fprintf(w, "%s %s\n\n", labelStyle.Render("Sections:"),
		valueStyle.Render(fmt.Sprintf("%d/%d", stats.SectionsCompleted, stats.TotalSections)))
	for _, name := range sectionOrder {
		mark := mutedStyle.Render("✗")
		if sections[name] {
			mark = labelStyle.Render("✓")
		}
		fmt.Fprintf(w, "  %s %s\n", mark, valueStyle.Render(name))
	}
	if len(stats.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, labelStyle.Render("Suggestions:"))
		for _, s := range stats.Suggestions {
			fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("•"), s)
		}
	}
	return nil
}
