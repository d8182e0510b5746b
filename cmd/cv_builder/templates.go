package main

import (
	"fmt"

	"github.com/jonathan/cv-builder/internal/templates"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available templates",
	RunE:  runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, titleStyle.Render("Templates"))
	for _, id := range templates.All() {
		name, layout := templates.Describe(id)
		fmt.Fprintf(w, "%s %s %s\n",
			labelStyle.Width(14).Render(string(id)),
			valueStyle.Width(14).Render(name),
			mutedStyle.Render(string(layout)+" layout, root #"+templates.RootID(id)))
	}
	return nil
}
