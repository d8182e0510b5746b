package main

import (
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a CV document to HTML",
	Long:  "Renders a CV JSON document with a template and writes the standalone HTML document, or only the capture root markup with --markup.",
	RunE:  runRender,
}

var (
	renderDoc    documentFlags
	renderOut    string
	renderMarkup bool
)

func init() {
	addDocumentFlags(renderCmd, &renderDoc)
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output file (default stdout)")
	renderCmd.Flags().BoolVar(&renderMarkup, "markup", false, "Write only the capture root markup")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	_, _, tree, err := renderDoc.render()
	if err != nil {
		return err
	}
	out := tree.HTML
	if renderMarkup {
		out = tree.Markup
	}
	return writeOutput(cmd.OutOrStdout(), renderOut, []byte(out))
}
