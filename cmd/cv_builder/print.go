package main

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-builder/internal/browser"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/paper"
	"github.com/spf13/cobra"
)

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Build the print document for a CV",
	Long: "Builds the standalone print document (template stylesheet, extra stylesheets and @page rules). " +
		"With --send the document is printed through headless Chrome into the spool directory.",
	RunE: runPrint,
}

var (
	printDoc         documentFlags
	printOut         string
	printPaper       string
	printOrientation string
	printTitle       string
	printAuto        bool
	printSend        bool
	printStyles      []string
)

func init() {
	addDocumentFlags(printCmd, &printDoc)
	printCmd.Flags().StringVarP(&printOut, "out", "o", "", "Write the print document here (default stdout)")
	printCmd.Flags().StringVar(&printPaper, "paper", "a4", "Paper format: a4, letter, legal")
	printCmd.Flags().StringVar(&printOrientation, "orientation", "portrait", "Page orientation: portrait or landscape")
	printCmd.Flags().StringVar(&printTitle, "title", "", "Document title (default: the contact's name)")
	printCmd.Flags().BoolVar(&printAuto, "auto-print", false, "Open the print dialog when the document loads")
	printCmd.Flags().BoolVar(&printSend, "send", false, "Print through headless Chrome into the spool directory")
	printCmd.Flags().StringSliceVar(&printStyles, "stylesheet", nil, "Extra CSS files to include, in order")
	rootCmd.AddCommand(printCmd)
}

func runPrint(cmd *cobra.Command, _ []string) error {
	cv, _, tree, err := printDoc.render()
	if err != nil {
		return err
	}
	opts, err := export.PrintOptions{
		Format:      paper.Format(printPaper),
		Orientation: paper.Orientation(printOrientation),
		Title:       printTitle,
		AutoPrint:   printAuto,
	}.Normalize()
	if err != nil {
		return err
	}
	if opts.Title == "" {
		opts.Title = cv.Contact.FullName()
	}

	stylesheets := make([]string, 0, len(printStyles))
	for _, path := range printStyles {
		css, err := readFile(path)
		if err != nil {
			return err
		}
		stylesheets = append(stylesheets, css)
	}

	doc, err := export.BuildPrintDocument(tree, opts, stylesheets...)
	if err != nil {
		return err
	}
	if !printSend {
		return writeOutput(cmd.OutOrStdout(), printOut, []byte(doc))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	spool, err := browser.NewDirSpool(cfg.Chrome.SpoolDir)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Chrome.Timeout)
	defer cancel()
	if err := newChrome(cfg, spool, logger).Print(ctx, doc, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render("Spooled to"), valueStyle.Render(spool.Dir))
	return nil
}
