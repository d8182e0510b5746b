package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/paper"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a CV document as PDF and images",
	Long: "Renders a CV JSON document, captures it once with headless Chrome and encodes every requested " +
		"format (pdf, png, jpeg, webp) concurrently.",
	RunE: runExport,
}

var (
	exportDoc          documentFlags
	exportFormats      []string
	exportOutDir       string
	exportName         string
	exportPaper        string
	exportOrientation  string
	exportQuality      float64
	exportImageQuality float64
	exportScale        float64
	exportHeader       string
	exportFooter       string
	exportFont         string
)

func init() {
	addDocumentFlags(exportCmd, &exportDoc)
	exportCmd.Flags().StringSliceVarP(&exportFormats, "formats", "f", []string{"pdf"}, "Output formats: pdf, png, jpeg, webp")
	exportCmd.Flags().StringVarP(&exportOutDir, "out-dir", "o", ".", "Directory for the exported files")
	exportCmd.Flags().StringVarP(&exportName, "name", "n", "", "Base file name (default: template root id)")
	exportCmd.Flags().StringVar(&exportPaper, "paper", "a4", "Paper format: a4, letter, legal")
	exportCmd.Flags().StringVar(&exportOrientation, "orientation", "portrait", "Page orientation: portrait or landscape")
	exportCmd.Flags().Float64Var(&exportQuality, "quality", export.DefaultPDFQuality, "PDF capture scale (1-3)")
	exportCmd.Flags().Float64Var(&exportImageQuality, "image-quality", export.DefaultImageQuality, "JPEG quality (0.5-1)")
	exportCmd.Flags().Float64Var(&exportScale, "scale", 0, "Image capture scale when no PDF is requested (1-3)")
	exportCmd.Flags().StringVar(&exportHeader, "header", "", "Header text on every PDF page")
	exportCmd.Flags().StringVar(&exportFooter, "footer", "", "Footer text on every PDF page")
	exportCmd.Flags().StringVar(&exportFont, "font", "", "TrueType font for header and footer text (default: pdf.font_file)")
	rootCmd.AddCommand(exportCmd)
}

// exportRequest splits the requested formats into PDF and image options.
func exportRequest() (*export.PDFOptions, []export.ImageOptions, error) {
	var pdfOpts *export.PDFOptions
	var images []export.ImageOptions
	seen := map[string]bool{}
	for _, f := range exportFormats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "jpg" {
			f = "jpeg"
		}
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		if f == "pdf" {
			pdfOpts = &export.PDFOptions{
				Format:        paper.Format(exportPaper),
				Orientation:   paper.Orientation(exportOrientation),
				Quality:       exportQuality,
				IncludeHeader: exportHeader != "",
				IncludeFooter: exportFooter != "",
				HeaderText:    exportHeader,
				FooterText:    exportFooter,
				Filename:      exportName,
			}
			continue
		}
		images = append(images, export.ImageOptions{
			Format:   export.ImageFormat(f),
			Quality:  exportImageQuality,
			Scale:    exportScale,
			Filename: exportName,
		})
	}
	if pdfOpts == nil && len(images) == 0 {
		return nil, nil, fmt.Errorf("at least one format is required")
	}
	return pdfOpts, images, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	pdfOpts, images, err := exportRequest()
	if err != nil {
		return err
	}
	_, _, tree, err := exportDoc.render()
	if err != nil {
		return err
	}

	chrome := newChrome(cfg, nil, logger)
	pipeline := export.NewPipeline(chrome, nil, nil, logger)
	pipeline.TextFont = cfg.PDF.FontFile
	if exportFont != "" {
		pipeline.TextFont = exportFont
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Chrome.Timeout)
	defer cancel()
	artifacts, err := pipeline.ExportAll(ctx, "", tree, pdfOpts, images)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(exportOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, titleStyle.Render("Exported "+tree.RootID))
	for _, a := range artifacts {
		path := filepath.Join(exportOutDir, a.Filename)
		if err := os.WriteFile(path, a.Bytes, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		detail := fmt.Sprintf("%d bytes", len(a.Bytes))
		if a.Pages > 0 {
			detail += fmt.Sprintf(", %d page(s)", a.Pages)
		}
		fmt.Fprintf(w, "%s %s %s\n", labelStyle.Render(a.ContentType), valueStyle.Render(path), mutedStyle.Render(detail))
	}
	return nil
}
