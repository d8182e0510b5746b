package export

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/jonathan/cv-builder/internal/paper"
	"github.com/jonathan/cv-builder/internal/templates"
)

// PrintOptions configures the print pipeline.
type PrintOptions struct {
	Format      paper.Format      `json:"format"`
	Orientation paper.Orientation `json:"orientation"`
	Margins     *Margins          `json:"margins,omitempty"`
	Title       string            `json:"title,omitempty"`
	// AutoPrint adds a hook that opens the print dialog once the document loads.
	AutoPrint bool `json:"autoPrint"`
}

// Normalize validates the options and fills defaults.
func (o PrintOptions) Normalize() (PrintOptions, error) {
	p, err := PDFOptions{Format: o.Format, Orientation: o.Orientation, Margins: o.Margins}.Normalize()
	if err != nil {
		return o, err
	}
	o.Format, o.Orientation, o.Margins = p.Format, p.Orientation, p.Margins
	return o, nil
}

// Printer hands a standalone document to a print pipeline.
type Printer interface {
	Print(ctx context.Context, doc string, opts PrintOptions) error
}

const autoPrintScript = `<script>window.addEventListener("load",function(){document.fonts.ready.then(function(){window.print()})});</script>`

// BuildPrintDocument assembles a standalone document from the tree's markup
// and an explicit stylesheet snapshot. The tree's own stylesheet is always
// included first; extra stylesheets follow in order.
func BuildPrintDocument(tree *templates.VisualTree, opts PrintOptions, stylesheets ...string) (string, error) {
	if tree == nil || strings.TrimSpace(tree.Markup) == "" {
		return "", ErrCaptureTargetMissing
	}
	if err := checkRoot(tree.Markup, tree.RootID); err != nil {
		return "", err
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = tree.RootID
	}
	lang := tree.Lang
	if lang == "" {
		lang = "en"
	}
	m := DefaultMargins()
	if opts.Margins != nil {
		m = *opts.Margins
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=\"%s\">\n<head>\n<meta charset=\"utf-8\">\n", html.EscapeString(lang))
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	writeStyle(&b, tree.Stylesheet)
	for _, css := range stylesheets {
		writeStyle(&b, css)
	}
	writeStyle(&b, pageRule(opts.Format, opts.Orientation, m))
	b.WriteString("</head>\n<body>\n")
	b.WriteString(tree.Markup)
	b.WriteString("\n")
	if opts.AutoPrint {
		b.WriteString(autoPrintScript)
		b.WriteString("\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func writeStyle(b *strings.Builder, css string) {
	if strings.TrimSpace(css) == "" {
		return
	}
	// a stylesheet must not be able to close its own element
	css = strings.ReplaceAll(css, "<", `\3c `)
	b.WriteString("<style>")
	b.WriteString(css)
	b.WriteString("</style>\n")
}

func pageRule(f paper.Format, o paper.Orientation, m Margins) string {
	size := paper.Dimensions(f, o)
	return fmt.Sprintf("@page{size:%gmm %gmm;margin:%gmm %gmm %gmm %gmm}@media print{.cv-root{width:auto !important;min-height:0 !important}}",
		size.WidthMM, size.HeightMM, m.Top, m.Right, m.Bottom, m.Left)
}
