package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/jonathan/cv-builder/internal/paper"
	"github.com/jonathan/cv-builder/internal/types"
)

//go:embed layouts/*.gohtml
var layoutFS embed.FS

// VisualTree is a rendered document ready to be previewed, captured or printed.
type VisualTree struct {
	// RootID is the id of the capture root element.
	RootID string
	// TemplateID is the template that produced the tree.
	TemplateID TemplateID
	// HTML is the complete standalone document.
	HTML string
	// Markup is the capture root element alone.
	Markup string
	// Stylesheet is the CSS the markup depends on.
	Stylesheet string
	// WidthPx is the root width in CSS pixels.
	WidthPx int
	// Format is the page format the tree was laid out for.
	Format paper.Format
	// Lang is the document language.
	Lang string
}

// Renderer turns a document into a visual tree. Renderers never fail on
// partial data.
type Renderer func(cv *types.CVData, settings types.CVSettings) (*VisualTree, error)

// Registry maps every template identifier to its renderer.
type Registry map[TemplateID]Renderer

var (
	layouts  *template.Template
	builtins Registry
)

func init() {
	var err error
	layouts, err = parseLayouts()
	if err != nil {
		panic(err)
	}
	builtins = make(Registry, len(themes))
	for id := range themes {
		builtins[id] = layoutRenderer(id)
	}
	if missing := builtins.Missing(); len(missing) > 0 {
		panic(fmt.Sprintf("templates: no renderer registered for %v", missing))
	}
}

// Builtins returns the registry of built-in templates.
func Builtins() Registry {
	out := make(Registry, len(builtins))
	for id, r := range builtins {
		out[id] = r
	}
	return out
}

// Missing lists the identifiers from All that have no renderer.
func (r Registry) Missing() []TemplateID {
	var missing []TemplateID
	for _, id := range All() {
		if _, ok := r[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Render renders a document with the template named in settings. Unknown
// template names fall back to Default.
func (r Registry) Render(cv *types.CVData, settings types.CVSettings) (*VisualTree, error) {
	id := Resolve(settings.Template)
	renderer, ok := r[id]
	if !ok {
		renderer, ok = r[Default]
		if !ok {
			return nil, &TemplateError{Message: fmt.Sprintf("no renderer for %q", id)}
		}
	}
	return renderer(cv, settings)
}

// Render renders a document with the built-in registry.
func Render(cv *types.CVData, settings types.CVSettings) (*VisualTree, error) {
	return builtins.Render(cv, settings)
}

func parseLayouts() (*template.Template, error) {
	tmpl, err := template.New("cv").ParseFS(layoutFS, "layouts/*.gohtml")
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse layouts", Cause: err}
	}
	for _, l := range []Layout{LayoutSidebar, LayoutSingle, LayoutBanner} {
		if tmpl.Lookup("layout-"+string(l)) == nil {
			return nil, &TemplateError{Message: fmt.Sprintf("layout %q is not defined", l)}
		}
	}
	return tmpl, nil
}

// layoutRenderer builds the renderer of one themed template
func layoutRenderer(id TemplateID) Renderer {
	return func(cv *types.CVData, settings types.CVSettings) (*VisualTree, error) {
		format, err := paper.ParseFormat(settings.PageFormat)
		if err != nil {
			format = paper.A4
		}
		theme := ThemeFor(id, settings)
		width := paper.PixelWidth(format, paper.Portrait)
		height := paper.PixelHeight(format, paper.Portrait)
		data := buildPageData(id, cv, settings, theme, width, height)

		var markup bytes.Buffer
		if err := layouts.ExecuteTemplate(&markup, "layout-"+string(theme.Layout), data); err != nil {
			return nil, &TemplateError{Message: "failed to execute layout", Cause: err}
		}
		css := Stylesheet(theme)
		lang := strings.TrimSpace(settings.Language)
		if lang == "" {
			lang = "en"
		}
		title := data.Contact.Name
		if title == "" {
			title = "CV"
		}

		var doc bytes.Buffer
		err = layouts.ExecuteTemplate(&doc, "document", struct {
			Lang       string
			Title      string
			Stylesheet template.CSS
			Markup     template.HTML
		}{lang, title, template.CSS(css), template.HTML(markup.String())})
		if err != nil {
			return nil, &TemplateError{Message: "failed to execute document", Cause: err}
		}

		return &VisualTree{
			RootID:     data.RootID,
			TemplateID: id,
			HTML:       doc.String(),
			Markup:     markup.String(),
			Stylesheet: css,
			WidthPx:    width,
			Format:     format,
			Lang:       lang,
		}, nil
	}
}
