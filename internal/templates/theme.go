package templates

import (
	"regexp"

	"github.com/jonathan/cv-builder/internal/types"
)

// Layout is the structural arrangement of a template.
type Layout string

// Built-in layouts. Each has a matching embedded HTML file.
const (
	LayoutSidebar Layout = "sidebar"
	LayoutSingle  Layout = "single"
	LayoutBanner  Layout = "banner"
)

// LevelStyle is how proficiency levels are drawn.
type LevelStyle string

// Level depictions.
const (
	LevelDots  LevelStyle = "dots"
	LevelBar   LevelStyle = "bar"
	LevelStars LevelStyle = "stars"
	LevelNone  LevelStyle = "none"
)

// Theme parameterizes a layout.
type Theme struct {
	Name           string
	Layout         Layout
	PrimaryColor   string
	SecondaryColor string
	TextColor      string
	TitleFont      string
	BodyFont       string
	LevelStyle     LevelStyle
	Timeline       bool
	Dense          bool
}

var themes = map[TemplateID]Theme{
	Modern:       {Name: "Modern", Layout: LayoutSidebar, PrimaryColor: "#2563eb", SecondaryColor: "#1e40af", TitleFont: "Inter", BodyFont: "Inter", LevelStyle: LevelDots},
	Classic:      {Name: "Classic", Layout: LayoutSingle, PrimaryColor: "#1f2937", SecondaryColor: "#4b5563", TitleFont: "Georgia", BodyFont: "Georgia", LevelStyle: LevelBar},
	Minimal:      {Name: "Minimal", Layout: LayoutSingle, PrimaryColor: "#111827", SecondaryColor: "#6b7280", TitleFont: "Helvetica", BodyFont: "Helvetica", LevelStyle: LevelNone},
	Creative:     {Name: "Creative", Layout: LayoutBanner, PrimaryColor: "#db2777", SecondaryColor: "#7c3aed", TitleFont: "Poppins", BodyFont: "Poppins", LevelStyle: LevelStars},
	Professional: {Name: "Professional", Layout: LayoutSidebar, PrimaryColor: "#0f766e", SecondaryColor: "#115e59", TitleFont: "Roboto", BodyFont: "Roboto", LevelStyle: LevelBar},
	Executive:    {Name: "Executive", Layout: LayoutBanner, PrimaryColor: "#111827", SecondaryColor: "#b45309", TitleFont: "Playfair Display", BodyFont: "Lato", LevelStyle: LevelBar},
	Elegant:      {Name: "Elegant", Layout: LayoutSingle, PrimaryColor: "#6d28d9", SecondaryColor: "#a78bfa", TitleFont: "Cormorant Garamond", BodyFont: "Lato", LevelStyle: LevelDots},
	Compact:      {Name: "Compact", Layout: LayoutSingle, PrimaryColor: "#334155", SecondaryColor: "#64748b", TitleFont: "Arial", BodyFont: "Arial", LevelStyle: LevelNone, Dense: true},
	Technical:    {Name: "Technical", Layout: LayoutSidebar, PrimaryColor: "#0891b2", SecondaryColor: "#155e75", TitleFont: "JetBrains Mono", BodyFont: "Source Sans Pro", LevelStyle: LevelBar},
	Academic:     {Name: "Academic", Layout: LayoutSingle, PrimaryColor: "#7f1d1d", SecondaryColor: "#991b1b", TitleFont: "Times New Roman", BodyFont: "Times New Roman", LevelStyle: LevelNone},
	Bold:         {Name: "Bold", Layout: LayoutBanner, PrimaryColor: "#dc2626", SecondaryColor: "#111827", TitleFont: "Montserrat", BodyFont: "Open Sans", LevelStyle: LevelStars},
	Timeline:     {Name: "Timeline", Layout: LayoutSingle, PrimaryColor: "#059669", SecondaryColor: "#047857", TitleFont: "Nunito", BodyFont: "Nunito", LevelStyle: LevelDots, Timeline: true},
}

var (
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	fontPattern     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \-]{0,63}$`)
)

// ThemeFor returns the theme of a template with the user's overrides applied.
// Overrides that are not plain colors or font names are ignored.
func ThemeFor(id TemplateID, settings types.CVSettings) Theme {
	t, ok := themes[id]
	if !ok {
		t = themes[Default]
	}
	if t.TextColor == "" {
		t.TextColor = "#1f2937"
	}
	if hexColorPattern.MatchString(settings.PrimaryColor) {
		t.PrimaryColor = settings.PrimaryColor
	}
	if hexColorPattern.MatchString(settings.SecondaryColor) {
		t.SecondaryColor = settings.SecondaryColor
	}
	if fontPattern.MatchString(settings.TitleFont) {
		t.TitleFont = settings.TitleFont
	}
	if fontPattern.MatchString(settings.BodyFont) {
		t.BodyFont = settings.BodyFont
	}
	return t
}

// Describe returns the display name and layout of a template.
func Describe(id TemplateID) (name string, layout Layout) {
	t := themes[Resolve(string(id))]
	return t.Name, t.Layout
}
