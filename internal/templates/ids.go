package templates

import "strings"

// TemplateID identifies a registered template.
type TemplateID string

// Registered template identifiers.
const (
	Modern       TemplateID = "modern"
	Classic      TemplateID = "classic"
	Minimal      TemplateID = "minimal"
	Creative     TemplateID = "creative"
	Professional TemplateID = "professional"
	Executive    TemplateID = "executive"
	Elegant      TemplateID = "elegant"
	Compact      TemplateID = "compact"
	Technical    TemplateID = "technical"
	Academic     TemplateID = "academic"
	Bold         TemplateID = "bold"
	Timeline     TemplateID = "timeline"
)

// Default is used whenever a requested template is unknown.
const Default = Modern

// All returns every template identifier in display order.
func All() []TemplateID {
	return []TemplateID{
		Modern, Classic, Minimal, Creative, Professional, Executive,
		Elegant, Compact, Technical, Academic, Bold, Timeline,
	}
}

// Known reports whether id names a registered template.
func Known(id string) bool {
	_, ok := builtins[TemplateID(strings.ToLower(strings.TrimSpace(id)))]
	return ok
}

// Resolve maps a requested identifier to a registered one, falling back to
// Default for anything unknown.
func Resolve(id string) TemplateID {
	tid := TemplateID(strings.ToLower(strings.TrimSpace(id)))
	if _, ok := builtins[tid]; ok {
		return tid
	}
	return Default
}

// RootID is the element id of a template's capture root. It doubles as the
// default export filename.
func RootID(id TemplateID) string {
	return "cv-" + string(id)
}
