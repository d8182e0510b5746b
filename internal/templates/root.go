package templates

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RootSelector matches the capture root of a rendered document.
const RootSelector = "[data-cv-root]"

// FindRoot locates the capture root in an HTML document and returns its id.
func FindRoot(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", &TemplateError{Message: "failed to parse document", Cause: err}
	}
	root := doc.Find(RootSelector).First()
	if root.Length() == 0 {
		return "", &RootNotFoundError{Message: "no element carries data-cv-root"}
	}
	id, ok := root.Attr("id")
	if !ok || strings.TrimSpace(id) == "" {
		return "", &RootNotFoundError{Message: "capture root has no id"}
	}
	return id, nil
}
