package export

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// Artifact is the output of a successful export.
type Artifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Bytes       []byte `json:"-"`
	Pages       int    `json:"pages,omitempty"`
}

// DataURL returns the artifact as a base64 data URL.
func (a *Artifact) DataURL() string {
	return "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Bytes)
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename builds a download name from a requested document name, falling back
// to the capture root id.
func Filename(name, rootID, ext string) string {
	base := strings.TrimSpace(name)
	base = strings.TrimSuffix(base, "."+ext)
	base = strings.Trim(unsafeFilename.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		base = strings.Trim(unsafeFilename.ReplaceAllString(rootID, "-"), "-.")
	}
	if base == "" {
		base = "cv"
	}
	return base + "." + ext
}
