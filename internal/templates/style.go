package templates

import (
	"fmt"
	"strings"
)

const baseStylesheet = `*,*::before,*::after{box-sizing:border-box}
html,body{margin:0;padding:0;background:#ffffff}
.cv-root{position:relative;margin:0 auto;background:#ffffff;color:var(--cv-text);font-family:var(--cv-body-font);font-size:var(--cv-font-size);line-height:1.45;display:flex;flex-direction:column}
.cv-root,.cv-root *{overflow-wrap:anywhere;word-break:break-word}
.cv-root h1,.cv-root h2,.cv-root h3{font-family:var(--cv-title-font);margin:0}
.cv-name{font-size:2em;color:var(--cv-primary)}
.cv-title{margin:.2em 0 0;color:var(--cv-secondary);font-size:1.1em}
.cv-photo{width:120px;height:120px;object-fit:cover;border-radius:50%}
.cv-contact{list-style:none;margin:.6em 0 0;padding:0}
.cv-contact li{margin:.15em 0}
.cv-contact-label{font-weight:600;margin-right:.3em}
.cv-contact a,.cv-link{color:inherit;text-decoration:none}
.cv-main{padding:var(--cv-gap)}
.cv-section{margin-bottom:var(--cv-gap)}
.cv-section-title{font-size:1.15em;color:var(--cv-primary);border-bottom:2px solid var(--cv-primary);padding-bottom:.2em;margin-bottom:.5em}
.cv-entry{margin-bottom:.8em}
.cv-entry-head{display:flex;justify-content:space-between;gap:1em}
.cv-entry-head h3{font-size:1em}
.cv-dates{color:var(--cv-secondary);white-space:nowrap;font-size:.9em}
.cv-entry-sub,.cv-entry-meta{margin:.1em 0;color:var(--cv-secondary)}
.cv-entry-desc,.cv-profile{margin:.3em 0;white-space:pre-line}
.cv-bullets{margin:.3em 0;padding-left:1.2em}
.cv-tags,.cv-items{list-style:none;padding:0;margin:.3em 0;display:flex;flex-wrap:wrap;gap:.35em}
.cv-tags li,.cv-items li{border:1px solid var(--cv-secondary);border-radius:4px;padding:.05em .45em;font-size:.9em}
.cv-levels{list-style:none;padding:0;margin:0}
.cv-level-row{display:flex;align-items:center;justify-content:space-between;gap:.6em;margin:.25em 0}
.cv-level-detail{color:var(--cv-secondary);font-size:.85em}
.cv-level-bar{display:inline-block;width:80px;height:6px;background:#e5e7eb;border-radius:3px;overflow:hidden}
.cv-level-fill{display:block;height:100%;background:var(--cv-primary)}
.cv-level-dots{display:inline-flex;gap:3px}
.cv-dot{width:8px;height:8px;border-radius:50%;background:#e5e7eb}
.cv-dot.on{background:var(--cv-primary)}
.cv-level-stars{color:var(--cv-primary);letter-spacing:1px}
.cv-level-label{color:var(--cv-secondary);font-size:.85em}
.cv-timeline{border-left:2px solid var(--cv-primary);padding-left:1em}
.cv-timeline .cv-entry{position:relative}
.cv-timeline .cv-entry::before{content:"";position:absolute;left:calc(-1em - 6px);top:.35em;width:10px;height:10px;border-radius:50%;background:var(--cv-primary)}
.cv-layout-sidebar{flex-direction:row;align-items:stretch}
.cv-layout-sidebar .cv-side{width:34%;flex:none;padding:var(--cv-gap);background:var(--cv-primary);color:#ffffff}
.cv-layout-sidebar .cv-side .cv-name,.cv-layout-sidebar .cv-side .cv-title,.cv-layout-sidebar .cv-side .cv-section-title{color:#ffffff;border-color:#ffffff}
.cv-layout-sidebar .cv-side .cv-level-fill,.cv-layout-sidebar .cv-side .cv-dot.on{background:#ffffff}
.cv-layout-sidebar .cv-side .cv-level-stars,.cv-layout-sidebar .cv-side .cv-level-detail,.cv-layout-sidebar .cv-side .cv-level-label{color:#ffffff}
.cv-layout-sidebar .cv-main{flex:1;min-width:0}
.cv-header{display:flex;gap:var(--cv-gap);align-items:center;padding:var(--cv-gap) var(--cv-gap) 0}
.cv-banner{display:flex;gap:var(--cv-gap);align-items:center;padding:var(--cv-gap);background:var(--cv-primary);color:#ffffff}
.cv-banner .cv-name,.cv-banner .cv-title{color:#ffffff}
.cv-banner-contact{padding:0 var(--cv-gap);border-bottom:3px solid var(--cv-secondary)}
.cv-banner-contact .cv-contact{display:flex;flex-wrap:wrap;gap:.4em 1.2em;margin:.5em 0}
@media print{html,body{width:auto}.cv-root{margin:0}}
`

// Stylesheet returns the complete CSS for a theme.
func Stylesheet(t Theme) string {
	fontSize, gap := "10.5pt", "18px"
	if t.Dense {
		fontSize, gap = "9.5pt", "12px"
	}
	var b strings.Builder
	fmt.Fprintf(&b, ":root{--cv-primary:%s;--cv-secondary:%s;--cv-text:%s;--cv-title-font:%s;--cv-body-font:%s;--cv-font-size:%s;--cv-gap:%s}\n",
		t.PrimaryColor, t.SecondaryColor, t.TextColor, fontStack(t.TitleFont), fontStack(t.BodyFont), fontSize, gap)
	b.WriteString(baseStylesheet)
	return b.String()
}

func fontStack(font string) string {
	if font == "" {
		return "sans-serif"
	}
	return fmt.Sprintf("'%s', sans-serif", font)
}
