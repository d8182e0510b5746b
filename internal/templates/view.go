package templates

import (
	"html/template"
	"net/url"
	"regexp"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// pageData is the structure passed to the HTML layouts
type pageData struct {
	RootID      string
	TemplateID  TemplateID
	Layout      Layout
	Theme       Theme
	WidthPx     int
	MinHeightPx int
	Contact     contactData
	Main        []sectionData
	Side        []sectionData
}

type contactData struct {
	Name  string
	Title string
	Photo template.URL
	Rows  []contactRow
}

type contactRow struct {
	Kind  string
	Label string
	Value string
	Href  template.URL
}

// sectionData is one non-empty section. Only the field matching ID is set.
type sectionData struct {
	ID       types.SectionID
	Title    string
	Profile  string
	Entries  []entryData
	Levels   []levelData
	Items    []string
	Timeline bool
}

// entryData is the common shape of experience, education, certification,
// project and reference entries
type entryData struct {
	ID          string
	Heading     string
	Subheading  string
	Location    string
	Dates       string
	Description string
	Bullets     []string
	Tags        []string
	Meta        string
	Link        template.URL
	LinkText    string
}

type levelData struct {
	ID        string
	Name      string
	Detail    string
	Label     string
	Percent   int
	Steps     []bool
	Style     LevelStyle
	ShowLevel bool
}

var sectionTitles = map[types.SectionID]string{
	types.SectionProfile:         "Profile",
	types.SectionExperience:      "Experience",
	types.SectionEducation:       "Education",
	types.SectionSkills:          "Skills",
	types.SectionLanguages:       "Languages",
	types.SectionCertifications:  "Certifications",
	types.SectionProjects:        "Projects",
	types.SectionInterests:       "Interests",
	types.SectionPublications:    "Publications",
	types.SectionExtracurricular: "Extracurricular Activities",
	types.SectionReferences:      "References",
}

// sidebarSections are placed in the side column by the sidebar layout
var sidebarSections = map[types.SectionID]bool{
	types.SectionSkills:    true,
	types.SectionLanguages: true,
	types.SectionInterests: true,
}

var (
	photoPattern = regexp.MustCompile(`^data:image/(?:png|jpeg|jpg|gif|webp);base64,[A-Za-z0-9+/=\s]+$`)
	phoneDigits  = regexp.MustCompile(`[^0-9+]`)
)

// buildPageData constructs the layout data from a document. Missing or empty
// fields never cause an error; they are simply left out.
func buildPageData(id TemplateID, cv *types.CVData, settings types.CVSettings, theme Theme, widthPx, heightPx int) *pageData {
	if cv == nil {
		cv = &types.CVData{}
	}
	data := &pageData{
		RootID:      RootID(id),
		TemplateID:  id,
		Layout:      theme.Layout,
		Theme:       theme,
		WidthPx:     widthPx,
		MinHeightPx: heightPx,
		Contact:     buildContact(cv.Contact),
	}
	for _, sid := range settings.OrderedSections() {
		sec, ok := buildSection(sid, cv, settings, theme)
		if !ok {
			continue
		}
		if theme.Layout == LayoutSidebar && sidebarSections[sid] {
			data.Side = append(data.Side, sec)
		} else {
			data.Main = append(data.Main, sec)
		}
	}
	return data
}

func buildContact(c types.ContactInfo) contactData {
	out := contactData{
		Name:  strings.TrimSpace(c.FullName()),
		Title: strings.TrimSpace(c.Title),
		Photo: safePhoto(c.Photo),
	}
	add := func(kind, label, value string, href template.URL) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		out.Rows = append(out.Rows, contactRow{Kind: kind, Label: label, Value: value, Href: href})
	}
	email := strings.TrimSpace(c.Email)
	if email != "" {
		add("email", "Email", email, template.URL("mailto:"+url.PathEscape(email)))
	}
	if phone := strings.TrimSpace(c.Phone); phone != "" {
		add("phone", "Phone", phone, template.URL("tel:"+phoneDigits.ReplaceAllString(phone, "")))
	}
	add("address", "Address", joinNonEmpty(", ", c.Address, joinNonEmpty(" ", c.PostalCode, c.City), c.Country), "")
	add("nationality", "Nationality", c.Nationality, "")
	add("birthDate", "Date of birth", c.BirthDate, "")
	add("linkedin", "LinkedIn", displayURL(c.LinkedIn), safeLink(c.LinkedIn))
	add("github", "GitHub", displayURL(c.GitHub), safeLink(c.GitHub))
	add("website", "Website", displayURL(c.Website), safeLink(c.Website))
	return out
}

func buildSection(sid types.SectionID, cv *types.CVData, settings types.CVSettings, theme Theme) (sectionData, bool) {
	sec := sectionData{ID: sid, Title: sectionTitles[sid], Timeline: theme.Timeline}
	switch sid {
	case types.SectionProfile:
		sec.Profile = strings.TrimSpace(cv.Profile)
		return sec, sec.Profile != ""
	case types.SectionExperience:
		for _, e := range cv.Experiences {
			sec.Entries = append(sec.Entries, entryData{
				ID:          e.ID,
				Heading:     strings.TrimSpace(e.Position),
				Subheading:  strings.TrimSpace(e.Company),
				Location:    strings.TrimSpace(e.Location),
				Dates:       formatDates(e.StartDate, e.EndDate, e.Current),
				Description: strings.TrimSpace(e.Description),
				Bullets:     nonEmpty(e.Achievements),
			})
		}
	case types.SectionEducation:
		for _, e := range cv.Education {
			entry := entryData{
				ID:          e.ID,
				Heading:     strings.TrimSpace(e.Degree),
				Subheading:  strings.TrimSpace(e.Institution),
				Location:    strings.TrimSpace(e.Location),
				Dates:       formatDates(e.StartDate, e.EndDate, e.Current),
				Description: strings.TrimSpace(e.Description),
			}
			if gpa := strings.TrimSpace(e.GPA); gpa != "" {
				entry.Meta = "GPA: " + gpa
			}
			sec.Entries = append(sec.Entries, entry)
		}
	case types.SectionSkills:
		for _, s := range cv.Skills {
			sec.Levels = append(sec.Levels, buildLevel(s.ID, s.Name, s.Category, s.Level, theme.LevelStyle, settings.ShowSkillLevels))
		}
		return sec, len(sec.Levels) > 0
	case types.SectionLanguages:
		for _, l := range cv.Languages {
			sec.Levels = append(sec.Levels, buildLevel(l.ID, l.Name, l.Certificate, l.Level, theme.LevelStyle, settings.ShowLanguageLevels))
		}
		return sec, len(sec.Levels) > 0
	case types.SectionCertifications:
		for _, c := range cv.Certifications {
			entry := entryData{
				ID:         c.ID,
				Heading:    strings.TrimSpace(c.Name),
				Subheading: strings.TrimSpace(c.Issuer),
				Dates:      formatDates(c.Date, c.ExpiryDate, false),
				Link:       safeLink(c.URL),
				LinkText:   displayURL(c.URL),
			}
			if cid := strings.TrimSpace(c.CredentialID); cid != "" {
				entry.Meta = "Credential ID: " + cid
			}
			sec.Entries = append(sec.Entries, entry)
		}
	case types.SectionProjects:
		for _, p := range cv.Projects {
			sec.Entries = append(sec.Entries, entryData{
				ID:          p.ID,
				Heading:     strings.TrimSpace(p.Name),
				Dates:       formatDates(p.StartDate, p.EndDate, false),
				Description: strings.TrimSpace(p.Description),
				Tags:        nonEmpty(p.Technologies),
				Link:        safeLink(p.URL),
				LinkText:    displayURL(p.URL),
			})
		}
	case types.SectionReferences:
		for _, r := range cv.References {
			sec.Entries = append(sec.Entries, entryData{
				ID:         r.ID,
				Heading:    strings.TrimSpace(r.Name),
				Subheading: joinNonEmpty(", ", r.Position, r.Company),
				Meta:       joinNonEmpty(" · ", r.Email, r.Phone),
			})
		}
	case types.SectionInterests:
		sec.Items = nonEmpty(cv.Interests)
		return sec, len(sec.Items) > 0
	case types.SectionPublications:
		sec.Items = nonEmpty(cv.Publications)
		return sec, len(sec.Items) > 0
	case types.SectionExtracurricular:
		sec.Items = nonEmpty(cv.Extracurricular)
		return sec, len(sec.Items) > 0
	default:
		return sec, false
	}
	return sec, len(sec.Entries) > 0
}

func buildLevel(id, name, detail string, level types.Level, style LevelStyle, show bool) levelData {
	return levelData{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Detail:    strings.TrimSpace(detail),
		Label:     LevelLabel(level),
		Percent:   LevelPercent(level),
		Steps:     LevelSteps(level),
		Style:     style,
		ShowLevel: show && level != "",
	}
}

func formatDates(start, end string, current bool) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if current {
		end = "Present"
	}
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return end
	case end == "":
		return start
	}
	return start + " - " + end
}

// safeLink accepts only absolute http(s) URLs. Anything else renders as text.
func safeLink(raw string) template.URL {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return template.URL(u.String())
}

func displayURL(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "https://")
	raw = strings.TrimPrefix(raw, "http://")
	raw = strings.TrimPrefix(raw, "www.")
	return strings.TrimSuffix(raw, "/")
}

func safePhoto(raw string) template.URL {
	raw = strings.TrimSpace(raw)
	if photoPattern.MatchString(raw) {
		return template.URL(raw)
	}
	return safeLink(raw)
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(nonEmpty(parts), sep)
}
