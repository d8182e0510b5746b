package types

import "time"

// SectionID names a renderable section of the document.
type SectionID string

// Known sections, in canonical render order.
const (
	SectionProfile         SectionID = "profile"
	SectionExperience      SectionID = "experience"
	SectionEducation       SectionID = "education"
	SectionSkills          SectionID = "skills"
	SectionLanguages       SectionID = "languages"
	SectionCertifications  SectionID = "certifications"
	SectionProjects        SectionID = "projects"
	SectionInterests       SectionID = "interests"
	SectionPublications    SectionID = "publications"
	SectionExtracurricular SectionID = "extracurricular"
	SectionReferences      SectionID = "references"
)

// CanonicalSections returns the default section order.
func CanonicalSections() []SectionID {
	return []SectionID{
		SectionProfile, SectionExperience, SectionEducation, SectionSkills, SectionLanguages,
		SectionCertifications, SectionProjects, SectionInterests, SectionPublications,
		SectionExtracurricular, SectionReferences,
	}
}

// SectionSetting overrides the position and visibility of one section.
type SectionSetting struct {
	ID      SectionID `json:"id"`
	Visible bool      `json:"visible"`
}

// CVSettings is the presentation configuration of a document.
type CVSettings struct {
	Template           string           `json:"template"`
	PrimaryColor       string           `json:"primaryColor,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor     string           `json:"secondaryColor,omitempty" validate:"omitempty,hexcolor"`
	TitleFont          string           `json:"titleFont,omitempty"`
	BodyFont           string           `json:"bodyFont,omitempty"`
	Language           string           `json:"language,omitempty"`
	ShowSkillLevels    bool             `json:"showSkillLevels"`
	ShowLanguageLevels bool             `json:"showLanguageLevels"`
	PageFormat         string           `json:"pageFormat,omitempty" validate:"omitempty,oneof=a4 letter legal"`
	Sections           []SectionSetting `json:"sections,omitempty"`
}

// DefaultSettings returns the settings used when none are supplied.
func DefaultSettings() CVSettings {
	return CVSettings{
		Template:           "modern",
		Language:           "en",
		ShowSkillLevels:    true,
		ShowLanguageLevels: true,
		PageFormat:         "a4",
	}
}

// OrderedSections resolves the visible sections in render order. Sections not
// mentioned in the override keep their canonical relative order after the
// overridden ones.
func (s CVSettings) OrderedSections() []SectionID {
	if len(s.Sections) == 0 {
		return CanonicalSections()
	}
	known := make(map[SectionID]bool)
	for _, id := range CanonicalSections() {
		known[id] = true
	}
	seen := make(map[SectionID]bool)
	var out []SectionID
	for _, ss := range s.Sections {
		if !known[ss.ID] || seen[ss.ID] {
			continue
		}
		seen[ss.ID] = true
		if ss.Visible {
			out = append(out, ss.ID)
		}
	}
	for _, id := range CanonicalSections() {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// SavedCV is a persisted, named snapshot of a document owned by one user.
type SavedCV struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Data      CVData     `json:"data"`
	Settings  CVSettings `json:"settings"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of the settings.
func (s CVSettings) Clone() CVSettings {
	out := s
	out.Sections = append([]SectionSetting(nil), s.Sections...)
	return out
}
