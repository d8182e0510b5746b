// Package types provides the document model shared by the renderers, the
// completeness analyzer, the export pipeline and the persistence adapter.
package types

import "github.com/google/uuid"

// Level is a proficiency level for skills and languages.
type Level string

// Proficiency levels in ascending order. LevelNative is only meaningful for languages.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
	LevelNative       Level = "native"
)

// Levels returns every level in ascending order.
func Levels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert, LevelNative}
}

// ContactInfo holds identity and reachability fields.
type ContactInfo struct {
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"required,max=100"`
	Title       string `json:"title,omitempty" validate:"max=150"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,phone"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	Country     string `json:"country,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	BirthDate   string `json:"birthDate,omitempty"`
	LinkedIn    string `json:"linkedin,omitempty" validate:"omitempty,url"`
	GitHub      string `json:"github,omitempty" validate:"omitempty,url"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
	// Photo is an embedded image payload (data URL).
	Photo string `json:"photo,omitempty"`
}

// FullName joins first and last name.
func (c ContactInfo) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Experience is a work history entry.
type Experience struct {
	ID           string   `json:"id"`
	Position     string   `json:"position" validate:"required,max=150"`
	Company      string   `json:"company" validate:"required,max=150"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Current      bool     `json:"current,omitempty"`
	Description  string   `json:"description,omitempty" validate:"max=3000"`
	Achievements []string `json:"achievements,omitempty"`
}

// Education is a degree or course entry.
type Education struct {
	ID          string `json:"id"`
	Degree      string `json:"degree" validate:"required,max=150"`
	Institution string `json:"institution" validate:"required,max=150"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	GPA         string `json:"gpa,omitempty"`
}

// Skill is a named competency with a proficiency level.
type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,max=80"`
	Level    Level  `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	Category string `json:"category,omitempty"`
}

// Language is a spoken language with a proficiency level.
type Language struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,max=80"`
	Level       Level  `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert native"`
	Certificate string `json:"certificate,omitempty"`
}

// Certification is a professional certificate.
type Certification struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required,max=150"`
	Issuer       string `json:"issuer,omitempty"`
	Date         string `json:"date,omitempty"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
	URL          string `json:"url,omitempty" validate:"omitempty,url"`
}

// Project is a personal or professional project.
type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name" validate:"required,max=150"`
	Description  string   `json:"description,omitempty" validate:"max=2000"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty" validate:"omitempty,url"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
}

// Reference is a professional reference.
type Reference struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,max=150"`
	Position string `json:"position,omitempty"`
	Company  string `json:"company,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,phone"`
}

// CVData is the aggregate root of the document model. Slice order is the
// authoritative render order for every section.
type CVData struct {
	Contact         ContactInfo     `json:"contact"`
	Profile         string          `json:"profile,omitempty" validate:"max=3000"`
	Experiences     []Experience    `json:"experiences,omitempty" validate:"dive"`
	Education       []Education     `json:"education,omitempty" validate:"dive"`
	Skills          []Skill         `json:"skills,omitempty" validate:"dive"`
	Languages       []Language      `json:"languages,omitempty" validate:"dive"`
	Certifications  []Certification `json:"certifications,omitempty" validate:"dive"`
	Projects        []Project       `json:"projects,omitempty" validate:"dive"`
	Interests       []string        `json:"interests,omitempty"`
	References      []Reference     `json:"references,omitempty" validate:"dive"`
	Publications    []string        `json:"publications,omitempty"`
	Extracurricular []string        `json:"extracurricular,omitempty"`
}

// NewEntityID returns a fresh opaque identifier for an entity record.
func NewEntityID() string {
	return uuid.NewString()
}

// AssignMissingIDs gives every entity without an identifier a new one.
// Existing identifiers are never touched.
func (cv *CVData) AssignMissingIDs() {
	for i := range cv.Experiences {
		if cv.Experiences[i].ID == "" {
			cv.Experiences[i].ID = NewEntityID()
		}
	}
	for i := range cv.Education {
		if cv.Education[i].ID == "" {
			cv.Education[i].ID = NewEntityID()
		}
	}
	for i := range cv.Skills {
		if cv.Skills[i].ID == "" {
			cv.Skills[i].ID = NewEntityID()
		}
	}
	for i := range cv.Languages {
		if cv.Languages[i].ID == "" {
			cv.Languages[i].ID = NewEntityID()
		}
	}
	for i := range cv.Certifications {
		if cv.Certifications[i].ID == "" {
			cv.Certifications[i].ID = NewEntityID()
		}
	}
	for i := range cv.Projects {
		if cv.Projects[i].ID == "" {
			cv.Projects[i].ID = NewEntityID()
		}
	}
	for i := range cv.References {
		if cv.References[i].ID == "" {
			cv.References[i].ID = NewEntityID()
		}
	}
}

// Clone returns a deep copy of the document.
func (cv CVData) Clone() CVData {
	out := cv
	out.Experiences = make([]Experience, len(cv.Experiences))
	for i, e := range cv.Experiences {
		e.Achievements = append([]string(nil), e.Achievements...)
		out.Experiences[i] = e
	}
	out.Education = append([]Education(nil), cv.Education...)
	out.Skills = append([]Skill(nil), cv.Skills...)
	out.Languages = append([]Language(nil), cv.Languages...)
	out.Certifications = append([]Certification(nil), cv.Certifications...)
	out.Projects = make([]Project, len(cv.Projects))
	for i, p := range cv.Projects {
		p.Technologies = append([]string(nil), p.Technologies...)
		out.Projects[i] = p
	}
	out.Interests = append([]string(nil), cv.Interests...)
	out.References = append([]Reference(nil), cv.References...)
	out.Publications = append([]string(nil), cv.Publications...)
	out.Extracurricular = append([]string(nil), cv.Extracurricular...)
	return out
}
