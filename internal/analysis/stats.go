// Package analysis derives completeness statistics and improvement
// suggestions from a CV document. Everything here is a pure function of the
// document.
package analysis

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-builder/internal/types"
)

// Section thresholds used by the completeness score.
const (
	MinProfileLength = 50
	MinSkills        = 3
)

// Suggestion thresholds. These are stricter than the completeness thresholds
// on purpose: a section can count as complete and still get a suggestion.
const (
	SuggestProfileLength = 100
	SuggestSkills        = 5
)

// Suggestion messages, in the order they are emitted.
const (
	SuggestionProfile    = "Write a professional summary of at least 100 characters"
	SuggestionExperience = "Add at least one work experience"
	SuggestionSkills     = "List at least 5 skills"
	SuggestionLanguages  = "Add the languages you speak"
	SuggestionPhoto      = "Add a profile photo"
)

// Stats is the result of ComputeStats.
type Stats struct {
	Completeness      int      `json:"completeness"`
	SectionsCompleted int      `json:"sectionsCompleted"`
	TotalSections     int      `json:"totalSections"`
	Suggestions       []string `json:"suggestions"`
}

type check struct {
	name string
	pass func(cv *types.CVData) bool
}

var sectionChecks = []check{
	{"contact", contactComplete},
	{"profile", func(cv *types.CVData) bool { return runeLen(cv.Profile) >= MinProfileLength }},
	{"experience", func(cv *types.CVData) bool { return len(cv.Experiences) >= 1 }},
	{"education", func(cv *types.CVData) bool { return len(cv.Education) >= 1 }},
	{"skills", func(cv *types.CVData) bool { return len(cv.Skills) >= MinSkills }},
	{"languages", func(cv *types.CVData) bool { return len(cv.Languages) >= 1 }},
}

type suggestion struct {
	message string
	applies func(cv *types.CVData) bool
}

var suggestionChecks = []suggestion{
	{SuggestionProfile, func(cv *types.CVData) bool { return runeLen(cv.Profile) < SuggestProfileLength }},
	{SuggestionExperience, func(cv *types.CVData) bool { return len(cv.Experiences) == 0 }},
	{SuggestionSkills, func(cv *types.CVData) bool { return len(cv.Skills) < SuggestSkills }},
	{SuggestionLanguages, func(cv *types.CVData) bool { return len(cv.Languages) == 0 }},
	{SuggestionPhoto, func(cv *types.CVData) bool { return strings.TrimSpace(cv.Contact.Photo) == "" }},
}

// ComputeStats scores how complete a CV is and lists what could be improved.
// A nil document is scored as an empty one.
func ComputeStats(cv *types.CVData) Stats {
	if cv == nil {
		cv = &types.CVData{}
	}

	passed := 0
	for _, c := range sectionChecks {
		if c.pass(cv) {
			passed++
		}
	}
	total := len(sectionChecks)

	suggestions := make([]string, 0, len(suggestionChecks))
	for _, s := range suggestionChecks {
		if s.applies(cv) {
			suggestions = append(suggestions, s.message)
		}
	}

	return Stats{
		Completeness:      int(math.Round(100 * float64(passed) / float64(total))),
		SectionsCompleted: passed,
		TotalSections:     total,
		Suggestions:       suggestions,
	}
}

// SectionStatus reports, per section name, whether its completeness check passes.
func SectionStatus(cv *types.CVData) map[string]bool {
	if cv == nil {
		cv = &types.CVData{}
	}
	out := make(map[string]bool, len(sectionChecks))
	for _, c := range sectionChecks {
		out[c.name] = c.pass(cv)
	}
	return out
}

func contactComplete(cv *types.CVData) bool {
	c := cv.Contact
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return false
	}
	return types.Validator().Var(c.Email, "required,email") == nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
