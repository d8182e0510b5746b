package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skills(ids ...string) []Skill {
	out := make([]Skill, len(ids))
	for i, id := range ids {
		out[i] = Skill{ID: id, Name: "skill-" + id}
	}
	return out
}

func ids(items []Skill) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func TestMoveEntity(t *testing.T) {
	tests := []struct {
		name string
		id   string
		to   int
		want []string
		ok   bool
	}{
		{"to front", "c", 0, []string{"c", "a", "b", "d"}, true},
		{"to back", "a", 3, []string{"b", "c", "d", "a"}, true},
		{"clamped", "b", 99, []string{"a", "c", "d", "b"}, true},
		{"negative clamped", "d", -4, []string{"d", "a", "b", "c"}, true},
		{"unknown id", "zz", 0, []string{"a", "b", "c", "d"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := skills("a", "b", "c", "d")
			out, ok := MoveEntity(in, tt.id, tt.to)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, ids(out))
			assert.Equal(t, []string{"a", "b", "c", "d"}, ids(in), "input must not be mutated")
		})
	}
}

func TestRemoveEntity(t *testing.T) {
	out, ok := RemoveEntity(skills("a", "b", "c"), "b")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, ids(out))

	_, ok = RemoveEntity(skills("a"), "x")
	assert.False(t, ok)
}

func TestReplaceEntity_CannotRekey(t *testing.T) {
	in := skills("a", "b")
	out, ok := ReplaceEntity(in, "a", Skill{ID: "a", Name: "Go"})
	require.True(t, ok)
	assert.Equal(t, "Go", out[0].Name)
	assert.Equal(t, "skill-a", in[0].Name)

	_, ok = ReplaceEntity(in, "a", Skill{ID: "other", Name: "Go"})
	assert.False(t, ok)
}

func TestCVData_EditBySection(t *testing.T) {
	cv := &CVData{
		Skills:     skills("a", "b", "c"),
		References: []Reference{{ID: "r1", Name: "Charles Babbage"}},
	}

	require.NoError(t, cv.Move(SectionSkills, "c", 0))
	assert.Equal(t, []string{"c", "a", "b"}, ids(cv.Skills))

	require.NoError(t, cv.Remove(SectionSkills, "a"))
	assert.Equal(t, []string{"c", "b"}, ids(cv.Skills))

	require.NoError(t, cv.Replace(SectionSkills, "b", []byte(`{"id":"b","name":"Go","level":"expert"}`)))
	assert.Equal(t, Skill{ID: "b", Name: "Go", Level: LevelExpert}, cv.Skills[1])

	require.NoError(t, cv.Replace(SectionReferences, "r1", []byte(`{"id":"r1","name":"Charles Babbage","email":"cb@example.com"}`)))
	assert.Equal(t, "cb@example.com", cv.References[0].Email)
}

func TestCVData_EditBySection_Errors(t *testing.T) {
	cv := &CVData{Skills: skills("a", "b")}

	assert.ErrorIs(t, cv.Move(SectionSkills, "zz", 0), ErrEntityNotFound)
	assert.ErrorIs(t, cv.Remove(SectionExperience, "a"), ErrEntityNotFound)

	var verr *ValidationError
	require.ErrorAs(t, cv.Remove(SectionInterests, "a"), &verr)
	assert.Equal(t, "section", verr.Fields[0].Field)

	require.ErrorAs(t, cv.Replace(SectionSkills, "a", []byte(`{"id":"other","name":"Go"}`)), &verr)
	assert.Equal(t, "id", verr.Fields[0].Field)

	require.ErrorAs(t, cv.Replace(SectionSkills, "a", []byte(`{"id":"a","name":""}`)), &verr)
	assert.Equal(t, "required", verr.Fields[0].Rule)

	require.ErrorAs(t, cv.Replace(SectionSkills, "a", []byte(`[1,2]`)), &verr)
	assert.Equal(t, []string{"a", "b"}, ids(cv.Skills))
	assert.Equal(t, "skill-a", cv.Skills[0].Name)
}

func TestAssignMissingIDs_KeepsExisting(t *testing.T) {
	cv := CVData{Skills: []Skill{{ID: "keep", Name: "Go"}, {Name: "Rust"}}}
	cv.AssignMissingIDs()
	assert.Equal(t, "keep", cv.Skills[0].ID)
	assert.NotEmpty(t, cv.Skills[1].ID)
	assert.NotEqual(t, cv.Skills[0].ID, cv.Skills[1].ID)
}

func TestOrderedSections(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, CanonicalSections(), s.OrderedSections())

	s.Sections = []SectionSetting{
		{ID: SectionSkills, Visible: true},
		{ID: SectionProfile, Visible: false},
		{ID: "unknown", Visible: true},
	}
	got := s.OrderedSections()
	assert.Equal(t, SectionSkills, got[0])
	assert.NotContains(t, got, SectionProfile)
	assert.Contains(t, got, SectionReferences)
	assert.Len(t, got, len(CanonicalSections())-1)
}

func TestCVData_Validate(t *testing.T) {
	cv := CVData{Contact: ContactInfo{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}}
	require.NoError(t, cv.Validate())

	cv.Contact.Email = "not-an-email"
	cv.Contact.Phone = "abc"
	cv.Skills = []Skill{{ID: "1", Name: "Go", Level: "guru"}}
	err := cv.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	rules := map[string]string{}
	for _, f := range verr.Fields {
		rules[f.Field] = f.Rule
	}
	assert.Equal(t, "email", rules["Contact.Email"])
	assert.Equal(t, "phone", rules["Contact.Phone"])
	assert.Equal(t, "oneof", rules["Skills[0].Level"])
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", ContactInfo{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", ContactInfo{FirstName: "Ada"}.FullName())
	assert.Equal(t, "Lovelace", ContactInfo{LastName: "Lovelace"}.FullName())
}

func TestCVData_CloneIsDeep(t *testing.T) {
	orig := CVData{
		Experiences: []Experience{{ID: "e1", Achievements: []string{"a"}}},
		Projects:    []Project{{ID: "p1", Technologies: []string{"go"}}},
		Skills:      []Skill{{ID: "s1", Name: "Go"}},
	}
	c := orig.Clone()
	c.Experiences[0].Achievements[0] = "changed"
	c.Projects[0].Technologies[0] = "rust"
	c.Skills[0].Name = "Rust"
	c.AssignMissingIDs()

	assert.Equal(t, "a", orig.Experiences[0].Achievements[0])
	assert.Equal(t, "go", orig.Projects[0].Technologies[0])
	assert.Equal(t, "Go", orig.Skills[0].Name)
}
