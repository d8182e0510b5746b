package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEntityNotFound is returned when no record of a section carries the id.
var ErrEntityNotFound = errors.New("entity not found")

// Entity is any record addressed by its stable identifier.
type Entity interface {
	EntityID() string
}

func (e Experience) EntityID() string    { return e.ID }
func (e Education) EntityID() string     { return e.ID }
func (s Skill) EntityID() string         { return s.ID }
func (l Language) EntityID() string      { return l.ID }
func (c Certification) EntityID() string { return c.ID }
func (p Project) EntityID() string       { return p.ID }
func (r Reference) EntityID() string     { return r.ID }

// IndexOf returns the position of the entity with the given id, or -1.
func IndexOf[T Entity](items []T, id string) int {
	for i, it := range items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

// MoveEntity moves the entity with id to position to (clamped to the slice
// bounds). It returns a new slice and false when id is unknown.
func MoveEntity[T Entity](items []T, id string, to int) ([]T, bool) {
	from := IndexOf(items, id)
	if from < 0 {
		return items, false
	}
	if to < 0 {
		to = 0
	}
	if to > len(items)-1 {
		to = len(items) - 1
	}
	out := make([]T, 0, len(items))
	moved := items[from]
	for i, it := range items {
		if i != from {
			out = append(out, it)
		}
	}
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, true
}

// RemoveEntity drops the entity with id, preserving the order of the others.
func RemoveEntity[T Entity](items []T, id string) ([]T, bool) {
	idx := IndexOf(items, id)
	if idx < 0 {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...), true
}

// ReplaceEntity swaps the record with the same id for next. The identifier of
// the stored record wins: an update can never re-key an entity.
func ReplaceEntity[T Entity](items []T, id string, next T) ([]T, bool) {
	idx := IndexOf(items, id)
	if idx < 0 || next.EntityID() != id {
		return items, false
	}
	out := make([]T, len(items))
	copy(out, items)
	out[idx] = next
	return out, true
}

type editKind int

const (
	editMove editKind = iota
	editRemove
	editReplace
)

type entityEdit struct {
	kind editKind
	id   string
	to   int
	next json.RawMessage
}

// Move repositions the record id of section to index to.
func (cv *CVData) Move(section SectionID, id string, to int) error {
	return cv.edit(section, entityEdit{kind: editMove, id: id, to: to})
}

// Remove deletes the record id of section.
func (cv *CVData) Remove(section SectionID, id string) error {
	return cv.edit(section, entityEdit{kind: editRemove, id: id})
}

// Replace swaps the record id of section for the JSON record next, which
// must carry the same id and pass the field rules.
func (cv *CVData) Replace(section SectionID, id string, next json.RawMessage) error {
	return cv.edit(section, entityEdit{kind: editReplace, id: id, next: next})
}

func (cv *CVData) edit(section SectionID, e entityEdit) error {
	switch section {
	case SectionExperience:
		return applyEdit(&cv.Experiences, e)
	case SectionEducation:
		return applyEdit(&cv.Education, e)
	case SectionSkills:
		return applyEdit(&cv.Skills, e)
	case SectionLanguages:
		return applyEdit(&cv.Languages, e)
	case SectionCertifications:
		return applyEdit(&cv.Certifications, e)
	case SectionProjects:
		return applyEdit(&cv.Projects, e)
	case SectionReferences:
		return applyEdit(&cv.References, e)
	default:
		return fieldError("section", "oneof", fmt.Sprintf("%q has no addressable records", section))
	}
}

func applyEdit[T Entity](items *[]T, e entityEdit) error {
	if IndexOf(*items, e.id) < 0 {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, e.id)
	}
	switch e.kind {
	case editMove:
		*items, _ = MoveEntity(*items, e.id, e.to)
	case editRemove:
		*items, _ = RemoveEntity(*items, e.id)
	case editReplace:
		var next T
		if err := json.Unmarshal(e.next, &next); err != nil {
			return fieldError("record", "json", "must be a JSON object")
		}
		if next.EntityID() != e.id {
			return fieldError("id", "immutable", "cannot be changed")
		}
		if err := ValidateStruct(next); err != nil {
			return err
		}
		*items, _ = ReplaceEntity(*items, e.id, next)
	}
	return nil
}

func fieldError(field, rule, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule, Message: msg}}}
}
