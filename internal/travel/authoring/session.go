// Package authoring owns draft sessions: the record-level draft, its
// itinerary, tags and media references, and the submit flow that gates them
// through validation before handing them to the backing store.
package authoring

import (
	"time"

	"tabilog/internal/travel/itinerary"
	"tabilog/internal/travel/models"
)

// Session is the state of one record being authored. It is only touched
// while its store entry lock is held.
type Session struct {
	ID        string
	Owner     string
	Draft     models.Draft
	Itinerary *itinerary.Model
	Tags      []string
	Images    []string
	CreatedAt time.Time
	UpdatedAt time.Time

	submitting bool
}

func newSession(id, owner string, now time.Time) *Session {
	public := models.VisibilityPublic
	return &Session{
		ID:    id,
		Owner: owner,
		Draft: models.Draft{
			Visibility:       &public,
			LocationCategory: models.LocationCategoryDomestic,
		},
		Itinerary: itinerary.New(),
		Tags:      []string{},
		Images:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// View is a read-only copy of a session.
type View struct {
	ID            string                      `json:"id"`
	Draft         models.Draft                `json:"draft"`
	Locations     []models.VisitLocationEntry `json:"locations"`
	Tags          []string                    `json:"tags"`
	Images        []string                    `json:"images"`
	OpenSelection *string                     `json:"openSelection"`
	Submitting    bool                        `json:"submitting"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

func (s *Session) view() *View {
	v := &View{
		ID:         s.ID,
		Draft:      cloneDraft(s.Draft),
		Locations:  s.Itinerary.List(),
		Tags:       append([]string{}, s.Tags...),
		Images:     append([]string{}, s.Images...),
		Submitting: s.submitting,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if id, ok := s.Itinerary.OpenEntry(); ok {
		v.OpenSelection = &id
	}
	return v
}

func cloneDraft(d models.Draft) models.Draft {
	out := d
	if d.StartDate != nil {
		v := *d.StartDate
		out.StartDate = &v
	}
	if d.EndDate != nil {
		v := *d.EndDate
		out.EndDate = &v
	}
	if d.Visibility != nil {
		v := *d.Visibility
		out.Visibility = &v
	}
	if d.Prefecture != nil {
		v := *d.Prefecture
		out.Prefecture = &v
	}
	if d.Country != nil {
		v := *d.Country
		out.Country = &v
	}
	return out
}

// DraftPatch carries draft-level edits. Nil leaves a field alone; the Clear
// flags reset optional fields. Tags and Images replace the whole list.
type DraftPatch struct {
	Title            *string
	Description      *string
	StartDate        *time.Time
	EndDate          *time.Time
	Visibility       *models.Visibility
	LocationCategory *models.LocationCategory
	Prefecture       *models.PrefectureID
	Country          *models.CountryID
	Tags             *[]string
	Images           *[]string

	ClearStartDate  bool
	ClearEndDate    bool
	ClearPrefecture bool
	ClearCountry    bool
}

func (p DraftPatch) apply(s *Session, normalizeTags func([]string) []string) {
	d := &s.Draft
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	switch {
	case p.ClearStartDate:
		d.StartDate = nil
	case p.StartDate != nil:
		v := *p.StartDate
		d.StartDate = &v
	}
	switch {
	case p.ClearEndDate:
		d.EndDate = nil
	case p.EndDate != nil:
		v := *p.EndDate
		d.EndDate = &v
	}
	if p.Visibility != nil {
		v := *p.Visibility
		d.Visibility = &v
	}
	if p.LocationCategory != nil {
		d.LocationCategory = *p.LocationCategory
	}
	switch {
	case p.ClearPrefecture:
		d.Prefecture = nil
	case p.Prefecture != nil:
		v := *p.Prefecture
		d.Prefecture = &v
	}
	switch {
	case p.ClearCountry:
		d.Country = nil
	case p.Country != nil:
		v := *p.Country
		d.Country = &v
	}
	if p.Tags != nil {
		s.Tags = normalizeTags(*p.Tags)
	}
	if p.Images != nil {
		s.Images = append([]string{}, *p.Images...)
	}
}
