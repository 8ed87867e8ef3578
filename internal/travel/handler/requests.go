package handler

import (
	"strings"
	"time"
	"unicode/utf8"

	"tabilog/internal/travel/authoring"
	"tabilog/internal/travel/itinerary"
	"tabilog/internal/travel/models"
	dErrors "tabilog/pkg/domain-errors"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxTagLength         = 50
	visitTimeLayout      = "15:04"
)

// UpdateDraftRequest is the body of PATCH /drafts/{id}. Absent fields are left
// alone. An empty date string clears the date; 0 clears prefecture and
// country.
type UpdateDraftRequest struct {
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	StartDate        *string   `json:"startDate"`
	EndDate          *string   `json:"endDate"`
	Visibility       *int      `json:"visibility"`
	LocationCategory *int      `json:"locationCategory"`
	Prefecture       *int      `json:"prefecture"`
	Country          *int      `json:"country"`
	Tags             *[]string `json:"tags"`
	Images           *[]string `json:"images"`

	patch authoring.DraftPatch
}

func (r *UpdateDraftRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	p := authoring.DraftPatch{}

	if r.Title != nil {
		if utf8.RuneCountInString(*r.Title) > maxTitleLength {
			return dErrors.New(dErrors.CodeValidation, "title must be at most 200 characters")
		}
		p.Title = r.Title
	}
	if r.Description != nil {
		if utf8.RuneCountInString(*r.Description) > maxDescriptionLength {
			return dErrors.New(dErrors.CodeValidation, "description must be at most 5000 characters")
		}
		p.Description = r.Description
	}

	var err error
	if p.StartDate, p.ClearStartDate, err = parseOptionalDate("startDate", r.StartDate); err != nil {
		return err
	}
	if p.EndDate, p.ClearEndDate, err = parseOptionalDate("endDate", r.EndDate); err != nil {
		return err
	}

	if r.Visibility != nil {
		v := models.Visibility(*r.Visibility)
		if !v.Valid() {
			return dErrors.New(dErrors.CodeValidation, "visibility must be 0 or 1")
		}
		p.Visibility = &v
	}
	if r.LocationCategory != nil {
		c := models.LocationCategory(*r.LocationCategory)
		if !c.Valid() {
			return dErrors.New(dErrors.CodeValidation, "locationCategory must be 0 or 1")
		}
		p.LocationCategory = &c
	}
	if r.Prefecture != nil {
		id := models.PrefectureID(*r.Prefecture)
		switch {
		case id == 0:
			p.ClearPrefecture = true
		case !id.Valid():
			return dErrors.New(dErrors.CodeValidation, "unknown prefecture")
		default:
			p.Prefecture = &id
		}
	}
	if r.Country != nil {
		id := models.CountryID(*r.Country)
		switch {
		case id == 0:
			p.ClearCountry = true
		case !id.Valid():
			return dErrors.New(dErrors.CodeValidation, "unknown country")
		default:
			p.Country = &id
		}
	}

	if r.Tags != nil {
		for _, t := range *r.Tags {
			if utf8.RuneCountInString(strings.TrimSpace(t)) > maxTagLength {
				return dErrors.New(dErrors.CodeValidation, "tags must be at most 50 characters")
			}
		}
		p.Tags = r.Tags
	}
	if r.Images != nil {
		p.Images = r.Images
	}

	r.patch = p
	return nil
}

func (r *UpdateDraftRequest) Patch() authoring.DraftPatch {
	return r.patch
}

// TagRequest is the body of POST /drafts/{id}/tags.
type TagRequest struct {
	Tag string `json:"tag"`
}

func (r *TagRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Tag = strings.TrimSpace(r.Tag)
	if utf8.RuneCountInString(r.Tag) > maxTagLength {
		return dErrors.New(dErrors.CodeValidation, "tags must be at most 50 characters")
	}
	return nil
}

// UpdateLocationRequest is the body of PATCH /drafts/{id}/locations/{locID}.
// Empty visitDate or visitTime strings clear the field; clearOrder resets the
// order.
type UpdateLocationRequest struct {
	Order       *int    `json:"order"`
	ClearOrder  bool    `json:"clearOrder"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	VisitDate   *string `json:"visitDate"`
	VisitTime   *string `json:"visitTime"`

	patch itinerary.Patch
}

func (r *UpdateLocationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	p := itinerary.Patch{
		Order:       r.Order,
		ClearOrder:  r.ClearOrder,
		Name:        r.Name,
		Description: r.Description,
	}
	if r.Order != nil && r.ClearOrder {
		return dErrors.New(dErrors.CodeValidation, "order and clearOrder are mutually exclusive")
	}
	if r.Name != nil && utf8.RuneCountInString(*r.Name) > maxTitleLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 200 characters")
	}

	var err error
	if p.VisitDate, p.ClearVisitDate, err = parseOptionalDate("visitDate", r.VisitDate); err != nil {
		return err
	}
	if r.VisitTime != nil {
		vt := strings.TrimSpace(*r.VisitTime)
		if vt == "" {
			p.ClearVisitTime = true
		} else {
			if _, err := time.Parse(visitTimeLayout, vt); err != nil {
				return dErrors.New(dErrors.CodeValidation, "visitTime must be HH:mm")
			}
			p.VisitTime = &vt
		}
	}

	r.patch = p
	return nil
}

func (r *UpdateLocationRequest) Patch() itinerary.Patch {
	return r.patch
}

// ProposeRequest is the body of PUT .../selection: either a coordinate pair
// or the index of a spot on the mock surface.
type ProposeRequest struct {
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
	Spot *int     `json:"spot"`
}

func (r *ProposeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	hasPair := r.Lat != nil || r.Lng != nil
	switch {
	case hasPair && r.Spot != nil:
		return dErrors.New(dErrors.CodeValidation, "give either lat/lng or spot, not both")
	case r.Spot != nil:
		return nil
	case r.Lat == nil || r.Lng == nil:
		return dErrors.New(dErrors.CodeValidation, "lat and lng are required")
	}
	return nil
}

func parseOptionalDate(field string, raw *string) (*time.Time, bool, error) {
	if raw == nil {
		return nil, false, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, true, nil
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return nil, false, dErrors.New(dErrors.CodeValidation, field+" must be yyyy-MM-dd")
	}
	return &t, false, nil
}
