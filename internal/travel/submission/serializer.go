// Package submission maps a validated draft into the payload accepted by the
// backing store. It performs no validation; run validation.Validate first.
package submission

import (
	"time"

	"tabilog/internal/travel/models"
)

// Payload is the body of POST /travels. Optional values encode as null and
// are never omitted.
type Payload struct {
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	StartDate        *string                 `json:"startDate"`
	EndDate          *string                 `json:"endDate"`
	Visibility       *models.Visibility      `json:"visibility"`
	LocationCategory models.LocationCategory `json:"locationCategory"`
	Prefecture       *models.PrefectureID    `json:"prefecture"`
	Country          *models.CountryID       `json:"country"`
	Locations        []LocationPayload       `json:"locations"`
	Tags             []string                `json:"tags"`
	Images           []string                `json:"images"`
}

type LocationPayload struct {
	Order       int      `json:"order"`
	Name        string   `json:"name"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Description string   `json:"description"`
	VisitDate   *string  `json:"visitDate"`
	VisitTime   *string  `json:"visitTime"`
}

// Serialize builds the payload. An entry without an order falls back to its
// 1-based list position. Tags pass through as given; sessions normalize them
// on entry. media holds file names only.
func Serialize(draft models.Draft, locations []models.VisitLocationEntry, tags []string, media []string) Payload {
	p := Payload{
		Title:            draft.Title,
		Description:      draft.Description,
		StartDate:        formatDate(draft.StartDate),
		EndDate:          formatDate(draft.EndDate),
		Visibility:       draft.Visibility,
		LocationCategory: draft.LocationCategory,
		Prefecture:       validPrefecture(draft.Prefecture),
		Country:          validCountry(draft.Country),
		Locations:        make([]LocationPayload, 0, len(locations)),
		Tags:             append(make([]string, 0, len(tags)), tags...),
		Images:           make([]string, 0, len(media)),
	}

	for i, loc := range locations {
		lp := LocationPayload{
			Order:       i + 1,
			Name:        loc.Name,
			Description: loc.Description,
			VisitDate:   formatDate(loc.VisitDate),
		}
		if loc.Order != nil {
			lp.Order = *loc.Order
		}
		if loc.Coordinates != nil {
			lat, lng := loc.Coordinates.Lat, loc.Coordinates.Lng
			lp.Lat, lp.Lng = &lat, &lng
		}
		if loc.VisitTime != nil && *loc.VisitTime != "" {
			v := *loc.VisitTime
			lp.VisitTime = &v
		}
		p.Locations = append(p.Locations, lp)
	}

	for _, name := range media {
		if name != "" {
			p.Images = append(p.Images, name)
		}
	}
	return p
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(models.DateLayout)
	return &s
}

func validPrefecture(id *models.PrefectureID) *models.PrefectureID {
	if id == nil || !id.Valid() {
		return nil
	}
	v := *id
	return &v
}

func validCountry(id *models.CountryID) *models.CountryID {
	if id == nil || !id.Valid() {
		return nil
	}
	v := *id
	return &v
}
