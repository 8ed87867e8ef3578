package handler

import (
	"time"

	"tabilog/internal/travel/authoring"
	"tabilog/internal/travel/itinerary"
	"tabilog/internal/travel/mapsurface"
	"tabilog/internal/travel/models"
	"tabilog/internal/travel/validation"
)

// DraftBody is the record-level part of a draft with calendar dates rendered
// as yyyy-MM-dd.
type DraftBody struct {
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	StartDate        *string                 `json:"startDate"`
	EndDate          *string                 `json:"endDate"`
	Visibility       *models.Visibility      `json:"visibility"`
	LocationCategory models.LocationCategory `json:"locationCategory"`
	Prefecture       *models.PrefectureID    `json:"prefecture"`
	Country          *models.CountryID       `json:"country"`
}

type LocationResponse struct {
	ID          string              `json:"id"`
	Order       *int                `json:"order"`
	Name        string              `json:"name"`
	Coordinates *models.Coordinates `json:"coordinates"`
	Description string              `json:"description"`
	VisitDate   *string             `json:"visitDate"`
	VisitTime   *string             `json:"visitTime"`
}

type DraftResponse struct {
	ID            string             `json:"id"`
	Draft         DraftBody          `json:"draft"`
	Locations     []LocationResponse `json:"locations"`
	Tags          []string           `json:"tags"`
	Images        []string           `json:"images"`
	OpenSelection *string            `json:"openSelection"`
	Submitting    bool               `json:"submitting"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// SelectionResponse answers every selection action. Surface is only present
// while the selection is open.
type SelectionResponse struct {
	Selection itinerary.Selection `json:"selection"`
	Surface   *mapsurface.Surface `json:"surface,omitempty"`
	Location  *LocationResponse   `json:"location"`
}

type ValidationResponse struct {
	Errors validation.Errors `json:"errors"`
}

type DataResponse struct {
	Data any `json:"data"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(models.DateLayout)
	return &s
}

func toDraftBody(d models.Draft) DraftBody {
	return DraftBody{
		Title:            d.Title,
		Description:      d.Description,
		StartDate:        formatDate(d.StartDate),
		EndDate:          formatDate(d.EndDate),
		Visibility:       d.Visibility,
		LocationCategory: d.LocationCategory,
		Prefecture:       d.Prefecture,
		Country:          d.Country,
	}
}

func toLocationResponse(e models.VisitLocationEntry) LocationResponse {
	return LocationResponse{
		ID:          e.ID,
		Order:       e.Order,
		Name:        e.Name,
		Coordinates: e.Coordinates,
		Description: e.Description,
		VisitDate:   formatDate(e.VisitDate),
		VisitTime:   e.VisitTime,
	}
}

func toDraftResponse(v *authoring.View) *DraftResponse {
	locs := make([]LocationResponse, 0, len(v.Locations))
	for _, e := range v.Locations {
		locs = append(locs, toLocationResponse(e))
	}
	return &DraftResponse{
		ID:            v.ID,
		Draft:         toDraftBody(v.Draft),
		Locations:     locs,
		Tags:          v.Tags,
		Images:        v.Images,
		OpenSelection: v.OpenSelection,
		Submitting:    v.Submitting,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func findLocation(v *authoring.View, id string) *LocationResponse {
	for _, e := range v.Locations {
		if e.ID == id {
			l := toLocationResponse(e)
			return &l
		}
	}
	return nil
}
