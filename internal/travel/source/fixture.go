package source

import (
	"context"
	"fmt"
	"time"

	"tabilog/internal/travel/models"
	"tabilog/pkg/platform/sentinel"
)

// Fixture serves a fixed record set for offline mode and demos.
type Fixture struct {
	records []models.TravelRecordSummary
	details map[int64]models.TravelDetail
}

// NewFixture returns the built-in six-record data set.
func NewFixture() *Fixture {
	return NewFixtureFrom(fixtureRecords(), fixtureDetailExtras())
}

// NewFixtureFrom builds a fixture over arbitrary records; details are derived
// from the summaries plus any extras keyed by id.
func NewFixtureFrom(records []models.TravelRecordSummary, extras map[int64]fixtureExtras) *Fixture {
	f := &Fixture{
		records: models.CloneRecords(records),
		details: make(map[int64]models.TravelDetail, len(records)),
	}
	for _, r := range records {
		f.details[r.ID] = deriveDetail(r, extras[r.ID])
	}
	return f
}

func (f *Fixture) Kind() string { return KindFixture }

func (f *Fixture) Snapshot(_ context.Context) ([]models.TravelRecordSummary, error) {
	return models.CloneRecords(f.records), nil
}

func (f *Fixture) Detail(_ context.Context, id int64) (*models.TravelDetail, error) {
	d, ok := f.details[id]
	if !ok {
		return nil, fmt.Errorf("travel %d: %w", id, sentinel.ErrNotFound)
	}
	return &d, nil
}

// deriveDetail expands a summary into a detail with one itinerary day per
// location, starting at extras.firstDay.
func deriveDetail(r models.TravelRecordSummary, x fixtureExtras) models.TravelDetail {
	d := models.TravelDetail{
		ID:           r.ID,
		Title:        r.Title,
		Location:     r.Location,
		Date:         r.Date,
		Duration:     r.Duration,
		Images:       append([]string{}, r.Images...),
		Description:  r.Description,
		User:         models.DetailUser{Name: r.User.Name, Avatar: r.User.Avatar, Bio: x.bio},
		Likes:        r.Likes,
		CommentCount: r.CommentCount,
		Tags:         append([]string{}, r.Tags...),
		Locations:    append([]models.LocationDetail{}, x.locations...),
		Itinerary:    []models.ItineraryDay{},
		Comments:     append([]models.Comment{}, x.comments...),
	}

	start, err := time.Parse(models.DateLayout, x.firstDay)
	for i, l := range x.locations {
		day := models.ItineraryDay{
			Day: i + 1,
			Activities: []models.Activity{{
				Time: strPtr("10:00"),
				Name: l.Name,
			}},
		}
		if l.Description != "" {
			day.Activities[0].Description = strPtr(l.Description)
		}
		if err == nil {
			day.Date = strPtr(start.AddDate(0, 0, i).Format(models.DateLayout))
		}
		d.Itinerary = append(d.Itinerary, day)
	}
	return d
}
