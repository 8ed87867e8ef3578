package models

import "time"

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Coordinates is a confirmed latitude/longitude pair. Zero is a valid value.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// VisitLocationEntry is one stop of an itinerary being authored. ID is local
// to the authoring session. Order is user-controlled and never renumbered.
type VisitLocationEntry struct {
	ID          string       `json:"id"`
	Order       *int         `json:"order"`
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates"`
	Description string       `json:"description"`
	VisitDate   *time.Time   `json:"visitDate"`
	VisitTime   *string      `json:"visitTime"`
}

// Draft holds the record-level fields of a record being authored.
type Draft struct {
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	StartDate        *time.Time       `json:"startDate"`
	EndDate          *time.Time       `json:"endDate"`
	Visibility       *Visibility      `json:"visibility"`
	LocationCategory LocationCategory `json:"locationCategory"`
	Prefecture       *PrefectureID    `json:"prefecture"`
	Country          *CountryID       `json:"country"`
}
