package models

import "time"

// UserRef identifies the owner of a record.
type UserRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// TravelRecordSummary is one card in a list result. Values are immutable once
// fetched; a new fetch replaces the whole snapshot.
type TravelRecordSummary struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	Location         string           `json:"location"`
	Date             string           `json:"date"`
	Duration         string           `json:"duration"`
	Images           []string         `json:"images"`
	Description      string           `json:"description"`
	User             UserRef          `json:"user"`
	Likes            int              `json:"likes"`
	CommentCount     int              `json:"commentCount"`
	Tags             []string         `json:"tags"`
	LocationCategory LocationCategory `json:"locationCategory"`
	Visibility       Visibility       `json:"visibility"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// CloneRecords copies a snapshot so a query can sort it without touching the
// caller's slice. Nested slices are shared; records are never mutated.
func CloneRecords(records []TravelRecordSummary) []TravelRecordSummary {
	out := make([]TravelRecordSummary, len(records))
	copy(out, records)
	return out
}

// DetailUser is the owner block of a detail record.
type DetailUser struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio,omitempty"`
}

// LocationDetail is a visited location of a published record.
type LocationDetail struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description"`
	OrderIndex  *int    `json:"orderIndex,omitempty"`
}

// Activity is one entry of an itinerary day.
type Activity struct {
	Time        *string `json:"time,omitempty"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ItineraryDay groups activities by travel day.
type ItineraryDay struct {
	Day        int        `json:"day"`
	Date       *string    `json:"date,omitempty"`
	Activities []Activity `json:"activities"`
}

// CommentAuthor is the author block of a comment.
type CommentAuthor struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type Comment struct {
	ID      int64         `json:"id"`
	User    CommentAuthor `json:"user"`
	Content string        `json:"content"`
	Date    string        `json:"date"`
}

// TravelDetail is the full view of one record.
type TravelDetail struct {
	ID           int64            `json:"id"`
	Title        string           `json:"title"`
	Location     string           `json:"location"`
	Date         string           `json:"date"`
	Duration     string           `json:"duration"`
	Images       []string         `json:"images"`
	Description  string           `json:"description"`
	User         DetailUser       `json:"user"`
	Likes        int              `json:"likes"`
	CommentCount int              `json:"commentCount"`
	Tags         []string         `json:"tags"`
	Locations    []LocationDetail `json:"locations"`
	Itinerary    []ItineraryDay   `json:"itinerary"`
	Comments     []Comment        `json:"comments"`
}
