package itinerary

import (
	"errors"
	"fmt"
	"math"

	"tabilog/internal/travel/models"
	"tabilog/pkg/platform/sentinel"
)

// State is the coordinate binding state of one entry.
type State string

const (
	StateUnbound   State = "unbound"
	StateTentative State = "tentative"
	StateBound     State = "bound"
)

// Selection reports the coordinate binding of one entry. Tentative is only
// set while the entry's selection surface is open and a value was proposed.
type Selection struct {
	EntryID   string              `json:"entryId"`
	State     State               `json:"state"`
	Open      bool                `json:"open"`
	Tentative *models.Coordinates `json:"tentative"`
	Committed *models.Coordinates `json:"committed"`
}

type selection struct {
	entryID   string
	tentative *models.Coordinates
}

// OpenSelection opens the selection surface for id, seeded with the entry's
// committed coordinates. Only one surface is open at a time; opening another
// entry discards the previous tentative value.
func (m *Model) OpenSelection(id string) (Selection, error) {
	i := m.index(id)
	if i < 0 {
		return Selection{}, notFound(id)
	}
	s := &selection{entryID: id}
	if c := m.entries[i].Coordinates; c != nil {
		seed := *c
		s.tentative = &seed
	}
	m.selection = s
	return m.describe(i), nil
}

// Propose records a tentative value from the mapping collaborator.
func (m *Model) Propose(id string, lat, lng float64) (Selection, error) {
	i, err := m.openFor(id)
	if err != nil {
		return Selection{}, err
	}
	if err := ValidateCoordinates(lat, lng); err != nil {
		return Selection{}, err
	}
	m.selection.tentative = &models.Coordinates{Lat: lat, Lng: lng}
	return m.describe(i), nil
}

// ResetSelection drops the tentative value and keeps the surface open.
func (m *Model) ResetSelection(id string) (Selection, error) {
	i, err := m.openFor(id)
	if err != nil {
		return Selection{}, err
	}
	m.selection.tentative = nil
	return m.describe(i), nil
}

// CancelSelection closes the surface without touching the entry.
func (m *Model) CancelSelection(id string) (Selection, error) {
	i, err := m.openFor(id)
	if err != nil {
		return Selection{}, err
	}
	m.selection = nil
	return m.describe(i), nil
}

// ConfirmSelection commits the tentative value and closes the surface.
// Confirming with nothing selected clears the committed coordinates.
func (m *Model) ConfirmSelection(id string) (Selection, error) {
	i, err := m.openFor(id)
	if err != nil {
		return Selection{}, err
	}
	t := m.selection.tentative
	m.selection = nil
	if t != nil {
		err = m.BindCoordinates(id, t.Lat, t.Lng)
	} else {
		err = m.ClearCoordinates(id)
	}
	if err != nil {
		return Selection{}, err
	}
	return m.describe(i), nil
}

// Selection describes id's binding whether or not its surface is open.
func (m *Model) Selection(id string) (Selection, bool) {
	i := m.index(id)
	if i < 0 {
		return Selection{}, false
	}
	return m.describe(i), true
}

// OpenEntry returns the id whose surface is open, if any.
func (m *Model) OpenEntry() (string, bool) {
	if m.selection == nil {
		return "", false
	}
	return m.selection.entryID, true
}

func (m *Model) openFor(id string) (int, error) {
	i := m.index(id)
	if i < 0 {
		return -1, notFound(id)
	}
	if m.selection == nil || m.selection.entryID != id {
		return -1, fmt.Errorf("no selection open for location %s: %w", id, sentinel.ErrInvalidState)
	}
	return i, nil
}

func (m *Model) describe(i int) Selection {
	e := m.entries[i]
	out := Selection{EntryID: e.ID, State: StateUnbound}
	if e.Coordinates != nil {
		c := *e.Coordinates
		out.Committed = &c
		out.State = StateBound
	}
	if m.selection != nil && m.selection.entryID == e.ID {
		out.Open = true
		if t := m.selection.tentative; t != nil {
			v := *t
			out.Tentative = &v
			out.State = StateTentative
		}
	}
	return out
}

// ErrCoordinateRange is returned for latitude or longitude out of range.
var ErrCoordinateRange = errors.New("coordinates out of range")

func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("lat=%v lng=%v: %w", lat, lng, ErrCoordinateRange)
	}
	return nil
}
