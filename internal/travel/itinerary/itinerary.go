// Package itinerary holds the ordered list of visit locations of one record
// being authored. A Model is owned by a single authoring session and is not
// safe for concurrent use.
package itinerary

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"tabilog/internal/travel/models"
	"tabilog/pkg/platform/sentinel"
)

// Patch carries the fields to merge into an entry. Nil pointers leave the
// field alone; the Clear flags reset optional fields. Coordinates go through
// BindCoordinates or the selection flow only.
type Patch struct {
	Order       *int
	Name        *string
	Description *string
	VisitDate   *time.Time
	VisitTime   *string

	ClearOrder     bool
	ClearVisitDate bool
	ClearVisitTime bool
}

type Model struct {
	entries   []models.VisitLocationEntry
	selection *selection
	newID     func() string
}

// Option configures a Model.
type Option func(*Model)

// WithIDGenerator replaces the uuid generator, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(m *Model) {
		m.newID = fn
	}
}

func New(opts ...Option) *Model {
	m := &Model{
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore rebuilds a model from previously listed entries.
func Restore(entries []models.VisitLocationEntry, opts ...Option) *Model {
	m := New(opts...)
	for _, e := range entries {
		m.entries = append(m.entries, cloneEntry(e))
	}
	return m
}

// Add appends an entry whose order is one past the current count.
func (m *Model) Add() models.VisitLocationEntry {
	order := len(m.entries) + 1
	e := models.VisitLocationEntry{
		ID:    m.newID(),
		Order: &order,
	}
	m.entries = append(m.entries, e)
	return cloneEntry(e)
}

func (m *Model) Update(id string, p Patch) error {
	i := m.index(id)
	if i < 0 {
		return notFound(id)
	}
	e := &m.entries[i]

	switch {
	case p.ClearOrder:
		e.Order = nil
	case p.Order != nil:
		v := *p.Order
		e.Order = &v
	}
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	switch {
	case p.ClearVisitDate:
		e.VisitDate = nil
	case p.VisitDate != nil:
		v := *p.VisitDate
		e.VisitDate = &v
	}
	switch {
	case p.ClearVisitTime:
		e.VisitTime = nil
	case p.VisitTime != nil:
		v := *p.VisitTime
		e.VisitTime = &v
	}
	return nil
}

// Remove deletes an entry. Remaining orders are left as they are.
func (m *Model) Remove(id string) error {
	i := m.index(id)
	if i < 0 {
		return notFound(id)
	}
	m.entries = slices.Delete(m.entries, i, i+1)
	if m.selection != nil && m.selection.entryID == id {
		m.selection = nil
	}
	return nil
}

func (m *Model) BindCoordinates(id string, lat, lng float64) error {
	i := m.index(id)
	if i < 0 {
		return notFound(id)
	}
	m.entries[i].Coordinates = &models.Coordinates{Lat: lat, Lng: lng}
	return nil
}

func (m *Model) ClearCoordinates(id string) error {
	i := m.index(id)
	if i < 0 {
		return notFound(id)
	}
	m.entries[i].Coordinates = nil
	return nil
}

// List returns a copy of the entries in insertion order, not by Order.
func (m *Model) List() []models.VisitLocationEntry {
	out := make([]models.VisitLocationEntry, len(m.entries))
	for i, e := range m.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func (m *Model) Get(id string) (models.VisitLocationEntry, bool) {
	i := m.index(id)
	if i < 0 {
		return models.VisitLocationEntry{}, false
	}
	return cloneEntry(m.entries[i]), true
}

func (m *Model) Len() int {
	return len(m.entries)
}

func (m *Model) index(id string) int {
	return slices.IndexFunc(m.entries, func(e models.VisitLocationEntry) bool {
		return e.ID == id
	})
}

func notFound(id string) error {
	return fmt.Errorf("location %s: %w", id, sentinel.ErrNotFound)
}

func cloneEntry(e models.VisitLocationEntry) models.VisitLocationEntry {
	out := e
	if e.Order != nil {
		v := *e.Order
		out.Order = &v
	}
	if e.Coordinates != nil {
		c := *e.Coordinates
		out.Coordinates = &c
	}
	if e.VisitDate != nil {
		v := *e.VisitDate
		out.VisitDate = &v
	}
	if e.VisitTime != nil {
		v := *e.VisitTime
		out.VisitTime = &v
	}
	return out
}
