package itinerary

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tabilog/internal/travel/models"
	"tabilog/pkg/platform/sentinel"
)

type ModelSuite struct {
	suite.Suite
	model *Model
}

func TestModelSuite(t *testing.T) {
	suite.Run(t, new(ModelSuite))
}

func (s *ModelSuite) SetupTest() {
	n := 0
	s.model = New(WithIDGenerator(func() string {
		n++
		return "loc-" + strconv.Itoa(n)
	}))
}

func orders(entries []models.VisitLocationEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = *e.Order
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func (s *ModelSuite) TestAddAssignsSequentialOrder() {
	a := s.model.Add()
	b := s.model.Add()
	c := s.model.Add()

	s.Equal([]int{1, 2, 3}, orders(s.model.List()))
	s.NotEqual(a.ID, b.ID)
	s.NotEqual(b.ID, c.ID)
	s.Nil(a.Coordinates)
	s.Nil(a.VisitDate)
	s.Empty(a.Name)
}

func (s *ModelSuite) TestRemoveDoesNotRenumber() {
	first := s.model.Add()
	s.model.Add()
	s.model.Add()

	s.Require().NoError(s.model.Remove(first.ID))
	s.Equal([]int{2, 3}, orders(s.model.List()))

	next := s.model.Add()
	s.Equal(3, *next.Order, "order is count+1 even when it collides")
}

func (s *ModelSuite) TestUpdate() {
	e := s.model.Add()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	err := s.model.Update(e.ID, Patch{
		Name:        ptr("清水寺"),
		Description: ptr("朝一番"),
		VisitDate:   &day,
		VisitTime:   ptr("09:00"),
		Order:       ptr(5),
	})
	s.Require().NoError(err)

	got, ok := s.model.Get(e.ID)
	s.Require().True(ok)
	s.Equal("清水寺", got.Name)
	s.Equal("朝一番", got.Description)
	s.Equal(day, *got.VisitDate)
	s.Equal("09:00", *got.VisitTime)
	s.Equal(5, *got.Order)

	s.Run("unset fields are left alone", func() {
		s.Require().NoError(s.model.Update(e.ID, Patch{Description: ptr("")}))
		got, _ := s.model.Get(e.ID)
		s.Equal("清水寺", got.Name)
		s.Empty(got.Description)
	})

	s.Run("clear flags reset optional fields", func() {
		s.Require().NoError(s.model.Update(e.ID, Patch{ClearOrder: true, ClearVisitDate: true, ClearVisitTime: true}))
		got, _ := s.model.Get(e.ID)
		s.Nil(got.Order)
		s.Nil(got.VisitDate)
		s.Nil(got.VisitTime)
	})

	s.Run("unknown id is not found", func() {
		err := s.model.Update("missing", Patch{Name: ptr("x")})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ModelSuite) TestListReturnsCopies() {
	e := s.model.Add()
	list := s.model.List()
	*list[0].Order = 99
	list[0].Name = "mutated"

	got, _ := s.model.Get(e.ID)
	s.Equal(1, *got.Order)
	s.Empty(got.Name)
}

func (s *ModelSuite) TestBindAndClearCoordinates() {
	e := s.model.Add()
	s.Require().NoError(s.model.BindCoordinates(e.ID, 0, 0))
	got, _ := s.model.Get(e.ID)
	s.Require().NotNil(got.Coordinates, "zero is a valid coordinate")
	s.Equal(models.Coordinates{}, *got.Coordinates)

	s.Require().NoError(s.model.ClearCoordinates(e.ID))
	got, _ = s.model.Get(e.ID)
	s.Nil(got.Coordinates)

	s.ErrorIs(s.model.BindCoordinates("missing", 1, 1), sentinel.ErrNotFound)
	s.ErrorIs(s.model.Remove("missing"), sentinel.ErrNotFound)
}

func (s *ModelSuite) TestSelectionConfirm() {
	e := s.model.Add()

	sel, err := s.model.OpenSelection(e.ID)
	s.Require().NoError(err)
	s.True(sel.Open)
	s.Equal(StateUnbound, sel.State)

	sel, err = s.model.Propose(e.ID, 34.9949, 135.7850)
	s.Require().NoError(err)
	s.Equal(StateTentative, sel.State)
	s.Nil(sel.Committed, "proposing never touches the entry")

	sel, err = s.model.ConfirmSelection(e.ID)
	s.Require().NoError(err)
	s.False(sel.Open)
	s.Equal(StateBound, sel.State)
	s.Equal(&models.Coordinates{Lat: 34.9949, Lng: 135.7850}, sel.Committed)

	_, open := s.model.OpenEntry()
	s.False(open)
}

func (s *ModelSuite) TestSelectionCancelAndResetKeepCommitted() {
	e := s.model.Add()
	s.Require().NoError(s.model.BindCoordinates(e.ID, 35.0, 135.0))
	committed := &models.Coordinates{Lat: 35.0, Lng: 135.0}

	s.Run("open seeds tentative with committed value", func() {
		sel, err := s.model.OpenSelection(e.ID)
		s.Require().NoError(err)
		s.Equal(committed, sel.Tentative)
	})

	s.Run("cancel discards the proposal", func() {
		_, err := s.model.Propose(e.ID, 10, 10)
		s.Require().NoError(err)
		sel, err := s.model.CancelSelection(e.ID)
		s.Require().NoError(err)
		s.False(sel.Open)
		s.Equal(StateBound, sel.State)
		s.Equal(committed, sel.Committed)
	})

	s.Run("reset clears tentative only", func() {
		_, err := s.model.OpenSelection(e.ID)
		s.Require().NoError(err)
		sel, err := s.model.ResetSelection(e.ID)
		s.Require().NoError(err)
		s.True(sel.Open)
		s.Nil(sel.Tentative)
		s.Equal(committed, sel.Committed)
	})

	s.Run("confirm with nothing selected clears", func() {
		sel, err := s.model.ConfirmSelection(e.ID)
		s.Require().NoError(err)
		s.Equal(StateUnbound, sel.State)
		got, _ := s.model.Get(e.ID)
		s.Nil(got.Coordinates)
	})
}

func (s *ModelSuite) TestSelectionRequiresOpenSurface() {
	a := s.model.Add()
	b := s.model.Add()

	_, err := s.model.Propose(a.ID, 1, 1)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	_, err = s.model.OpenSelection(a.ID)
	s.Require().NoError(err)
	_, err = s.model.Propose(a.ID, 1, 1)
	s.Require().NoError(err)

	_, err = s.model.OpenSelection(b.ID)
	s.Require().NoError(err)
	_, err = s.model.ConfirmSelection(a.ID)
	s.ErrorIs(err, sentinel.ErrInvalidState, "opening b closed a")

	id, open := s.model.OpenEntry()
	s.True(open)
	s.Equal(b.ID, id)

	s.Require().NoError(s.model.Remove(b.ID))
	_, open = s.model.OpenEntry()
	s.False(open, "removing the entry discards its selection")

	_, err = s.model.OpenSelection("missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		ok       bool
	}{
		{"origin", 0, 0, true},
		{"bounds", -90, 180, true},
		{"lat too high", 90.1, 0, false},
		{"lng too low", 0, -180.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrCoordinateRange))
			}
		})
	}
}

func TestProposeRejectsOutOfRange(t *testing.T) {
	m := New()
	e := m.Add()
	_, err := m.OpenSelection(e.ID)
	require.NoError(t, err)

	_, err = m.Propose(e.ID, 91, 0)
	require.ErrorIs(t, err, ErrCoordinateRange)

	sel, ok := m.Selection(e.ID)
	require.True(t, ok)
	assert.Nil(t, sel.Tentative)
}
