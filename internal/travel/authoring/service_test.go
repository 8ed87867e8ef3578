package authoring

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tabilog/internal/travel/itinerary"
	"tabilog/internal/travel/models"
	"tabilog/internal/travel/submission"
	"tabilog/internal/travel/transport"
	"tabilog/internal/travel/validation"
	dErrors "tabilog/pkg/domain-errors"
	"tabilog/pkg/requestcontext"
)

type stubSubmitter struct {
	mu       sync.Mutex
	calls    int
	token    string
	payload  submission.Payload
	err      error
	response json.RawMessage
	block    chan struct{}
	entered  chan struct{}
}

func (f *stubSubmitter) Create(_ context.Context, token string, payload submission.Payload) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls++
	f.token = token
	f.payload = payload
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if block != nil {
		<-block
	}
	return f.response, f.err
}

type ServiceSuite struct {
	suite.Suite
	store     *InMemoryStore
	submitter *stubSubmitter
	svc       *Service
	now       time.Time
	submitted int
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.submitter = &stubSubmitter{response: json.RawMessage(`{"id": 10}`)}
	s.now = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	s.submitted = 0
	n := 0
	s.svc = NewService(s.store, s.submitter,
		WithClock(func() time.Time { return s.now }),
		WithIDGenerator(func() string { n++; return "draft-" + strconv.Itoa(n) }),
		WithSubmittedHook(func(context.Context) { s.submitted++ }),
	)
}

func ptr[T any](v T) *T { return &v }

// fillValid turns a fresh session into a submittable one with two locations.
func (s *ServiceSuite) fillValid(id string) []models.VisitLocationEntry {
	ctx := context.Background()
	day := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	_, err := s.svc.UpdateDraft(ctx, id, DraftPatch{
		Title:      ptr("春の京都"),
		StartDate:  &day,
		EndDate:    &day,
		Prefecture: ptr(models.PrefectureID(26)),
		Tags:       &[]string{" 京都 ", "京都", "桜"},
		Images:     &[]string{"a.jpg"},
	})
	s.Require().NoError(err)

	var out []models.VisitLocationEntry
	for _, name := range []string{"清水寺", "哲学の道"} {
		e, err := s.svc.AddLocation(ctx, id)
		s.Require().NoError(err)
		e, err = s.svc.UpdateLocation(ctx, id, e.ID, itinerary.Patch{Name: ptr(name), VisitDate: &day})
		s.Require().NoError(err)
		out = append(out, e)
	}
	return out
}

func (s *ServiceSuite) TestCreateSessionDefaults() {
	v, err := s.svc.CreateSession(context.Background(), "user-1")
	s.Require().NoError(err)
	s.Equal("draft-1", v.ID)
	s.Equal(models.VisibilityPublic, *v.Draft.Visibility)
	s.Equal(models.LocationCategoryDomestic, v.Draft.LocationCategory)
	s.NotNil(v.Tags)
	s.NotNil(v.Locations)
	s.Nil(v.OpenSelection)
}

func (s *ServiceSuite) TestUnknownSession() {
	_, err := s.svc.GetSession(context.Background(), "nope")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("draft not found", dErrors.MessageOf(err))

	s.True(dErrors.HasCode(s.svc.DeleteSession(context.Background(), "nope"), dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestOwnedSessionIsHiddenFromOtherSubjects() {
	owner := requestcontext.WithSubject(context.Background(), "user-1")
	other := requestcontext.WithSubject(context.Background(), "user-2")
	anonymous := context.Background()

	v, err := s.svc.CreateSession(owner, "user-1")
	s.Require().NoError(err)

	for name, ctx := range map[string]context.Context{"other subject": other, "anonymous": anonymous} {
		s.Run(name, func() {
			_, err := s.svc.GetSession(ctx, v.ID)
			s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

			_, err = s.svc.UpdateDraft(ctx, v.ID, DraftPatch{Title: ptr("乗っ取り")})
			s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

			_, err = s.svc.Validate(ctx, v.ID)
			s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

			_, err = s.svc.Submit(ctx, v.ID, "")
			s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

			s.True(dErrors.HasCode(s.svc.DeleteSession(ctx, v.ID), dErrors.CodeNotFound))
		})
	}

	got, err := s.svc.GetSession(owner, v.ID)
	s.Require().NoError(err)
	s.Equal("", got.Draft.Title)
	s.Equal(0, s.submitter.calls)
	s.Require().NoError(s.svc.DeleteSession(owner, v.ID))
}

func (s *ServiceSuite) TestAnonymousSessionIsSharedByID() {
	v, err := s.svc.CreateSession(context.Background(), "")
	s.Require().NoError(err)

	signedIn := requestcontext.WithSubject(context.Background(), "user-1")
	_, err = s.svc.GetSession(signedIn, v.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestUpdateDraftAndTags() {
	ctx := context.Background()
	v, _ := s.svc.CreateSession(ctx, "")

	v, err := s.svc.UpdateDraft(ctx, v.ID, DraftPatch{
		Title:            ptr("旅"),
		LocationCategory: ptr(models.LocationCategoryOverseas),
		Country:          ptr(models.CountryID(5)),
		Tags:             &[]string{"パリ", " パリ ", ""},
	})
	s.Require().NoError(err)
	s.Equal("旅", v.Draft.Title)
	s.Equal(models.CountryID(5), *v.Draft.Country)
	s.Equal([]string{"パリ"}, v.Tags)

	v, err = s.svc.AddTag(ctx, v.ID, "  美術館 ")
	s.Require().NoError(err)
	v, err = s.svc.AddTag(ctx, v.ID, "パリ")
	s.Require().NoError(err)
	v, err = s.svc.AddTag(ctx, v.ID, "   ")
	s.Require().NoError(err)
	s.Equal([]string{"パリ", "美術館"}, v.Tags)

	v, err = s.svc.RemoveTag(ctx, v.ID, "パリ")
	s.Require().NoError(err)
	s.Equal([]string{"美術館"}, v.Tags)

	v, err = s.svc.UpdateDraft(ctx, v.ID, DraftPatch{ClearCountry: true})
	s.Require().NoError(err)
	s.Nil(v.Draft.Country)
}

func (s *ServiceSuite) TestLocationsAndSelection() {
	ctx := context.Background()
	v, _ := s.svc.CreateSession(ctx, "")

	a, err := s.svc.AddLocation(ctx, v.ID)
	s.Require().NoError(err)
	b, err := s.svc.AddLocation(ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(2, *b.Order)

	_, view, err := s.svc.OpenSelection(ctx, v.ID, a.ID)
	s.Require().NoError(err)
	s.Equal(a.ID, *view.OpenSelection)

	sel, _, err := s.svc.ProposeCoordinates(ctx, v.ID, a.ID, 35.0, 135.7)
	s.Require().NoError(err)
	s.Equal(itinerary.StateTentative, sel.State)

	_, _, err = s.svc.ProposeCoordinates(ctx, v.ID, b.ID, 1, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "b has no open surface")

	_, _, err = s.svc.ProposeCoordinates(ctx, v.ID, a.ID, 100, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	sel, view, err = s.svc.ConfirmSelection(ctx, v.ID, a.ID)
	s.Require().NoError(err)
	s.Equal(itinerary.StateBound, sel.State)
	s.Nil(view.OpenSelection)
	s.Equal(&models.Coordinates{Lat: 35.0, Lng: 135.7}, view.Locations[0].Coordinates)

	s.Require().NoError(s.svc.RemoveLocation(ctx, v.ID, a.ID))
	got, err := s.svc.GetSession(ctx, v.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Locations, 1)
	s.Equal(2, *got.Locations[0].Order, "remaining order is not renumbered")

	err = s.svc.RemoveLocation(ctx, v.ID, a.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("location not found", dErrors.MessageOf(err))
}

func (s *ServiceSuite) TestValidate() {
	ctx := context.Background()
	v, _ := s.svc.CreateSession(ctx, "")

	errs, err := s.svc.Validate(ctx, v.ID)
	s.Require().NoError(err)
	s.True(errs.Has(validation.KeyTitle))
	s.True(errs.Has(validation.KeyPrefecture))
	s.True(errs.Has(validation.KeyLocations))
	s.False(errs.Has(validation.KeyVisibility), "visibility defaults to public")
}

func (s *ServiceSuite) TestSubmitInvalidDraftReturnsErrors() {
	ctx := context.Background()
	v, _ := s.svc.CreateSession(ctx, "")

	res, err := s.svc.Submit(ctx, v.ID, "tok")
	s.Require().NoError(err)
	s.False(res.Errors.Empty())
	s.Nil(res.Response)
	s.Equal(0, s.submitter.calls)
}

func (s *ServiceSuite) TestSubmitSuccess() {
	ctx := context.Background()
	v, _ := s.svc.CreateSession(ctx, "")
	s.fillValid(v.ID)

	res, err := s.svc.Submit(ctx, v.ID, "tok")
	s.Require().NoError(err)
	s.JSONEq(`{"id": 10}`, string(res.Response))
	s.Equal("tok", s.submitter.token)
	s.Equal([]string{"京都", "桜"}, s.submitter.payload.Tags)
	s.Require().Len(s.submitter.payload.Locations, 2)
	s.Equal("2024-04-02", *s.submitter.payload.Locations[1].VisitDate)
	s.Equal(1, s.submitted)

	_, err = s.svc.GetSession(ctx, v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "submitted session is dropped")
}

func (s *ServiceSuite) TestSubmitFailurePreservesSession() {
	ctx := context.Background()
	v, _ := s.svc.CreateSession(ctx, "")
	s.fillValid(v.ID)
	before, err := s.svc.GetSession(ctx, v.ID)
	s.Require().NoError(err)

	s.submitter.err = transport.NewError(transport.CategoryBadData, 400, "タイトルが不正です", nil)
	_, err = s.svc.Submit(ctx, v.ID, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal("タイトルが不正です", dErrors.MessageOf(err))
	s.Equal(0, s.submitted)

	after, err := s.svc.GetSession(ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(before.Draft, after.Draft)
	s.Equal(before.Locations, after.Locations)
	s.Equal(before.Tags, after.Tags)
	s.Equal(before.Images, after.Images)
	s.False(after.Submitting)

	s.submitter.err = nil
	_, err = s.svc.Submit(ctx, v.ID, "")
	s.Require().NoError(err, "retry after failure succeeds")
}

func (s *ServiceSuite) TestSubmitIsNotReentrant() {
	ctx := context.Background()
	v, _ := s.svc.CreateSession(ctx, "")
	s.fillValid(v.ID)

	s.submitter.block = make(chan struct{})
	s.submitter.entered = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := s.svc.Submit(ctx, v.ID, "")
		done <- err
	}()
	<-s.submitter.entered

	_, err := s.svc.Submit(ctx, v.ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.svc.AddTag(ctx, v.ID, "late")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "edits wait for the submission")

	close(s.submitter.block)
	s.Require().NoError(<-done)
	s.Equal(1, s.submitter.calls)
}

func TestSweepIdle(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(store, &stubSubmitter{}, WithClock(func() time.Time { return now }))

	old, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	fresh, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, svc.SweepIdle(context.Background(), time.Hour))
	_, err = svc.GetSession(context.Background(), old.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = svc.GetSession(context.Background(), fresh.ID)
	assert.NoError(t, err)
}
