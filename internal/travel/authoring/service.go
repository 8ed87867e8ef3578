package authoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tabilog/internal/travel/itinerary"
	"tabilog/internal/travel/metrics"
	"tabilog/internal/travel/models"
	"tabilog/internal/travel/submission"
	"tabilog/internal/travel/transport"
	"tabilog/internal/travel/validation"
	dErrors "tabilog/pkg/domain-errors"
	"tabilog/pkg/platform/sentinel"
	platformstrings "tabilog/pkg/platform/strings"
	"tabilog/pkg/requestcontext"
)

// Submitter sends a serialized draft to the backing store.
type Submitter interface {
	Create(ctx context.Context, token string, payload submission.Payload) (json.RawMessage, error)
}

// Store persists draft sessions. With must serialize access per session.
type Store interface {
	Create(ctx context.Context, session *Session) error
	With(ctx context.Context, id string, fn func(*Session) error) error
	Delete(ctx context.Context, id string) error
	Sweep(cutoff time.Time) int
	Len() int
}

// SubmitResult is the outcome of a submit attempt. Exactly one of Errors and
// Response is set.
type SubmitResult struct {
	Errors   validation.Errors
	Response json.RawMessage
}

type Service struct {
	store       Store
	submitter   Submitter
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	newID       func() string
	onSubmitted func(context.Context)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// WithSubmittedHook runs after every successful submission, e.g. to drop
// cached list snapshots.
func WithSubmittedHook(fn func(context.Context)) Option {
	return func(s *Service) {
		s.onSubmitted = fn
	}
}

func NewService(store Store, submitter Submitter, opts ...Option) *Service {
	s := &Service{
		store:     store,
		submitter: submitter,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession starts an empty draft owned by owner ("" for anonymous). An
// owned draft is only visible to requests carrying the same verified subject.
func (s *Service) CreateSession(ctx context.Context, owner string) (*View, error) {
	session := newSession(s.newID(), owner, s.now())
	if err := s.store.Create(ctx, session); err != nil {
		return nil, s.translate(err)
	}
	s.metrics.SetDraftSessions(s.store.Len())
	s.logger.InfoContext(ctx, "draft session created", "session_id", session.ID)
	return session.view(), nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*View, error) {
	var v *View
	err := s.with(ctx, id, func(session *Session) error {
		v = session.view()
		return nil
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return v, nil
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if err := s.with(ctx, id, func(*Session) error { return nil }); err != nil {
		return s.translate(err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.translate(err)
	}
	s.metrics.SetDraftSessions(s.store.Len())
	return nil
}

func (s *Service) UpdateDraft(ctx context.Context, id string, patch DraftPatch) (*View, error) {
	var v *View
	err := s.mutate(ctx, id, func(session *Session) error {
		patch.apply(session, platformstrings.DedupeAndTrim)
		if session.Tags == nil {
			session.Tags = []string{}
		}
		v = session.view()
		return nil
	})
	return v, err
}

// AddTag appends a trimmed tag; blanks and duplicates are ignored.
func (s *Service) AddTag(ctx context.Context, id, tag string) (*View, error) {
	var v *View
	err := s.mutate(ctx, id, func(session *Session) error {
		session.Tags, _ = platformstrings.AppendUnique(session.Tags, tag)
		v = session.view()
		return nil
	})
	return v, err
}

func (s *Service) RemoveTag(ctx context.Context, id, tag string) (*View, error) {
	var v *View
	err := s.mutate(ctx, id, func(session *Session) error {
		kept := session.Tags[:0]
		for _, t := range session.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		session.Tags = kept
		v = session.view()
		return nil
	})
	return v, err
}

func (s *Service) AddLocation(ctx context.Context, id string) (models.VisitLocationEntry, error) {
	var e models.VisitLocationEntry
	err := s.mutate(ctx, id, func(session *Session) error {
		e = session.Itinerary.Add()
		return nil
	})
	return e, err
}

func (s *Service) UpdateLocation(ctx context.Context, id, locID string, patch itinerary.Patch) (models.VisitLocationEntry, error) {
	var e models.VisitLocationEntry
	err := s.mutate(ctx, id, func(session *Session) error {
		if err := session.Itinerary.Update(locID, patch); err != nil {
			return err
		}
		e, _ = session.Itinerary.Get(locID)
		return nil
	})
	return e, err
}

func (s *Service) RemoveLocation(ctx context.Context, id, locID string) error {
	return s.mutate(ctx, id, func(session *Session) error {
		return session.Itinerary.Remove(locID)
	})
}

// Selection actions of the coordinate binding flow.
const (
	ActionOpen    = "open"
	ActionPropose = "propose"
	ActionReset   = "reset"
	ActionCancel  = "cancel"
	ActionConfirm = "confirm"
)

func (s *Service) OpenSelection(ctx context.Context, id, locID string) (itinerary.Selection, *View, error) {
	return s.selection(ctx, id, ActionOpen, func(m *itinerary.Model) (itinerary.Selection, error) {
		return m.OpenSelection(locID)
	})
}

func (s *Service) ProposeCoordinates(ctx context.Context, id, locID string, lat, lng float64) (itinerary.Selection, *View, error) {
	return s.selection(ctx, id, ActionPropose, func(m *itinerary.Model) (itinerary.Selection, error) {
		return m.Propose(locID, lat, lng)
	})
}

func (s *Service) ResetSelection(ctx context.Context, id, locID string) (itinerary.Selection, *View, error) {
	return s.selection(ctx, id, ActionReset, func(m *itinerary.Model) (itinerary.Selection, error) {
		return m.ResetSelection(locID)
	})
}

func (s *Service) CancelSelection(ctx context.Context, id, locID string) (itinerary.Selection, *View, error) {
	return s.selection(ctx, id, ActionCancel, func(m *itinerary.Model) (itinerary.Selection, error) {
		return m.CancelSelection(locID)
	})
}

func (s *Service) ConfirmSelection(ctx context.Context, id, locID string) (itinerary.Selection, *View, error) {
	return s.selection(ctx, id, ActionConfirm, func(m *itinerary.Model) (itinerary.Selection, error) {
		return m.ConfirmSelection(locID)
	})
}

// selection runs a selection action and also returns the session view, which
// callers use to describe the mapping surface.
func (s *Service) selection(ctx context.Context, id, action string, fn func(*itinerary.Model) (itinerary.Selection, error)) (itinerary.Selection, *View, error) {
	var sel itinerary.Selection
	var v *View
	err := s.mutate(ctx, id, func(session *Session) error {
		var err error
		sel, err = fn(session.Itinerary)
		if err != nil {
			return err
		}
		v = session.view()
		return nil
	})
	if err != nil {
		return itinerary.Selection{}, nil, err
	}
	s.metrics.IncSelectionAction(action)
	return sel, v, nil
}

// Validate runs the submission rules without side effects.
func (s *Service) Validate(ctx context.Context, id string) (validation.Errors, error) {
	var errs validation.Errors
	err := s.with(ctx, id, func(session *Session) error {
		errs = validation.Validate(session.Draft, session.Itinerary.List())
		return nil
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return errs, nil
}

// Submit validates, serializes and sends the draft. A session already being
// submitted is rejected with a conflict. On failure the session is left as it
// was so the user can retry; on success it is deleted.
func (s *Service) Submit(ctx context.Context, id, token string) (*SubmitResult, error) {
	var payload submission.Payload
	var invalid validation.Errors
	err := s.with(ctx, id, func(session *Session) error {
		if session.submitting {
			return dErrors.New(dErrors.CodeConflict, "draft is already being submitted")
		}
		locations := session.Itinerary.List()
		if errs := validation.Validate(session.Draft, locations); !errs.Empty() {
			invalid = errs
			return nil
		}
		payload = submission.Serialize(session.Draft, locations, session.Tags, session.Images)
		session.submitting = true
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.metrics.IncSubmission("conflict")
		}
		return nil, s.translate(err)
	}
	if invalid != nil {
		s.metrics.IncSubmission("invalid")
		return &SubmitResult{Errors: invalid}, nil
	}

	start := time.Now()
	resp, sendErr := s.submitter.Create(ctx, token, payload)
	s.metrics.ObserveSubmit(start)

	// release the guard whatever happened; the session may have been swept
	// or deleted in the meantime
	_ = s.store.With(ctx, id, func(session *Session) error {
		session.submitting = false
		if sendErr == nil {
			session.UpdatedAt = s.now()
		}
		return nil
	})

	if sendErr != nil {
		s.metrics.IncSubmission("failed")
		s.logger.ErrorContext(ctx, "draft submission failed",
			"session_id", id,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", sendErr,
		)
		return nil, submissionError(sendErr)
	}

	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to drop submitted draft", "session_id", id, "error", err)
	}
	s.metrics.SetDraftSessions(s.store.Len())
	s.metrics.IncSubmission("success")
	s.logger.InfoContext(ctx, "draft submitted",
		"session_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if s.onSubmitted != nil {
		s.onSubmitted(ctx)
	}
	return &SubmitResult{Response: resp}, nil
}

// SweepIdle drops sessions untouched for longer than maxIdle. Drafts are
// never persisted, so an abandoned session is simply discarded.
func (s *Service) SweepIdle(ctx context.Context, maxIdle time.Duration) int {
	n := s.store.Sweep(s.now().Add(-maxIdle))
	if n > 0 {
		s.metrics.SetDraftSessions(s.store.Len())
		s.logger.InfoContext(ctx, "swept idle draft sessions", "count", n)
	}
	return n
}

// RunSweeper calls SweepIdle every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepIdle(ctx, maxIdle)
		}
	}
}

// mutate applies fn under the session lock, rejecting edits while a
// submission is in flight, and stamps UpdatedAt on success.
func (s *Service) mutate(ctx context.Context, id string, fn func(*Session) error) error {
	err := s.with(ctx, id, func(session *Session) error {
		if session.submitting {
			return dErrors.New(dErrors.CodeConflict, "draft is being submitted")
		}
		if err := fn(session); err != nil {
			return err
		}
		session.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return s.translate(err)
	}
	return nil
}

// with runs fn on the session when the caller may see it. Another subject's
// draft reads as missing so its existence is not disclosed.
func (s *Service) with(ctx context.Context, id string, fn func(*Session) error) error {
	return s.store.With(ctx, id, func(session *Session) error {
		if session.Owner != "" && session.Owner != requestcontext.Subject(ctx) {
			return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
		}
		return fn(session)
	})
}

func (s *Service) translate(err error) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, ErrSessionNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "draft not found")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "location not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeConflict, "no coordinate selection is open for this location")
	case errors.Is(err, itinerary.ErrCoordinateRange):
		return dErrors.Wrap(err, dErrors.CodeValidation, "lat must be within [-90, 90] and lng within [-180, 180]")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "draft already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "internal error")
	}
}

// submissionError keeps the backing store's user-facing message. Every
// transport failure surfaces as unavailable so clients see one failure shape.
func submissionError(err error) error {
	var te *transport.Error
	if errors.As(err, &te) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, te.Message)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, transport.MessageSubmissionFailed)
}
