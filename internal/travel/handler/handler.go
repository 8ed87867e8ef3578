// Package handler exposes record browsing and draft authoring over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tabilog/internal/travel/authoring"
	"tabilog/internal/travel/itinerary"
	"tabilog/internal/travel/mapsurface"
	"tabilog/internal/travel/models"
	"tabilog/internal/travel/validation"
	dErrors "tabilog/pkg/domain-errors"
	"tabilog/pkg/platform/httputil"
	"tabilog/pkg/requestcontext"
)

// RecordService is the retrieval side.
type RecordService interface {
	Search(ctx context.Context, params models.SearchFilterParams) (*models.PagedResult, error)
	Detail(ctx context.Context, id int64) (*models.TravelDetail, error)
	PrefetchDetails(ctx context.Context, ids []int64) ([]models.TravelDetail, error)
}

// DraftService is the authoring side.
type DraftService interface {
	CreateSession(ctx context.Context, owner string) (*authoring.View, error)
	GetSession(ctx context.Context, id string) (*authoring.View, error)
	DeleteSession(ctx context.Context, id string) error
	UpdateDraft(ctx context.Context, id string, patch authoring.DraftPatch) (*authoring.View, error)
	AddTag(ctx context.Context, id, tag string) (*authoring.View, error)
	RemoveTag(ctx context.Context, id, tag string) (*authoring.View, error)
	AddLocation(ctx context.Context, id string) (models.VisitLocationEntry, error)
	UpdateLocation(ctx context.Context, id, locID string, patch itinerary.Patch) (models.VisitLocationEntry, error)
	RemoveLocation(ctx context.Context, id, locID string) error
	OpenSelection(ctx context.Context, id, locID string) (itinerary.Selection, *authoring.View, error)
	ProposeCoordinates(ctx context.Context, id, locID string, lat, lng float64) (itinerary.Selection, *authoring.View, error)
	ResetSelection(ctx context.Context, id, locID string) (itinerary.Selection, *authoring.View, error)
	CancelSelection(ctx context.Context, id, locID string) (itinerary.Selection, *authoring.View, error)
	ConfirmSelection(ctx context.Context, id, locID string) (itinerary.Selection, *authoring.View, error)
	Validate(ctx context.Context, id string) (validation.Errors, error)
	Submit(ctx context.Context, id, token string) (*authoring.SubmitResult, error)
}

type Handler struct {
	records RecordService
	drafts  DraftService
	surface *mapsurface.Provider
	logger  *slog.Logger
}

func New(records RecordService, drafts DraftService, surface *mapsurface.Provider, logger *slog.Logger) *Handler {
	return &Handler{
		records: records,
		drafts:  drafts,
		surface: surface,
		logger:  logger,
	}
}

// Register mounts the travel endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/constants", h.HandleConstants)

	r.Get("/travels", h.HandleSearch)
	r.Get("/travels/details", h.HandleDetails)
	r.Get("/travels/{id}", h.HandleDetail)

	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", h.HandleCreateDraft)
		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", h.HandleGetDraft)
			r.Patch("/", h.HandleUpdateDraft)
			r.Delete("/", h.HandleDeleteDraft)

			r.Post("/tags", h.HandleAddTag)
			r.Delete("/tags/{tag}", h.HandleRemoveTag)

			r.Post("/locations", h.HandleAddLocation)
			r.Patch("/locations/{locID}", h.HandleUpdateLocation)
			r.Delete("/locations/{locID}", h.HandleRemoveLocation)

			r.Post("/locations/{locID}/selection", h.HandleOpenSelection)
			r.Put("/locations/{locID}/selection", h.HandleProposeCoordinates)
			r.Post("/locations/{locID}/selection/reset", h.HandleResetSelection)
			r.Post("/locations/{locID}/selection/confirm", h.HandleConfirmSelection)
			r.Delete("/locations/{locID}/selection", h.HandleCancelSelection)

			r.Post("/validate", h.HandleValidate)
			r.Post("/submit", h.HandleSubmit)
		})
	})
}

func (h *Handler) HandleConstants(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, models.AllConstants())
}

// HandleSearch handles GET /travels.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	params, err := models.ParseSearchParams(r.URL.Query())
	if err != nil {
		h.logger.WarnContext(ctx, "invalid search parameters",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.records.Search(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "travel search failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "travel search served",
		"request_id", requestID,
		"total", res.Meta.Total,
		"page", res.Meta.CurrentPage,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleDetail handles GET /travels/{id}.
func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "id must be a positive integer"))
		return
	}

	detail, err := h.records.Detail(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "travel detail failed",
			"request_id", requestcontext.RequestID(ctx),
			"id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DataResponse{Data: detail})
}

// HandleDetails handles GET /travels/details?ids=1,2,3.
func (h *Handler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	details, err := h.records.PrefetchDetails(ctx, ids)
	if err != nil {
		h.logger.WarnContext(ctx, "travel details failed",
			"request_id", requestcontext.RequestID(ctx),
			"count", len(ids),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DataResponse{Data: details})
}

func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "ids is required")
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, dErrors.New(dErrors.CodeBadRequest, "ids must be positive integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// HandleCreateDraft handles POST /drafts.
func (h *Handler) HandleCreateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, err := h.drafts.CreateSession(ctx, requestcontext.Subject(ctx))
	if err != nil {
		h.writeDraftError(ctx, w, "create draft", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDraftResponse(v))
}

func (h *Handler) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, err := h.drafts.GetSession(ctx, chi.URLParam(r, "draftID"))
	if err != nil {
		h.writeDraftError(ctx, w, "get draft", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDraftResponse(v))
}

func (h *Handler) HandleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.drafts.DeleteSession(ctx, chi.URLParam(r, "draftID")); err != nil {
		h.writeDraftError(ctx, w, "delete draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateDraft handles PATCH /drafts/{draftID}.
func (h *Handler) HandleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateDraftRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	v, err := h.drafts.UpdateDraft(ctx, chi.URLParam(r, "draftID"), req.Patch())
	if err != nil {
		h.writeDraftError(ctx, w, "update draft", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDraftResponse(v))
}

func (h *Handler) HandleAddTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[TagRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	v, err := h.drafts.AddTag(ctx, chi.URLParam(r, "draftID"), req.Tag)
	if err != nil {
		h.writeDraftError(ctx, w, "add tag", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDraftResponse(v))
}

func (h *Handler) HandleRemoveTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tag, err := url.PathUnescape(chi.URLParam(r, "tag"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tag"))
		return
	}
	v, err := h.drafts.RemoveTag(ctx, chi.URLParam(r, "draftID"), tag)
	if err != nil {
		h.writeDraftError(ctx, w, "remove tag", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDraftResponse(v))
}

func (h *Handler) HandleAddLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, err := h.drafts.AddLocation(ctx, chi.URLParam(r, "draftID"))
	if err != nil {
		h.writeDraftError(ctx, w, "add location", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toLocationResponse(e))
}

func (h *Handler) HandleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateLocationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	e, err := h.drafts.UpdateLocation(ctx, chi.URLParam(r, "draftID"), chi.URLParam(r, "locID"), req.Patch())
	if err != nil {
		h.writeDraftError(ctx, w, "update location", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLocationResponse(e))
}

func (h *Handler) HandleRemoveLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.drafts.RemoveLocation(ctx, chi.URLParam(r, "draftID"), chi.URLParam(r, "locID")); err != nil {
		h.writeDraftError(ctx, w, "remove location", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleOpenSelection(w http.ResponseWriter, r *http.Request) {
	locID := chi.URLParam(r, "locID")
	sel, v, err := h.drafts.OpenSelection(r.Context(), chi.URLParam(r, "draftID"), locID)
	h.writeSelection(w, r, "open selection", locID, sel, v, err)
}

// HandleProposeCoordinates handles PUT .../selection with either a
// coordinate pair or a mock spot index.
func (h *Handler) HandleProposeCoordinates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ProposeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	var lat, lng float64
	if req.Spot != nil {
		spot, err := h.surface.Spot(*req.Spot)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		lat, lng = spot.Lat, spot.Lng
	} else {
		lat, lng = *req.Lat, *req.Lng
	}

	locID := chi.URLParam(r, "locID")
	sel, v, err := h.drafts.ProposeCoordinates(ctx, chi.URLParam(r, "draftID"), locID, lat, lng)
	h.writeSelection(w, r, "propose coordinates", locID, sel, v, err)
}

func (h *Handler) HandleResetSelection(w http.ResponseWriter, r *http.Request) {
	locID := chi.URLParam(r, "locID")
	sel, v, err := h.drafts.ResetSelection(r.Context(), chi.URLParam(r, "draftID"), locID)
	h.writeSelection(w, r, "reset selection", locID, sel, v, err)
}

func (h *Handler) HandleConfirmSelection(w http.ResponseWriter, r *http.Request) {
	locID := chi.URLParam(r, "locID")
	sel, v, err := h.drafts.ConfirmSelection(r.Context(), chi.URLParam(r, "draftID"), locID)
	h.writeSelection(w, r, "confirm selection", locID, sel, v, err)
}

func (h *Handler) HandleCancelSelection(w http.ResponseWriter, r *http.Request) {
	locID := chi.URLParam(r, "locID")
	sel, v, err := h.drafts.CancelSelection(r.Context(), chi.URLParam(r, "draftID"), locID)
	h.writeSelection(w, r, "cancel selection", locID, sel, v, err)
}

func (h *Handler) writeSelection(w http.ResponseWriter, r *http.Request, op, locID string, sel itinerary.Selection, v *authoring.View, err error) {
	if err != nil {
		h.writeDraftError(r.Context(), w, op, err)
		return
	}
	resp := SelectionResponse{
		Selection: sel,
		Location:  findLocation(v, locID),
	}
	if sel.Open {
		s := h.surface.Describe(v.Draft, sel)
		resp.Surface = &s
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleValidate handles POST /drafts/{draftID}/validate. It always answers
// 200; an empty errors object means the draft can be submitted.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	errs, err := h.drafts.Validate(ctx, chi.URLParam(r, "draftID"))
	if err != nil {
		h.writeDraftError(ctx, w, "validate draft", err)
		return
	}
	if errs == nil {
		errs = validation.Errors{}
	}
	httputil.WriteJSON(w, http.StatusOK, ValidationResponse{Errors: errs})
}

// HandleSubmit handles POST /drafts/{draftID}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	draftID := chi.URLParam(r, "draftID")

	res, err := h.drafts.Submit(ctx, draftID, requestcontext.BearerToken(ctx))
	if err != nil {
		h.writeDraftError(ctx, w, "submit draft", err)
		return
	}
	if !res.Errors.Empty() {
		h.logger.InfoContext(ctx, "draft rejected by validation",
			"request_id", requestID,
			"draft_id", draftID,
			"error_count", len(res.Errors),
		)
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: res.Errors})
		return
	}

	body := res.Response
	if len(body) == 0 {
		body = json.RawMessage(`{}`)
	}
	h.logger.InfoContext(ctx, "draft submitted",
		"request_id", requestID,
		"draft_id", draftID,
	)
	httputil.WriteJSON(w, http.StatusCreated, body)
}

func (h *Handler) writeDraftError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	level := slog.LevelWarn
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
