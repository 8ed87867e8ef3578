package transport

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"tabilog/internal/travel/models"
)

// Wire shapes of the backing store. Missing fields decode to zero values and
// are normalized below so partial responses never fail a page.

type listResponse struct {
	Data []recordWire `json:"data"`
	Meta *metaWire    `json:"meta"`
}

type metaWire struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type userWire struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
}

type recordWire struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Location         string   `json:"location"`
	Date             string   `json:"date"`
	Duration         string   `json:"duration"`
	Images           []string `json:"images"`
	Description      string   `json:"description"`
	User             userWire `json:"user"`
	Likes            int      `json:"likes"`
	CommentCount     int      `json:"commentCount"`
	Tags             []string `json:"tags"`
	LocationCategory int      `json:"locationCategory"`
	Visibility       int      `json:"visibility"`
	CreatedAt        string   `json:"createdAt"`
	UpdatedAt        string   `json:"updatedAt"`
}

type detailResponse struct {
	Data *detailWire `json:"data"`
}

type detailWire struct {
	recordWire
	Locations []models.LocationDetail `json:"locations"`
	Itinerary []models.ItineraryDay   `json:"itinerary"`
	Comments  []models.Comment        `json:"comments"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ListPage is one page of the backing store's list endpoint.
type ListPage struct {
	Records []models.TravelRecordSummary
	Meta    models.PageMeta
}

func parseListResponse(status int, body []byte) (*ListPage, error) {
	if err := statusError(status, body, MessageRetrievalFailed); err != nil {
		return nil, err
	}
	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewError(CategoryBadData, status, MessageRetrievalFailed, err)
	}

	page := &ListPage{Records: make([]models.TravelRecordSummary, 0, len(resp.Data))}
	for _, w := range resp.Data {
		page.Records = append(page.Records, w.toSummary())
	}
	if resp.Meta != nil {
		page.Meta = models.PageMeta(*resp.Meta)
	} else {
		page.Meta = models.PageMeta{CurrentPage: 1, LastPage: 1, PerPage: len(page.Records), Total: len(page.Records)}
	}
	return page, nil
}

func parseDetailResponse(status int, body []byte) (*models.TravelDetail, error) {
	if status == http.StatusNotFound {
		return nil, NewError(CategoryNotFound, status, MessageNotFound, nil)
	}
	if err := statusError(status, body, MessageRetrievalFailed); err != nil {
		return nil, err
	}
	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewError(CategoryBadData, status, MessageRetrievalFailed, err)
	}
	if resp.Data == nil {
		return nil, NewError(CategoryBadData, status, MessageRetrievalFailed, nil)
	}
	return resp.Data.toDetail(), nil
}

// parseCreateResponse returns the backing store's body as-is on success.
func parseCreateResponse(status int, body []byte) (json.RawMessage, error) {
	if err := statusError(status, body, MessageSubmissionFailed); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 || !json.Valid(body) {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(body), nil
}

// statusError turns a non-2xx status into an *Error, preferring the
// response's own message over fallback.
func statusError(status int, body []byte, fallback string) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := fallback
	var m messageResponse
	if json.Unmarshal(body, &m) == nil && strings.TrimSpace(m.Message) != "" {
		msg = m.Message
	}
	return NewError(categoryForStatus(status), status, msg, nil)
}

func (w recordWire) toSummary() models.TravelRecordSummary {
	return models.TravelRecordSummary{
		ID:               w.ID,
		Title:            w.Title,
		Location:         w.Location,
		Date:             w.Date,
		Duration:         w.Duration,
		Images:           nonNil(w.Images),
		Description:      w.Description,
		User:             models.UserRef{ID: w.User.ID, Name: w.User.Name, Avatar: w.User.Avatar},
		Likes:            w.Likes,
		CommentCount:     w.CommentCount,
		Tags:             nonNil(w.Tags),
		LocationCategory: models.LocationCategory(w.LocationCategory),
		Visibility:       models.Visibility(w.Visibility),
		CreatedAt:        parseTimestamp(w.CreatedAt),
		UpdatedAt:        parseTimestamp(w.UpdatedAt),
	}
}

func (w detailWire) toDetail() *models.TravelDetail {
	d := &models.TravelDetail{
		ID:           w.ID,
		Title:        w.Title,
		Location:     w.Location,
		Date:         w.Date,
		Duration:     w.Duration,
		Images:       nonNil(w.Images),
		Description:  w.Description,
		User:         models.DetailUser{Name: w.User.Name, Avatar: w.User.Avatar, Bio: w.User.Bio},
		Likes:        w.Likes,
		CommentCount: w.CommentCount,
		Tags:         nonNil(w.Tags),
		Locations:    w.Locations,
		Itinerary:    w.Itinerary,
		Comments:     w.Comments,
	}
	if d.Locations == nil {
		d.Locations = []models.LocationDetail{}
	}
	if d.Itinerary == nil {
		d.Itinerary = []models.ItineraryDay{}
	}
	for i := range d.Itinerary {
		if d.Itinerary[i].Activities == nil {
			d.Itinerary[i].Activities = []models.Activity{}
		}
	}
	if d.Comments == nil {
		d.Comments = []models.Comment{}
	}
	return d
}

// parseTimestamp accepts RFC 3339 or a bare date; anything else is zero.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t
	}
	return time.Time{}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
