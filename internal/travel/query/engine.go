// Package query runs the filter, sort and paginate pipeline over a record
// snapshot. Pure domain logic - no I/O.
package query

import (
	"slices"
	"strings"

	"tabilog/internal/travel/models"
	dErrors "tabilog/pkg/domain-errors"
)

// Run filters, sorts and pages records. The input slice is never mutated.
func Run(records []models.TravelRecordSummary, params models.SearchFilterParams) (*models.PagedResult, error) {
	page := params.PageOrDefault()
	limit := params.LimitOrDefault()
	if limit <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must be a positive number")
	}
	if page <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "page must be a positive number")
	}

	filtered := Filter(records, params)
	Sort(filtered, params.SortBy, params.SortOrder)
	return Paginate(filtered, page, limit), nil
}

// Filter applies the keyword, category and threshold stages in that order and
// returns a fresh slice in input order.
func Filter(records []models.TravelRecordSummary, params models.SearchFilterParams) []models.TravelRecordSummary {
	// A blank query is absent; any other query is matched as given.
	keyword := ""
	if strings.TrimSpace(params.Query) != "" {
		keyword = strings.ToLower(params.Query)
	}

	out := make([]models.TravelRecordSummary, 0, len(records))
	for _, r := range records {
		if keyword != "" && !matchesKeyword(r, keyword) {
			continue
		}
		if params.LocationCategory != nil && r.LocationCategory != *params.LocationCategory {
			continue
		}
		if params.MinLikes != nil && r.Likes < *params.MinLikes {
			continue
		}
		if params.MinComments != nil && r.CommentCount < *params.MinComments {
			continue
		}
		out = append(out, r)
	}
	return out
}

// matchesKeyword expects keyword already lower-cased.
func matchesKeyword(r models.TravelRecordSummary, keyword string) bool {
	if strings.Contains(strings.ToLower(r.Title), keyword) ||
		strings.Contains(strings.ToLower(r.Description), keyword) ||
		strings.Contains(strings.ToLower(r.User.Name), keyword) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), keyword) {
			return true
		}
	}
	return false
}

// Sort orders records in place. Equal keys fall back to ascending ID in both
// directions so repeated queries return the same page. SortNone is a no-op.
func Sort(records []models.TravelRecordSummary, key models.SortKey, order models.SortOrder) {
	if key == models.SortNone {
		return
	}
	desc := order == models.SortDesc
	slices.SortStableFunc(records, func(a, b models.TravelRecordSummary) int {
		c := compareBy(key, a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmpInt64(a.ID, b.ID)
	})
}

func compareBy(key models.SortKey, a, b models.TravelRecordSummary) int {
	switch key {
	case models.SortLikes:
		return cmpInt64(int64(a.Likes), int64(b.Likes))
	case models.SortTitle:
		return strings.Compare(a.Title, b.Title)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Paginate slices one page out of records. A page past the end yields an
// empty, non-nil Data with the true totals.
func Paginate(records []models.TravelRecordSummary, page, limit int) *models.PagedResult {
	total := len(records)
	lastPage := 0
	if total > 0 {
		// total+limit-1 overflows for limits near math.MaxInt.
		lastPage = total / limit
		if total%limit != 0 {
			lastPage++
		}
	}

	data := []models.TravelRecordSummary{}
	if page <= lastPage {
		start := (page - 1) * limit
		end := start + min(limit, total-start)
		data = append(data, records[start:end]...)
	}

	return &models.PagedResult{
		Data: data,
		Meta: models.PageMeta{
			CurrentPage: page,
			LastPage:    lastPage,
			PerPage:     limit,
			Total:       total,
		},
	}
}
