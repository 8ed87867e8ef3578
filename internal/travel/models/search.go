package models

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// SearchFilterParams narrows, orders and pages a record collection. Nil
// pointers mean "no constraint"; the zero SortKey keeps input order.
type SearchFilterParams struct {
	Query            string
	LocationCategory *LocationCategory
	MinLikes         *int
	MinComments      *int
	SortBy           SortKey
	SortOrder        SortOrder
	Page             *int
	Limit            *int
}

// ParseSearchParams reads the list query string. Malformed numbers and
// unknown enum values are bad requests; range checks belong to the engine.
func ParseSearchParams(values url.Values) (SearchFilterParams, error) {
	var p SearchFilterParams
	p.Query = values.Get("query")

	if raw := strings.TrimSpace(values.Get("locationCategory")); raw != "" {
		c, err := ParseLocationCategory(raw)
		if err != nil {
			return p, err
		}
		p.LocationCategory = &c
	}

	var err error
	if p.MinLikes, err = parseIntParam("minLikes", values.Get("minLikes")); err != nil {
		return p, err
	}
	if p.MinComments, err = parseIntParam("minComments", values.Get("minComments")); err != nil {
		return p, err
	}
	if p.Page, err = parseIntParam("page", values.Get("page")); err != nil {
		return p, err
	}
	if p.Limit, err = parseIntParam("limit", values.Get("limit")); err != nil {
		return p, err
	}
	if p.SortBy, err = ParseSortKey(values.Get("sortBy")); err != nil {
		return p, err
	}
	if p.SortOrder, err = ParseSortOrder(values.Get("sortOrder")); err != nil {
		return p, err
	}
	return p, nil
}

// Values encodes the params for the record-source collaborator, leaving out
// anything unset.
func (p SearchFilterParams) Values() url.Values {
	v := url.Values{}
	if q := strings.TrimSpace(p.Query); q != "" {
		v.Set("query", q)
	}
	if p.LocationCategory != nil {
		v.Set("locationCategory", strconv.Itoa(int(*p.LocationCategory)))
	}
	if p.MinLikes != nil {
		v.Set("minLikes", strconv.Itoa(*p.MinLikes))
	}
	if p.MinComments != nil {
		v.Set("minComments", strconv.Itoa(*p.MinComments))
	}
	if p.SortBy != SortNone {
		v.Set("sortBy", string(p.SortBy))
		if p.SortOrder != "" {
			v.Set("sortOrder", string(p.SortOrder))
		}
	}
	if p.Page != nil {
		v.Set("page", strconv.Itoa(*p.Page))
	}
	if p.Limit != nil {
		v.Set("limit", strconv.Itoa(*p.Limit))
	}
	return v
}

// PageOrDefault and LimitOrDefault resolve the paging defaults.
func (p SearchFilterParams) PageOrDefault() int {
	if p.Page == nil {
		return DefaultPage
	}
	return *p.Page
}

func (p SearchFilterParams) LimitOrDefault() int {
	if p.Limit == nil {
		return DefaultLimit
	}
	return *p.Limit
}

// PageMeta carries the counting metadata of a page.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type PagedResult struct {
	Data []TravelRecordSummary `json:"data"`
	Meta PageMeta              `json:"meta"`
}
