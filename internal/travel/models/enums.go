package models

import (
	"strconv"
	"strings"

	dErrors "tabilog/pkg/domain-errors"
)

// LocationCategory classifies a record as domestic or overseas and decides
// whether a prefecture or a country is required.
type LocationCategory int

const (
	LocationCategoryDomestic LocationCategory = 0
	LocationCategoryOverseas LocationCategory = 1
)

func (c LocationCategory) Valid() bool {
	return c == LocationCategoryDomestic || c == LocationCategoryOverseas
}

func (c LocationCategory) String() string {
	switch c {
	case LocationCategoryDomestic:
		return "domestic"
	case LocationCategoryOverseas:
		return "overseas"
	default:
		return "unknown"
	}
}

// Label is the display name used by the constants endpoint.
func (c LocationCategory) Label() string {
	switch c {
	case LocationCategoryDomestic:
		return "日本国内"
	case LocationCategoryOverseas:
		return "海外"
	default:
		return ""
	}
}

// ParseLocationCategory accepts the wire integer or the lower-case name.
func ParseLocationCategory(s string) (LocationCategory, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "0", "domestic":
		return LocationCategoryDomestic, nil
	case "1", "overseas":
		return LocationCategoryOverseas, nil
	}
	return 0, dErrors.New(dErrors.CodeBadRequest, "locationCategory must be 0 (domestic) or 1 (overseas)")
}

// Visibility controls whether a record is listed publicly.
type Visibility int

const (
	VisibilityPrivate Visibility = 0
	VisibilityPublic  Visibility = 1
)

func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityPublic:
		return "public"
	default:
		return "unknown"
	}
}

// SortKey selects the comparator of the sort stage.
type SortKey string

const (
	SortNone  SortKey = ""
	SortLikes SortKey = "likes"
	SortTitle SortKey = "title"
	SortDate  SortKey = "date"
)

// ParseSortKey accepts likes, title, date and the created_at alias of date.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.TrimSpace(s) {
	case "":
		return SortNone, nil
	case "likes":
		return SortLikes, nil
	case "title":
		return SortTitle, nil
	case "date", "created_at":
		return SortDate, nil
	}
	return SortNone, dErrors.New(dErrors.CodeBadRequest, "sortBy must be one of likes, title, date")
}

// SortOrder is the sort direction; the zero value sorts ascending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	}
	return SortAsc, dErrors.New(dErrors.CodeBadRequest, "sortOrder must be asc or desc")
}

// parseIntParam is shared by the query-string parsers of this package.
func parseIntParam(name, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, name+" must be an integer")
	}
	return &n, nil
}
