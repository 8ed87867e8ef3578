// Package validation gates submission of a draft record.
// Pure domain logic - no I/O, safe to call on every keystroke.
package validation

import (
	"fmt"
	"strings"

	"tabilog/internal/travel/models"
)

// Field keys of the draft-level rules. Per-location keys are built with
// LocationNameKey, LocationVisitDateKey and LocationOrderKey.
const (
	KeyTitle      = "title"
	KeyStartDate  = "startDate"
	KeyEndDate    = "endDate"
	KeyVisibility = "visibility"
	KeyPrefecture = "prefecture"
	KeyCountry    = "country"
	KeyLocations  = "locations"
)

// Errors maps a field key to a user-facing message. It is data, not a Go
// error, so callers can render every message inline.
type Errors map[string]string

// Empty reports whether the draft is submittable.
func (e Errors) Empty() bool { return len(e) == 0 }

func (e Errors) Has(key string) bool {
	_, ok := e[key]
	return ok
}

func LocationNameKey(i int) string      { return fmt.Sprintf("location_name_%d", i) }
func LocationVisitDateKey(i int) string { return fmt.Sprintf("location_visitDate_%d", i) }
func LocationOrderKey(i int) string     { return fmt.Sprintf("location_order_%d", i) }

// Validate evaluates every rule; nothing short-circuits. Location keys are
// indexed by list position, messages count from 1.
func Validate(draft models.Draft, locations []models.VisitLocationEntry) Errors {
	errs := Errors{}

	if strings.TrimSpace(draft.Title) == "" {
		errs[KeyTitle] = "タイトルは必須です"
	}
	if draft.StartDate == nil {
		errs[KeyStartDate] = "開始日は必須です"
	}
	if draft.EndDate == nil {
		errs[KeyEndDate] = "終了日は必須です"
	}
	if draft.Visibility == nil || !draft.Visibility.Valid() {
		errs[KeyVisibility] = "公開設定は必須です"
	}

	switch draft.LocationCategory {
	case models.LocationCategoryDomestic:
		if draft.Prefecture == nil || !draft.Prefecture.Valid() {
			errs[KeyPrefecture] = "都道府県は必須です"
		}
	case models.LocationCategoryOverseas:
		if draft.Country == nil || !draft.Country.Valid() {
			errs[KeyCountry] = "国名は必須です"
		}
	}

	if len(locations) == 0 {
		errs[KeyLocations] = "訪問地を1件以上追加してください"
	}
	for i, loc := range locations {
		n := i + 1
		if strings.TrimSpace(loc.Name) == "" {
			errs[LocationNameKey(i)] = fmt.Sprintf("訪問地%dの場所名は必須です", n)
		}
		if loc.VisitDate == nil {
			errs[LocationVisitDateKey(i)] = fmt.Sprintf("訪問地%dの訪問日は必須です", n)
		}
		if loc.Order == nil || *loc.Order <= 0 {
			errs[LocationOrderKey(i)] = fmt.Sprintf("訪問地%dの順番は必須です", n)
		}
	}
	return errs
}
