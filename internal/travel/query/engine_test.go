package query

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tabilog/internal/travel/models"
	dErrors "tabilog/pkg/domain-errors"
)

type EngineSuite struct {
	suite.Suite
	records []models.TravelRecordSummary
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func record(id int64, title string, likes, comments int, cat models.LocationCategory, created string, tags ...string) models.TravelRecordSummary {
	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		panic(err)
	}
	return models.TravelRecordSummary{
		ID:               id,
		Title:            title,
		Description:      title + "の記録",
		User:             models.UserRef{ID: id, Name: "user" + title},
		Likes:            likes,
		CommentCount:     comments,
		Tags:             tags,
		LocationCategory: cat,
		Visibility:       models.VisibilityPublic,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
}

func (s *EngineSuite) SetupTest() {
	s.records = []models.TravelRecordSummary{
		record(1, "古都を巡る旅", 124, 18, models.LocationCategoryDomestic, "2023-10-25T10:00:00Z", "京都", "寺院"),
		record(2, "Bali holiday", 98, 12, models.LocationCategoryOverseas, "2023-08-20T14:30:00Z", "beach"),
		record(3, "Paris art", 156, 24, models.LocationCategoryOverseas, "2023-06-25T09:15:00Z", "museum"),
		record(4, "New York walk", 87, 9, models.LocationCategoryOverseas, "2023-05-05T16:45:00Z", "city"),
	}
}

func intPtr(v int) *int { return &v }

func ids(records []models.TravelRecordSummary) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func likes(records []models.TravelRecordSummary) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Likes
	}
	return out
}

func (s *EngineSuite) TestNoParams() {
	res, err := Run(s.records, models.SearchFilterParams{})
	s.Require().NoError(err)
	s.Equal([]int64{1, 2, 3, 4}, ids(res.Data), "input order is preserved without sortBy")
	s.Equal(models.PageMeta{CurrentPage: 1, LastPage: 1, PerPage: 20, Total: 4}, res.Meta)
}

func (s *EngineSuite) TestKeyword() {
	s.Run("matches tag even when title and description do not mention it", func() {
		res, err := Run(s.records, models.SearchFilterParams{Query: "京都"})
		s.Require().NoError(err)
		s.Equal([]int64{1}, ids(res.Data))
	})

	s.Run("case-insensitive over title", func() {
		res, err := Run(s.records, models.SearchFilterParams{Query: "PARIS"})
		s.Require().NoError(err)
		s.Equal([]int64{3}, ids(res.Data))
	})

	s.Run("matches owner display name", func() {
		res, err := Run(s.records, models.SearchFilterParams{Query: "userbali"})
		s.Require().NoError(err)
		s.Equal([]int64{2}, ids(res.Data))
	})

	s.Run("whitespace-only query is absent", func() {
		res, err := Run(s.records, models.SearchFilterParams{Query: "   "})
		s.Require().NoError(err)
		s.Equal(4, res.Meta.Total)
	})

	s.Run("surrounding whitespace is part of the keyword", func() {
		res, err := Run(s.records, models.SearchFilterParams{Query: "york "})
		s.Require().NoError(err)
		s.Equal([]int64{4}, ids(res.Data))

		res, err = Run(s.records, models.SearchFilterParams{Query: " city "})
		s.Require().NoError(err)
		s.Empty(res.Data)
		s.Equal(0, res.Meta.Total)
	})
}

func (s *EngineSuite) TestCategoryAndThresholds() {
	overseas := models.LocationCategoryOverseas
	res, err := Run(s.records, models.SearchFilterParams{
		LocationCategory: &overseas,
		MinLikes:         intPtr(90),
		MinComments:      intPtr(12),
	})
	s.Require().NoError(err)
	s.Equal([]int64{2, 3}, ids(res.Data))
	s.Equal(2, res.Meta.Total)

	for _, r := range res.Data {
		s.Equal(overseas, r.LocationCategory)
		s.GreaterOrEqual(r.Likes, 90)
		s.GreaterOrEqual(r.CommentCount, 12)
	}
}

func (s *EngineSuite) TestSort() {
	s.Run("likes descending", func() {
		res, err := Run(s.records, models.SearchFilterParams{SortBy: models.SortLikes, SortOrder: models.SortDesc})
		s.Require().NoError(err)
		s.Equal([]int{156, 124, 98, 87}, likes(res.Data))
	})

	s.Run("likes ascending by default direction", func() {
		res, err := Run(s.records, models.SearchFilterParams{SortBy: models.SortLikes})
		s.Require().NoError(err)
		s.Equal([]int{87, 98, 124, 156}, likes(res.Data))
	})

	s.Run("title is byte-wise lexicographic", func() {
		res, err := Run(s.records, models.SearchFilterParams{SortBy: models.SortTitle})
		s.Require().NoError(err)
		s.Equal([]int64{2, 4, 3, 1}, ids(res.Data))
	})

	s.Run("date sorts by creation time", func() {
		res, err := Run(s.records, models.SearchFilterParams{SortBy: models.SortDate, SortOrder: models.SortDesc})
		s.Require().NoError(err)
		s.Equal([]int64{1, 2, 3, 4}, ids(res.Data))
	})

	s.Run("does not mutate the input", func() {
		before := ids(s.records)
		_, err := Run(s.records, models.SearchFilterParams{SortBy: models.SortLikes})
		s.Require().NoError(err)
		s.Equal(before, ids(s.records))
	})
}

func (s *EngineSuite) TestSortTieBreak() {
	tied := []models.TravelRecordSummary{
		record(5, "e", 10, 0, models.LocationCategoryDomestic, "2023-01-01T00:00:00Z"),
		record(3, "c", 10, 0, models.LocationCategoryDomestic, "2023-01-01T00:00:00Z"),
		record(9, "i", 20, 0, models.LocationCategoryDomestic, "2023-01-01T00:00:00Z"),
		record(1, "a", 10, 0, models.LocationCategoryDomestic, "2023-01-01T00:00:00Z"),
	}

	asc, err := Run(tied, models.SearchFilterParams{SortBy: models.SortLikes, SortOrder: models.SortAsc})
	s.Require().NoError(err)
	s.Equal([]int64{1, 3, 5, 9}, ids(asc.Data))

	desc, err := Run(tied, models.SearchFilterParams{SortBy: models.SortLikes, SortOrder: models.SortDesc})
	s.Require().NoError(err)
	s.Equal([]int64{9, 1, 3, 5}, ids(desc.Data))

	byDate, err := Run(tied, models.SearchFilterParams{SortBy: models.SortDate, SortOrder: models.SortDesc})
	s.Require().NoError(err)
	s.Equal([]int64{1, 3, 5, 9}, ids(byDate.Data))
}

func (s *EngineSuite) TestPagination() {
	s.Run("slices by page and limit", func() {
		res, err := Run(s.records, models.SearchFilterParams{Page: intPtr(2), Limit: intPtr(3)})
		s.Require().NoError(err)
		s.Equal([]int64{4}, ids(res.Data))
		s.Equal(models.PageMeta{CurrentPage: 2, LastPage: 2, PerPage: 3, Total: 4}, res.Meta)
	})

	s.Run("page past the end is empty with true totals", func() {
		res, err := Run(s.records, models.SearchFilterParams{Page: intPtr(7), Limit: intPtr(3)})
		s.Require().NoError(err)
		s.NotNil(res.Data)
		s.Empty(res.Data)
		s.Equal(4, res.Meta.Total)
		s.Equal(2, res.Meta.LastPage)
		s.Equal(7, res.Meta.CurrentPage)
	})

	s.Run("no matches gives last page zero", func() {
		res, err := Run(s.records, models.SearchFilterParams{Query: "nowhere"})
		s.Require().NoError(err)
		s.Equal(0, res.Meta.Total)
		s.Equal(0, res.Meta.LastPage)
		s.NotNil(res.Data)
	})

	s.Run("rejects non-positive limit and page", func() {
		_, err := Run(s.records, models.SearchFilterParams{Limit: intPtr(0)})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = Run(s.records, models.SearchFilterParams{Page: intPtr(-1)})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// Exhaustive sweep over small parameter grids checking the paging invariants.
func TestRunInvariants(t *testing.T) {
	var records []models.TravelRecordSummary
	for i := 1; i <= 23; i++ {
		cat := models.LocationCategory(i % 2)
		records = append(records, record(int64(i), "t", i*7%50, i%11, cat, "2023-01-01T00:00:00Z"))
	}
	domestic := models.LocationCategoryDomestic

	for _, limit := range []int{1, 2, 5, 20, 30, math.MaxInt} {
		for _, page := range []int{1, 2, 3, 10} {
			for _, minLikes := range []*int{nil, intPtr(20)} {
				for _, cat := range []*models.LocationCategory{nil, &domestic} {
					params := models.SearchFilterParams{
						LocationCategory: cat,
						MinLikes:         minLikes,
						SortBy:           models.SortLikes,
						Page:             intPtr(page),
						Limit:            intPtr(limit),
					}
					res, err := Run(records, params)
					require.NoError(t, err)

					expectedTotal := len(Filter(records, params))
					assert.LessOrEqual(t, len(res.Data), limit)
					assert.Equal(t, expectedTotal, res.Meta.Total)
					if expectedTotal == 0 {
						assert.Equal(t, 0, res.Meta.LastPage)
					} else {
						want := expectedTotal / limit
						if expectedTotal%limit != 0 {
							want++
						}
						assert.Equal(t, want, res.Meta.LastPage)
						assert.GreaterOrEqual(t, res.Meta.LastPage, 1)
						if page <= res.Meta.LastPage {
							assert.NotEmpty(t, res.Data)
						}
					}
					if page > res.Meta.LastPage {
						assert.Empty(t, res.Data)
					}
					for _, r := range res.Data {
						if cat != nil {
							assert.Equal(t, *cat, r.LocationCategory)
						}
						if minLikes != nil {
							assert.GreaterOrEqual(t, r.Likes, *minLikes)
						}
					}
				}
			}
		}
	}
}

func TestRunHugeLimitReturnsEverythingOnFirstPage(t *testing.T) {
	records := []models.TravelRecordSummary{{ID: 1}, {ID: 2}, {ID: 3}}

	res, err := Run(records, models.SearchFilterParams{Limit: intPtr(math.MaxInt)})
	require.NoError(t, err)
	assert.Equal(t, models.PageMeta{CurrentPage: 1, LastPage: 1, PerPage: math.MaxInt, Total: 3}, res.Meta)
	assert.Equal(t, []int64{1, 2, 3}, ids(res.Data))
}
