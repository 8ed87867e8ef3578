package submission

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabilog/internal/travel/models"
)

func ptr[T any](v T) *T { return &v }

func TestSerializeKeepsTagsAsGiven(t *testing.T) {
	tags := []string{" 京都", "京都", "紅葉"}
	p := Serialize(models.Draft{}, nil, tags, nil)
	assert.Equal(t, []string{" 京都", "京都", "紅葉"}, p.Tags)

	tags[0] = "changed"
	assert.Equal(t, " 京都", p.Tags[0], "payload does not alias the caller's slice")
}

func TestSerialize(t *testing.T) {
	start := time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 10, 20, 0, 0, 0, 0, time.UTC)
	visit := time.Date(2023, 10, 16, 0, 0, 0, 0, time.UTC)

	draft := models.Draft{
		Title:            "京都の古都を巡る旅",
		StartDate:        &start,
		EndDate:          &end,
		Visibility:       ptr(models.VisibilityPublic),
		LocationCategory: models.LocationCategoryDomestic,
		Prefecture:       ptr(models.PrefectureID(26)),
	}
	locations := []models.VisitLocationEntry{
		{ID: "a", Order: ptr(1), Name: "金閣寺", Coordinates: &models.Coordinates{Lat: 35.0394, Lng: 135.7292}, VisitDate: &visit, VisitTime: ptr("10:00")},
		{ID: "b", Order: ptr(4), Name: "清水寺", VisitTime: ptr("")},
		{ID: "c", Name: "伏見稲荷大社"},
	}

	p := Serialize(draft, locations, []string{"京都", "紅葉"}, []string{"kinkaku.jpg"})

	assert.Equal(t, "京都の古都を巡る旅", p.Title)
	assert.Equal(t, "", p.Description)
	assert.Equal(t, "2023-10-15", *p.StartDate)
	assert.Equal(t, "2023-10-20", *p.EndDate)
	assert.Equal(t, models.PrefectureID(26), *p.Prefecture)
	assert.Nil(t, p.Country)
	assert.Equal(t, []string{"京都", "紅葉"}, p.Tags)
	assert.Equal(t, []string{"kinkaku.jpg"}, p.Images)

	require.Len(t, p.Locations, 3)
	assert.Equal(t, 1, p.Locations[0].Order)
	assert.Equal(t, 35.0394, *p.Locations[0].Lat)
	assert.Equal(t, "2023-10-16", *p.Locations[0].VisitDate)
	assert.Equal(t, "10:00", *p.Locations[0].VisitTime)

	assert.Equal(t, 4, p.Locations[1].Order, "explicit order wins over position")
	assert.Nil(t, p.Locations[1].VisitTime, "empty visit time becomes null")
	assert.Nil(t, p.Locations[1].Lat)

	assert.Equal(t, 3, p.Locations[2].Order, "missing order falls back to list position")
}

func TestSerializeKeepsZeroCoordinates(t *testing.T) {
	p := Serialize(models.Draft{}, []models.VisitLocationEntry{
		{Order: ptr(1), Coordinates: &models.Coordinates{Lat: 0, Lng: 0}},
	}, nil, nil)
	require.NotNil(t, p.Locations[0].Lat)
	assert.Equal(t, 0.0, *p.Locations[0].Lat)
}

func TestPayloadFieldsAreNeverOmitted(t *testing.T) {
	p := Serialize(models.Draft{}, []models.VisitLocationEntry{{ID: "x"}}, nil, nil)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var echoed map[string]any
	require.NoError(t, json.Unmarshal(raw, &echoed))

	assert.Equal(t, []string{
		"country", "description", "endDate", "images", "locationCategory", "locations",
		"prefecture", "startDate", "tags", "title", "visibility",
	}, keys(echoed))
	assert.Nil(t, echoed["startDate"])
	assert.Nil(t, echoed["endDate"])
	assert.Nil(t, echoed["prefecture"])
	assert.Nil(t, echoed["country"])
	assert.Nil(t, echoed["visibility"])
	assert.Equal(t, []any{}, echoed["tags"])
	assert.Equal(t, []any{}, echoed["images"])

	locs, ok := echoed["locations"].([]any)
	require.True(t, ok)
	loc, ok := locs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{
		"description", "lat", "lng", "name", "order", "visitDate", "visitTime",
	}, keys(loc))
	assert.Nil(t, loc["lat"])
	assert.Nil(t, loc["lng"])
	assert.Nil(t, loc["visitDate"])
	assert.Nil(t, loc["visitTime"])
	assert.Equal(t, "", loc["description"])
	assert.Equal(t, float64(1), loc["order"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
