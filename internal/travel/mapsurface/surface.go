// Package mapsurface describes the mapping surface a client should render
// when a coordinate selection opens: either a fixed list of well-known spots
// for offline use or a live map centred near the draft's destination.
package mapsurface

import (
	"tabilog/internal/travel/itinerary"
	"tabilog/internal/travel/models"
	dErrors "tabilog/pkg/domain-errors"
)

const (
	ModeMock = "mock"
	ModeLive = "live"

	defaultZoom = 12
)

// Spot is a selectable place on the mock surface.
type Spot struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

var mockSpots = []Spot{
	{Name: "東京タワー（日本）", Lat: 35.6586, Lng: 139.7454},
	{Name: "京都・清水寺（日本）", Lat: 34.9948, Lng: 135.785},
	{Name: "札幌・大通公園（日本）", Lat: 43.0606, Lng: 141.34},
	{Name: "沖縄・首里城（日本）", Lat: 26.2173, Lng: 127.719},
	{Name: "パリ・エッフェル塔（フランス）", Lat: 48.8584, Lng: 2.2945},
	{Name: "ニューヨーク・自由の女神（アメリカ）", Lat: 40.6892, Lng: -74.0445},
	{Name: "ロンドン・ビッグベン（イギリス）", Lat: 51.5007, Lng: -0.1246},
	{Name: "シドニー・オペラハウス（オーストラリア）", Lat: -33.8568, Lng: 151.2153},
	{Name: "北京・天安門広場（中国）", Lat: 39.9087, Lng: 116.3975},
	{Name: "リオ・コルコバードのキリスト像（ブラジル）", Lat: -22.9519, Lng: -43.2105},
}

var (
	defaultCenter = models.Coordinates{Lat: 35.6895, Lng: 139.6917}

	prefectureCenters = map[models.PrefectureID]models.Coordinates{
		1:  {Lat: 43.0642, Lng: 141.3469},
		13: {Lat: 35.6895, Lng: 139.6917},
		27: {Lat: 34.6937, Lng: 135.5023},
	}
	countryCenters = map[models.CountryID]models.Coordinates{
		1: {Lat: 37.0902, Lng: -95.7129},
		5: {Lat: 46.6034, Lng: 1.8883},
	}
)

// Surface is what the client renders for an open selection. Marker is the
// tentative value when one is held, else the committed coordinates.
type Surface struct {
	Mode      string              `json:"mode"`
	Selection itinerary.Selection `json:"selection"`
	Center    models.Coordinates  `json:"center"`
	Zoom      int                 `json:"zoom"`
	Marker    *models.Coordinates `json:"marker"`
	Spots     []Spot              `json:"spots,omitempty"`
	APIKey    string              `json:"apiKey,omitempty"`
}

type Provider struct {
	mock   bool
	apiKey string
}

func New(useMock bool, apiKey string) *Provider {
	return &Provider{mock: useMock, apiKey: apiKey}
}

func (p *Provider) Mode() string {
	if p.mock {
		return ModeMock
	}
	return ModeLive
}

// Describe builds the surface for sel within draft.
func (p *Provider) Describe(draft models.Draft, sel itinerary.Selection) Surface {
	s := Surface{
		Mode:      p.Mode(),
		Selection: sel,
		Zoom:      defaultZoom,
	}
	switch {
	case sel.Tentative != nil:
		m := *sel.Tentative
		s.Marker = &m
	case sel.Committed != nil:
		m := *sel.Committed
		s.Marker = &m
	}

	if p.mock {
		s.Spots = append([]Spot{}, mockSpots...)
	} else {
		s.APIKey = p.apiKey
	}

	if s.Marker != nil {
		s.Center = *s.Marker
	} else {
		s.Center = Center(draft)
	}
	return s
}

// Center picks an initial map centre from the draft's destination, falling
// back to Tokyo.
func Center(draft models.Draft) models.Coordinates {
	if draft.Prefecture != nil {
		if c, ok := prefectureCenters[*draft.Prefecture]; ok {
			return c
		}
	}
	if draft.Country != nil {
		if c, ok := countryCenters[*draft.Country]; ok {
			return c
		}
	}
	return defaultCenter
}

// Spot resolves a mock spot by index. It is only available on the mock
// surface.
func (p *Provider) Spot(i int) (Spot, error) {
	if !p.mock {
		return Spot{}, dErrors.New(dErrors.CodeBadRequest, "spot selection is only available on the mock map")
	}
	if i < 0 || i >= len(mockSpots) {
		return Spot{}, dErrors.New(dErrors.CodeValidation, "spot index out of range")
	}
	return mockSpots[i], nil
}

func Spots() []Spot {
	return append([]Spot{}, mockSpots...)
}
