package source

import (
	"time"

	"tabilog/internal/travel/models"
)

const placeholderImage = "/placeholder.svg?height=300&width=400"
const placeholderAvatar = "/placeholder.svg?height=40&width=40"

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func fixtureRecords() []models.TravelRecordSummary {
	rec := func(id int64, title, location, date, duration, desc, user string, likes, comments int, tags []string, cat models.LocationCategory, created string) models.TravelRecordSummary {
		return models.TravelRecordSummary{
			ID:               id,
			Title:            title,
			Location:         location,
			Date:             date,
			Duration:         duration,
			Images:           []string{placeholderImage},
			Description:      desc,
			User:             models.UserRef{ID: id, Name: user, Avatar: placeholderAvatar},
			Likes:            likes,
			CommentCount:     comments,
			Tags:             tags,
			LocationCategory: cat,
			Visibility:       models.VisibilityPublic,
			CreatedAt:        ts(created),
			UpdatedAt:        ts(created),
		}
	}

	return []models.TravelRecordSummary{
		rec(1, "京都の古都を巡る旅", "京都府, 日本", "2023年10月15日 - 2023年10月20日", "6日間",
			"京都の伝統的な寺院や庭園を訪れ、日本の歴史と文化に触れる旅。金閣寺、清水寺、伏見稲荷大社など多くの名所を巡りました。",
			"田中太郎", 124, 18, []string{"京都", "寺院", "日本文化", "紅葉"},
			models.LocationCategoryDomestic, "2023-10-25T10:00:00Z"),
		rec(2, "バリ島でのリラックス休暇", "バリ島, インドネシア", "2023年8月5日 - 2023年8月15日", "11日間",
			"バリ島の美しいビーチでリラックスし、地元の文化や料理を楽しんだ10日間。ウブドの棚田やウルワツ寺院も訪れました。",
			"佐藤花子", 98, 12, []string{"バリ島", "ビーチ", "リゾート", "南国"},
			models.LocationCategoryOverseas, "2023-08-20T14:30:00Z"),
		rec(3, "パリの芸術と食を堪能する旅", "パリ, フランス", "2023年6月10日 - 2023年6月17日", "8日間",
			"ルーブル美術館やオルセー美術館で芸術作品を鑑賞し、パリの美味しいレストランやカフェでフランス料理を堪能しました。",
			"鈴木一郎", 156, 24, []string{"パリ", "美術館", "フランス料理", "ヨーロッパ"},
			models.LocationCategoryOverseas, "2023-06-25T09:15:00Z"),
		rec(4, "ニューヨーク市街地探索", "ニューヨーク, アメリカ", "2023年4月20日 - 2023年4月27日", "8日間",
			"マンハッタンの摩天楼、セントラルパーク、ブロードウェイのショーなど、ニューヨークの魅力を存分に味わいました。",
			"山田健太", 87, 9, []string{"ニューヨーク", "都市", "アメリカ", "観光"},
			models.LocationCategoryOverseas, "2023-05-05T16:45:00Z"),
		rec(5, "沖縄の美しい海と文化を楽しむ", "沖縄県, 日本", "2023年7月1日 - 2023年7月5日", "5日間",
			"沖縄の美しい海でシュノーケリングを楽しみ、琉球文化に触れる旅。首里城や美ら海水族館も訪れました。",
			"高橋美咲", 203, 31, []string{"沖縄", "海", "シュノーケリング", "琉球文化"},
			models.LocationCategoryDomestic, "2023-07-10T11:20:00Z"),
		rec(6, "ローマの歴史遺産を巡る", "ローマ, イタリア", "2023年9月15日 - 2023年9月22日", "8日間",
			"コロッセオ、バチカン市国、フォロ・ロマーノなど、ローマの歴史的建造物を巡る旅。イタリア料理も堪能しました。",
			"伊藤雅子", 142, 19, []string{"ローマ", "歴史", "イタリア", "世界遺産"},
			models.LocationCategoryOverseas, "2023-10-01T13:10:00Z"),
	}
}

// fixtureExtras holds the detail-only parts of each fixture record.
type fixtureExtras struct {
	bio       string
	firstDay  string
	locations []models.LocationDetail
	comments  []models.Comment
}

func loc(order int, name string, lat, lng float64, desc string) models.LocationDetail {
	return models.LocationDetail{Name: name, Lat: lat, Lng: lng, Description: desc, OrderIndex: intPtr(order)}
}

func fixtureDetailExtras() map[int64]fixtureExtras {
	return map[int64]fixtureExtras{
		1: {
			bio:      "寺社巡りが趣味の会社員です。",
			firstDay: "2023-10-15",
			locations: []models.LocationDetail{
				loc(1, "金閣寺", 35.0394, 135.7292, "鏡湖池に映る舎利殿"),
				loc(2, "清水寺", 34.9949, 135.7850, "清水の舞台からの紅葉"),
				loc(3, "伏見稲荷大社", 34.9671, 135.7727, "千本鳥居を山頂まで"),
			},
			comments: []models.Comment{
				{ID: 1, User: models.CommentAuthor{Name: "佐藤花子", Avatar: placeholderAvatar}, Content: "紅葉の時期の京都は最高ですね！", Date: "2023-10-26"},
			},
		},
		2: {
			firstDay: "2023-08-05",
			locations: []models.LocationDetail{
				loc(1, "ウブドの棚田", -8.4333, 115.2792, "テガラランの棚田"),
				loc(2, "ウルワツ寺院", -8.8291, 115.0849, "断崖の上の夕日"),
			},
		},
		3: {
			bio:      "美術館とパン屋を巡るのが好きです。",
			firstDay: "2023-06-10",
			locations: []models.LocationDetail{
				loc(1, "ルーブル美術館", 48.8606, 2.3376, ""),
				loc(2, "オルセー美術館", 48.8600, 2.3266, "印象派のコレクション"),
			},
			comments: []models.Comment{
				{ID: 2, User: models.CommentAuthor{Name: "伊藤雅子", Avatar: placeholderAvatar}, Content: "おすすめのカフェを教えてください。", Date: "2023-06-26"},
			},
		},
		4: {
			firstDay: "2023-04-20",
			locations: []models.LocationDetail{
				loc(1, "セントラルパーク", 40.7829, -73.9654, ""),
				loc(2, "タイムズスクエア", 40.7580, -73.9855, "ブロードウェイのショー"),
			},
		},
		5: {
			firstDay: "2023-07-01",
			locations: []models.LocationDetail{
				loc(1, "首里城", 26.2172, 127.7195, ""),
				loc(2, "美ら海水族館", 26.6944, 127.8780, "ジンベエザメの大水槽"),
			},
		},
		6: {
			firstDay: "2023-09-15",
			locations: []models.LocationDetail{
				loc(1, "コロッセオ", 41.8902, 12.4922, ""),
				loc(2, "バチカン市国", 41.9029, 12.4534, "サン・ピエトロ大聖堂"),
				loc(3, "フォロ・ロマーノ", 41.8925, 12.4853, ""),
			},
		},
	}
}
