package models

import "strconv"

// PrefectureID is a JIS prefecture code (1..47).
type PrefectureID int

// CountryID indexes the overseas country table (1..50).
type CountryID int

var prefectures = [...]string{
	"北海道", "青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県", "岐阜県",
	"静岡県", "愛知県", "三重県", "滋賀県", "京都府", "大阪府", "兵庫県",
	"奈良県", "和歌山県", "鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県", "福岡県", "佐賀県", "長崎県",
	"熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

var countries = [...]string{
	"アメリカ合衆国", "カナダ", "メキシコ", "イギリス", "フランス", "ドイツ",
	"イタリア", "スペイン", "オランダ", "ベルギー", "スイス", "オーストリア",
	"スウェーデン", "ノルウェー", "デンマーク", "フィンランド", "ポーランド",
	"チェコ", "ハンガリー", "ロシア", "中国", "韓国", "台湾", "香港",
	"シンガポール", "タイ", "ベトナム", "マレーシア", "インドネシア",
	"フィリピン", "インド", "オーストラリア", "ニュージーランド", "ブラジル",
	"アルゼンチン", "チリ", "ペルー", "コロンビア", "南アフリカ", "エジプト",
	"モロッコ", "ケニア", "ナイジェリア", "ガーナ", "セネガル", "チュニジア",
	"アルジェリア", "リビア", "スーダン", "エチオピア",
}

func (id PrefectureID) Valid() bool { return id >= 1 && int(id) <= len(prefectures) }

func (id CountryID) Valid() bool { return id >= 1 && int(id) <= len(countries) }

// PrefectureName returns the display name, or "" for an unknown id.
func PrefectureName(id PrefectureID) string {
	if !id.Valid() {
		return ""
	}
	return prefectures[id-1]
}

// CountryName returns the display name, or "" for an unknown id.
func CountryName(id CountryID) string {
	if !id.Valid() {
		return ""
	}
	return countries[id-1]
}

// Constants is the lookup bundle served to clients that render pickers.
// Keys are stringified ids so the JSON matches the object-literal tables
// clients already consume.
type Constants struct {
	LocationCategory map[string]string `json:"location_category"`
	Prefecture       map[string]string `json:"prefecture"`
	Country          map[string]string `json:"country"`
	Visibility       map[string]string `json:"visibility"`
}

func AllConstants() Constants {
	c := Constants{
		LocationCategory: map[string]string{
			"0": LocationCategoryDomestic.Label(),
			"1": LocationCategoryOverseas.Label(),
		},
		Prefecture: make(map[string]string, len(prefectures)),
		Country:    make(map[string]string, len(countries)),
		Visibility: map[string]string{
			"0": VisibilityPrivate.String(),
			"1": VisibilityPublic.String(),
		},
	}
	for i, name := range prefectures {
		c.Prefecture[strconv.Itoa(i+1)] = name
	}
	for i, name := range countries {
		c.Country[strconv.Itoa(i+1)] = name
	}
	return c
}
