package model

import (
	"strings"
	"time"
)

// Movie 电影模型（OpenAI 推荐 + OMDB 补全信息）
type Movie struct {
	ID            int       `json:"id" db:"id"`
	IMDbID        string    `json:"imdb_id" db:"imdb_id"`
	Title         string    `json:"title" db:"title"`
	Summary       string    `json:"summary" db:"summary"`
	Poster        string    `json:"poster" db:"poster"`
	Year          string    `json:"year" db:"year"`
	Genres        string    `json:"genres" db:"genres"`
	Platforms     string    `json:"platforms" db:"platforms"`
	Director      string    `json:"director" db:"director"`
	Actors        string    `json:"actors" db:"actors"`
	ContentRating string    `json:"content_rating" db:"content_rating"`
	Awards        string    `json:"awards" db:"awards"`
	Reason        string    `json:"reason" db:"reason"`
	Runtime       *int      `json:"runtime" db:"runtime"` // 分钟，未知为 nil
	Rating        *float64  `json:"rating" db:"rating"`   // IMDB 评分，未知为 nil
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Key 电影标识：优先 IMDb ID，缺失时退化为规范化小写标题
func (m *Movie) Key() string {
	if m.IMDbID != "" {
		return m.IMDbID
	}
	return NormalizeTitle(m.Title)
}

// NormalizeTitle 规范化标题（用于标识与去重）
// 标识会写入逗号分隔的批次列，因此去掉逗号并压缩空白
func NormalizeTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	t = strings.ReplaceAll(t, ",", "")
	return strings.Join(strings.Fields(t), " ")
}

// SplitList 解析逗号分隔的列表字段
func SplitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// JoinList 列表字段转逗号分隔字符串
func JoinList(items []string) string {
	return strings.Join(items, ",")
}
