package model

import (
	"time"
)

// UserMovie 用户电影交互记录（每用户每部电影一条）
type UserMovie struct {
	ID      int    `json:"id" db:"id"`
	UserID  int    `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_user_movie"`
	MovieID string `json:"movie_id" db:"movie_id" gorm:"uniqueIndex:idx_user_movie"`

	// 电影快照字段（生成时写入，避免展示时再查外部接口）
	Title         string   `json:"title" db:"title"`
	Summary       string   `json:"summary" db:"summary"`
	Poster        string   `json:"poster" db:"poster"`
	Year          string   `json:"year" db:"year"`
	Genres        string   `json:"genres" db:"genres"`
	Platforms     string   `json:"platforms" db:"platforms"`
	Director      string   `json:"director" db:"director"`
	Actors        string   `json:"actors" db:"actors"`
	ContentRating string   `json:"content_rating" db:"content_rating"`
	Awards        string   `json:"awards" db:"awards"`
	Reason        string   `json:"reason" db:"reason"`
	Runtime       *int     `json:"runtime" db:"runtime"`
	Rating        *float64 `json:"rating" db:"rating"`
	IMDbID        string   `json:"imdb_id" db:"imdb_id"`

	// 交互标记
	IsCurrentPick        bool `json:"is_current_pick" db:"is_current_pick" gorm:"index"`
	IsInHistory          bool `json:"is_in_history" db:"is_in_history" gorm:"index"`
	IsLiked              bool `json:"is_liked" db:"is_liked"`
	IsDisliked           bool `json:"is_disliked" db:"is_disliked"`
	IsFavorite           bool `json:"is_favorite" db:"is_favorite"`
	IsSeen               bool `json:"is_seen" db:"is_seen"`
	IsSelectedForTonight bool `json:"is_selected_for_tonight" db:"is_selected_for_tonight"`

	// 状态变更时间戳
	PickedAt    *time.Time `json:"picked_at" db:"picked_at"`
	LikedAt     *time.Time `json:"liked_at" db:"liked_at"`
	DislikedAt  *time.Time `json:"disliked_at" db:"disliked_at"`
	FavoritedAt *time.Time `json:"favorited_at" db:"favorited_at"`
	SeenAt      *time.Time `json:"seen_at" db:"seen_at"`
	SelectedAt  *time.Time `json:"selected_at" db:"selected_at"`

	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated" gorm:"index"`
}

// SetLiked 标记喜欢（与不喜欢互斥）
func (m *UserMovie) SetLiked(on bool, now time.Time) {
	m.IsLiked = on
	if on {
		m.LikedAt = &now
		m.IsDisliked = false
		m.DislikedAt = nil
	}
	m.LastUpdated = now
}

// SetDisliked 标记不喜欢（与喜欢互斥）
func (m *UserMovie) SetDisliked(on bool, now time.Time) {
	m.IsDisliked = on
	if on {
		m.DislikedAt = &now
		m.IsLiked = false
		m.LikedAt = nil
	}
	m.LastUpdated = now
}

// HasInteraction 历史标记之外是否还有其它交互
// 清理历史时只能删除没有任何其它交互的记录
func (m *UserMovie) HasInteraction() bool {
	return m.IsLiked || m.IsDisliked || m.IsFavorite || m.IsSeen || m.IsSelectedForTonight || m.IsCurrentPick
}
