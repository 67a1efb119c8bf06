package model

import (
	"time"
)

// DailyRecommendation 每日推荐批次（每用户每天一条，刷新时整体替换）
type DailyRecommendation struct {
	ID          string    `json:"id" db:"id" gorm:"primaryKey"`
	UserID      int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_user_day"`
	Day         string    `json:"day" db:"day" gorm:"uniqueIndex:idx_user_day"` // YYYY-MM-DD
	MovieIDs    string    `json:"movie_ids" db:"movie_ids"`                     // 逗号分隔，最多 5 个
	Titles      string    `json:"titles" db:"titles"`
	GeneratedAt time.Time `json:"generated_at" db:"generated_at" gorm:"index"`
}

// SeenMovie 已看记录（独立于 UserMovie，用于生成时排除）
type SeenMovie struct {
	ID      int       `json:"id" db:"id"`
	UserID  int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_user_seen"`
	MovieID string    `json:"movie_id" db:"movie_id" gorm:"uniqueIndex:idx_user_seen"`
	Title   string    `json:"title" db:"title"`
	Poster  string    `json:"poster" db:"poster"`
	SeenAt  time.Time `json:"seen_at" db:"seen_at"`
}
