package model

import (
	"time"
)

// UserPreference 用户偏好（类型、演员、流媒体平台）
type UserPreference struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"unique"`
	Genres    string    `json:"genres" db:"genres"`       // 逗号分隔
	Actors    string    `json:"actors" db:"actors"`       // 逗号分隔
	Platforms string    `json:"platforms" db:"platforms"` // 逗号分隔
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// GenreList 偏好类型列表
func (p *UserPreference) GenreList() []string {
	return SplitList(p.Genres)
}

// ActorList 偏好演员列表
func (p *UserPreference) ActorList() []string {
	return SplitList(p.Actors)
}

// PlatformList 流媒体平台列表
func (p *UserPreference) PlatformList() []string {
	return SplitList(p.Platforms)
}

// Complete 偏好是否完整（至少一个类型和一个平台才能生成推荐）
func (p *UserPreference) Complete() bool {
	return len(p.GenreList()) > 0 && len(p.PlatformList()) > 0
}
