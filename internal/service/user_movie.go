package service

import (
	"fmt"

	"github.com/user/findy/internal/model"
	"github.com/user/findy/internal/repository"
	"github.com/user/findy/internal/utils"
)

// UserMovieService 用户电影交互服务
// 单条读取走读穿缓存，任何写操作后整体失效该用户缓存
type UserMovieService struct {
	repos *repository.Repositories
	cache *utils.UserMovieCache
	clock utils.Clock
}

// NewUserMovieService 创建交互服务
func NewUserMovieService(repos *repository.Repositories, cache *utils.UserMovieCache, clock utils.Clock) *UserMovieService {
	return &UserMovieService{
		repos: repos,
		cache: cache,
		clock: clock,
	}
}

// Get 读取单条记录：缓存命中直接返回，未命中回源数据库并回填
func (s *UserMovieService) Get(userID int, movieID string) (*model.UserMovie, error) {
	if cached, ok := s.cache.Get(userID, movieID); ok {
		return &cached, nil
	}

	rec, err := s.repos.UserMovie.GetByUserAndMovie(userID, movieID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, model.ErrNotFound
	}

	s.cache.Put(userID, *rec)
	return rec, nil
}

// List 按标记筛选列表，结果回填缓存（追加写入，不整体替换）
func (s *UserMovieService) List(userID int, flag string, limit, offset int) ([]*model.UserMovie, error) {
	records, err := s.repos.UserMovie.ListByUser(userID, flag, limit, offset)
	if err != nil {
		return nil, err
	}

	cached := make([]model.UserMovie, 0, len(records))
	for _, r := range records {
		cached = append(cached, *r)
	}
	s.cache.PutMany(userID, cached, false)

	return records, nil
}

// SetLiked 标记喜欢/取消喜欢（与不喜欢互斥）
func (s *UserMovieService) SetLiked(userID int, movieID string, on bool) (*model.UserMovie, error) {
	rec, err := s.load(userID, movieID)
	if err != nil {
		return nil, err
	}
	rec.SetLiked(on, s.clock.Now())
	return s.save(userID, rec)
}

// SetDisliked 标记不喜欢/取消（与喜欢互斥）
func (s *UserMovieService) SetDisliked(userID int, movieID string, on bool) (*model.UserMovie, error) {
	rec, err := s.load(userID, movieID)
	if err != nil {
		return nil, err
	}
	rec.SetDisliked(on, s.clock.Now())
	return s.save(userID, rec)
}

// SetFavorite 收藏/取消收藏
func (s *UserMovieService) SetFavorite(userID int, movieID string, on bool) (*model.UserMovie, error) {
	rec, err := s.load(userID, movieID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	rec.IsFavorite = on
	if on {
		rec.FavoritedAt = &now
	}
	rec.LastUpdated = now
	return s.save(userID, rec)
}

// SetSeen 标记已看/取消已看，同时维护独立的已看记录表
func (s *UserMovieService) SetSeen(userID int, movieID string, on bool) (*model.UserMovie, error) {
	rec, err := s.load(userID, movieID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	rec.IsSeen = on
	if on {
		rec.SeenAt = &now
		if err := s.repos.Seen.Add(userID, movieID, rec.Title, rec.Poster); err != nil {
			return nil, fmt.Errorf("写入已看记录失败: %w", err)
		}
	} else {
		if err := s.repos.Seen.Remove(userID, movieID); err != nil {
			return nil, fmt.Errorf("删除已看记录失败: %w", err)
		}
	}
	rec.LastUpdated = now
	return s.save(userID, rec)
}

// SetTonight 选定/取消今晚观看
func (s *UserMovieService) SetTonight(userID int, movieID string, on bool) (*model.UserMovie, error) {
	rec, err := s.load(userID, movieID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	rec.IsSelectedForTonight = on
	if on {
		rec.SelectedAt = &now
	}
	rec.LastUpdated = now
	return s.save(userID, rec)
}

func (s *UserMovieService) load(userID int, movieID string) (*model.UserMovie, error) {
	rec, err := s.repos.UserMovie.GetByUserAndMovie(userID, movieID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, model.ErrNotFound
	}
	return rec, nil
}

func (s *UserMovieService) save(userID int, rec *model.UserMovie) (*model.UserMovie, error) {
	if err := s.repos.UserMovie.Save(rec); err != nil {
		return nil, err
	}
	// 写后整体失效，下一次读取回源
	s.cache.Invalidate(userID)
	return rec, nil
}
