package service

import (
	"log"
	"time"

	"github.com/user/findy/internal/model"
	"github.com/user/findy/internal/utils"
)

// SeenStore 已看记录存储接口
type SeenStore interface {
	IDsByUser(userID int) ([]string, error)
	TitlesByUser(userID int, limit int) ([]string, error)
}

// RecentStore 最近推荐批次查询接口
type RecentStore interface {
	RecentMovieIDs(userID int, since time.Time) ([]string, error)
}

// HistoryStore 历史清理所需的存储接口
type HistoryStore interface {
	ListHistory(userID int) ([]*model.UserMovie, error)
	Delete(userID int, movieID string) error
	Save(m *model.UserMovie) error
}

// ExclusionService 排除清单服务
// 汇总"已看"与"近期推荐过"两个来源；任一来源失败只记日志并按空处理，
// 绝不让单个查询失败阻塞推荐生成。
type ExclusionService struct {
	seen    SeenStore
	recent  RecentStore
	history HistoryStore
	cache   *utils.UserMovieCache
	clock   utils.Clock
	window  time.Duration
}

// NewExclusionService 创建排除清单服务，window 为近期推荐的时间窗口（如 7 天）
func NewExclusionService(seen SeenStore, recent RecentStore, history HistoryStore, cache *utils.UserMovieCache, clock utils.Clock, window time.Duration) *ExclusionService {
	return &ExclusionService{
		seen:    seen,
		recent:  recent,
		history: history,
		cache:   cache,
		clock:   clock,
		window:  window,
	}
}

// ExcludedIDs 用户当前的排除集合：已看 ∪ 时间窗口内推荐过
func (s *ExclusionService) ExcludedIDs(userID int) map[string]struct{} {
	excluded := make(map[string]struct{})

	seenIDs, err := s.seen.IDsByUser(userID)
	if err != nil {
		log.Printf("[Exclusion] 读取已看列表失败，按空处理: %v", err)
	}
	for _, id := range seenIDs {
		excluded[id] = struct{}{}
	}

	recentIDs, err := s.recent.RecentMovieIDs(userID, s.clock.Now().Add(-s.window))
	if err != nil {
		log.Printf("[Exclusion] 读取近期推荐失败，按空处理: %v", err)
	}
	for _, id := range recentIDs {
		excluded[id] = struct{}{}
	}

	return excluded
}

// ContextTitles 已看电影标题，供生成提示词使用；失败按空处理
func (s *ExclusionService) ContextTitles(userID int, limit int) []string {
	titles, err := s.seen.TitlesByUser(userID, limit)
	if err != nil {
		log.Printf("[Exclusion] 读取已看标题失败，按空处理: %v", err)
		return nil
	}
	return titles
}

// CleanupHistory 历史清理：保留最近 keepCount 条历史记录
// 超出部分中，没有任何其它交互的记录直接删除；
// 有喜欢/收藏/已看等标记的只清除历史标记，交互记录本身保留。
func (s *ExclusionService) CleanupHistory(userID int, keepCount int) (deleted, cleared int, err error) {
	records, err := s.history.ListHistory(userID)
	if err != nil {
		return 0, 0, err
	}
	if len(records) <= keepCount {
		return 0, 0, nil
	}

	for _, rec := range records[keepCount:] {
		if rec.HasInteraction() {
			rec.IsInHistory = false
			rec.LastUpdated = s.clock.Now()
			if err := s.history.Save(rec); err != nil {
				return deleted, cleared, err
			}
			cleared++
			continue
		}
		if err := s.history.Delete(userID, rec.MovieID); err != nil {
			return deleted, cleared, err
		}
		deleted++
	}

	if deleted > 0 || cleared > 0 {
		s.cache.Invalidate(userID)
	}

	return deleted, cleared, nil
}
