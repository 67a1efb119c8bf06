package service

import (
	"log"
	"time"

	"github.com/user/findy/internal/repository"
)

// CleanupService 定时历史清理服务
type CleanupService struct {
	repos     *repository.Repositories
	exclusion *ExclusionService
	keepCount int
}

// NewCleanupService 创建清理服务
func NewCleanupService(repos *repository.Repositories, exclusion *ExclusionService, keepCount int) *CleanupService {
	return &CleanupService{
		repos:     repos,
		exclusion: exclusion,
		keepCount: keepCount,
	}
}

// Start 启动定时清理任务
func (s *CleanupService) Start() {
	ticker := time.NewTicker(24 * time.Hour)

	// 启动时先运行一次
	go s.runCleanup()

	go func() {
		for range ticker.C {
			s.runCleanup()
		}
	}()
}

func (s *CleanupService) runCleanup() {
	log.Println("[CleanupService] 开始清理推荐历史...")

	userIDs, err := s.repos.UserMovie.UserIDsWithHistory()
	if err != nil {
		log.Printf("[CleanupService] 获取待清理用户失败: %v", err)
		return
	}

	var totalDeleted, totalCleared int
	for _, userID := range userIDs {
		deleted, cleared, err := s.exclusion.CleanupHistory(userID, s.keepCount)
		if err != nil {
			log.Printf("[CleanupService] 清理用户 %d 历史失败: %v", userID, err)
			continue
		}
		totalDeleted += deleted
		totalCleared += cleared
	}

	if totalDeleted > 0 || totalCleared > 0 {
		log.Printf("[CleanupService] 已删除 %d 条记录，清除 %d 条历史标记", totalDeleted, totalCleared)
	}
}
