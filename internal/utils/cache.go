package utils

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/user/findy/internal/model"
)

// UserMovieCache 按用户隔离的读穿缓存
// 数据库是唯一权威数据源；缓存只换取一个短暂的过期窗口。
// 任何写操作后整体失效该用户的缓存，而不是逐条修补。
type UserMovieCache struct {
	mu       sync.Mutex
	users    map[int]*userCache
	ttl      time.Duration
	capacity int
	clock    Clock
}

// userCache 单个用户的缓存：movie_id -> UserMovie + 最近拉取时间
type userCache struct {
	records   *lru.Cache[string, model.UserMovie]
	lastFetch time.Time
}

// NewUserMovieCache 初始化，TTL 与容量由调用方传入（如 5 分钟 / 1000 条）
func NewUserMovieCache(ttl time.Duration, capacity int, clock Clock) *UserMovieCache {
	return &UserMovieCache{
		users:    make(map[int]*userCache),
		ttl:      ttl,
		capacity: capacity,
		clock:    clock,
	}
}

// Get 获取缓存记录；整个用户缓存超过 TTL 时清空并返回未命中
func (c *UserMovieCache) Get(userID int, movieID string) (model.UserMovie, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero model.UserMovie
	uc, ok := c.users[userID]
	if !ok {
		return zero, false
	}

	// TTL 检查针对整个用户缓存，过期整体清除
	if c.clock.Now().After(uc.lastFetch.Add(c.ttl)) {
		delete(c.users, userID)
		return zero, false
	}

	return uc.records.Get(movieID)
}

// Put 写入单条记录并刷新拉取时间
func (c *UserMovieCache) Put(userID int, m model.UserMovie) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensure(userID).records.Add(m.MovieID, m)
}

// PutMany 批量写入；replace 为 true 时先清空再写入（整批刷新场景）
func (c *UserMovieCache) PutMany(userID int, movies []model.UserMovie, replace bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	uc := c.ensure(userID)
	if replace {
		uc.records.Purge()
	}
	for _, m := range movies {
		uc.records.Add(m.MovieID, m)
	}
}

// Invalidate 清空某用户全部缓存，下一次读取会回源数据库
func (c *UserMovieCache) Invalidate(userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, userID)
}

// Len 当前缓存条数（用于测试与监控）
func (c *UserMovieCache) Len(userID int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	uc, ok := c.users[userID]
	if !ok {
		return 0
	}
	return uc.records.Len()
}

// Keys 当前缓存的全部 movie_id
func (c *UserMovieCache) Keys(userID int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	uc, ok := c.users[userID]
	if !ok {
		return nil
	}
	return uc.records.Keys()
}

// ensure 取出或新建用户缓存，并刷新拉取时间
// lru.New 仅在容量非正时报错，容量由配置保证
func (c *UserMovieCache) ensure(userID int) *userCache {
	uc, ok := c.users[userID]
	if !ok {
		records, _ := lru.New[string, model.UserMovie](c.capacity)
		uc = &userCache{records: records}
		c.users[userID] = uc
	}
	uc.lastFetch = c.clock.Now()
	return uc
}
