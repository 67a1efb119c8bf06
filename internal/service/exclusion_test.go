package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/findy/internal/model"
	"github.com/user/findy/internal/utils"
)

func newExclusionEnv(seen *fakeSeen, recent *fakeRecent, history *fakeHistory) (*ExclusionService, *utils.UserMovieCache, *fakeClock) {
	clock := newFakeClock()
	cache := utils.NewUserMovieCache(5*time.Minute, 1000, clock)
	svc := NewExclusionService(seen, recent, history, cache, clock, 7*24*time.Hour)
	return svc, cache, clock
}

func TestExcludedIDsUnion(t *testing.T) {
	seen := &fakeSeen{ids: []string{"tt1", "tt2"}}
	recent := &fakeRecent{ids: []string{"tt2", "tt3"}}
	svc, _, _ := newExclusionEnv(seen, recent, &fakeHistory{})

	excluded := svc.ExcludedIDs(1)

	assert.Len(t, excluded, 3)
	for _, id := range []string{"tt1", "tt2", "tt3"} {
		_, ok := excluded[id]
		assert.True(t, ok, id)
	}
}

func TestExcludedIDsSeenFailureDegrades(t *testing.T) {
	seen := &fakeSeen{err: fmt.Errorf("连接中断")}
	recent := &fakeRecent{ids: []string{"tt3"}}
	svc, _, _ := newExclusionEnv(seen, recent, &fakeHistory{})

	// 单个来源失败按空处理，另一来源照常生效
	excluded := svc.ExcludedIDs(1)
	assert.Len(t, excluded, 1)
	_, ok := excluded["tt3"]
	assert.True(t, ok)
}

func TestExcludedIDsRecentFailureDegrades(t *testing.T) {
	seen := &fakeSeen{ids: []string{"tt1"}}
	recent := &fakeRecent{err: fmt.Errorf("连接中断")}
	svc, _, _ := newExclusionEnv(seen, recent, &fakeHistory{})

	excluded := svc.ExcludedIDs(1)
	assert.Len(t, excluded, 1)
}

func TestContextTitlesDegrades(t *testing.T) {
	seen := &fakeSeen{err: fmt.Errorf("连接中断")}
	svc, _, _ := newExclusionEnv(seen, &fakeRecent{}, &fakeHistory{})

	assert.Empty(t, svc.ContextTitles(1, 30))
}

func historyRecord(movieID string) *model.UserMovie {
	return &model.UserMovie{UserID: 1, MovieID: movieID, IsInHistory: true}
}

func TestCleanupHistoryDeletesBeyondKeep(t *testing.T) {
	history := &fakeHistory{}
	for i := 0; i < 60; i++ {
		history.records = append(history.records, historyRecord(fmt.Sprintf("tt%03d", i)))
	}
	svc, _, _ := newExclusionEnv(&fakeSeen{}, &fakeRecent{}, history)

	deleted, cleared, err := svc.CleanupHistory(1, 50)
	require.NoError(t, err)

	// 超出保留数量且无其它交互的记录直接删除
	assert.Equal(t, 10, deleted)
	assert.Equal(t, 0, cleared)
	assert.Len(t, history.deleted, 10)
	assert.Equal(t, "tt050", history.deleted[0])
}

func TestCleanupHistoryPreservesInteracted(t *testing.T) {
	history := &fakeHistory{}
	for i := 0; i < 55; i++ {
		rec := historyRecord(fmt.Sprintf("tt%03d", i))
		if i == 52 {
			rec.IsFavorite = true
		}
		history.records = append(history.records, rec)
	}
	svc, _, _ := newExclusionEnv(&fakeSeen{}, &fakeRecent{}, history)

	deleted, cleared, err := svc.CleanupHistory(1, 50)
	require.NoError(t, err)

	// 有收藏标记的只清除历史标记，记录保留
	assert.Equal(t, 4, deleted)
	assert.Equal(t, 1, cleared)
	require.Len(t, history.saved, 1)
	saved := history.saved[0]
	assert.Equal(t, "tt052", saved.MovieID)
	assert.False(t, saved.IsInHistory)
	assert.True(t, saved.IsFavorite)
}

func TestCleanupHistoryUnderKeepNoop(t *testing.T) {
	history := &fakeHistory{records: []*model.UserMovie{historyRecord("tt001")}}
	svc, cache, _ := newExclusionEnv(&fakeSeen{}, &fakeRecent{}, history)

	cache.Put(1, model.UserMovie{UserID: 1, MovieID: "tt001"})

	deleted, cleared, err := svc.CleanupHistory(1, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.Equal(t, 0, cleared)

	// 没有变更时不失效缓存
	_, ok := cache.Get(1, "tt001")
	assert.True(t, ok)
}

func TestCleanupHistoryInvalidatesCache(t *testing.T) {
	history := &fakeHistory{}
	for i := 0; i < 52; i++ {
		history.records = append(history.records, historyRecord(fmt.Sprintf("tt%03d", i)))
	}
	svc, cache, _ := newExclusionEnv(&fakeSeen{}, &fakeRecent{}, history)

	cache.Put(1, model.UserMovie{UserID: 1, MovieID: "tt051"})

	_, _, err := svc.CleanupHistory(1, 50)
	require.NoError(t, err)

	_, ok := cache.Get(1, "tt051")
	assert.False(t, ok)
}
