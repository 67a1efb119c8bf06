package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/findy/internal/model"
	"github.com/user/findy/internal/utils"
)

// ==================== 测试替身 ====================

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.sleeps = append(c.sleeps, d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

type fakePrefs struct {
	pref *model.UserPreference
	err  error
}

func (f *fakePrefs) Get(userID int) (*model.UserPreference, error) { return f.pref, f.err }

type fakeUserMovieStore struct {
	upserted     []*model.UserMovie
	clearedUsers []int
	titles       []string
	titlesErr    error
}

func (f *fakeUserMovieStore) UpsertBatch(records []*model.UserMovie) error {
	f.upserted = append(f.upserted, records...)
	return nil
}

func (f *fakeUserMovieStore) ClearCurrentPicks(userID int) error {
	f.clearedUsers = append(f.clearedUsers, userID)
	return nil
}

func (f *fakeUserMovieStore) RecentInteractionTitles(userID int, limit int) ([]string, error) {
	return f.titles, f.titlesErr
}

type fakeBatchStore struct {
	batches []*model.DailyRecommendation
}

func (f *fakeBatchStore) ReplaceForDay(rec *model.DailyRecommendation) error {
	f.batches = append(f.batches, rec)
	return nil
}

type suggestResult struct {
	stubs []utils.MovieStub
	err   error
}

type fakeSuggester struct {
	results []suggestResult
	calls   int
	prompts []string
}

func (f *fakeSuggester) Suggest(ctx context.Context, prompt string) ([]utils.MovieStub, error) {
	f.prompts = append(f.prompts, prompt)
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx].stubs, f.results[idx].err
}

type fakeEnricher struct {
	byTitle map[string]*model.Movie
	failing map[string]error
	calls   int
}

func (f *fakeEnricher) FetchByTitle(ctx context.Context, title string) (*model.Movie, error) {
	f.calls++
	if err, ok := f.failing[title]; ok {
		return nil, err
	}
	if m, ok := f.byTitle[title]; ok {
		return m, nil
	}
	return nil, model.ErrNotFound
}

type fakeSeen struct {
	ids    []string
	titles []string
	err    error
}

func (f *fakeSeen) IDsByUser(userID int) ([]string, error) { return f.ids, f.err }
func (f *fakeSeen) TitlesByUser(userID int, limit int) ([]string, error) {
	return f.titles, f.err
}

type fakeRecent struct {
	ids []string
	err error
}

func (f *fakeRecent) RecentMovieIDs(userID int, since time.Time) ([]string, error) {
	return f.ids, f.err
}

type fakeHistory struct {
	records []*model.UserMovie
	deleted []string
	saved   []*model.UserMovie
}

func (f *fakeHistory) ListHistory(userID int) ([]*model.UserMovie, error) { return f.records, nil }
func (f *fakeHistory) Delete(userID int, movieID string) error {
	f.deleted = append(f.deleted, movieID)
	return nil
}
func (f *fakeHistory) Save(m *model.UserMovie) error {
	f.saved = append(f.saved, m)
	return nil
}

// ==================== 装配 ====================

type testEnv struct {
	svc       *RecommendationService
	prefs     *fakePrefs
	userMovie *fakeUserMovieStore
	batches   *fakeBatchStore
	suggester *fakeSuggester
	enricher  *fakeEnricher
	cache     *utils.UserMovieCache
	clock     *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := newFakeClock()
	cache := utils.NewUserMovieCache(5*time.Minute, 1000, clock)

	prefs := &fakePrefs{pref: &model.UserPreference{
		UserID:    1,
		Genres:    "Action,Comedy",
		Platforms: "Netflix",
	}}
	userMovie := &fakeUserMovieStore{}
	batches := &fakeBatchStore{}
	suggester := &fakeSuggester{}
	enricher := &fakeEnricher{byTitle: map[string]*model.Movie{}, failing: map[string]error{}}

	exclusion := NewExclusionService(&fakeSeen{}, &fakeRecent{}, &fakeHistory{}, cache, clock, 7*24*time.Hour)

	svc := NewRecommendationService(
		prefs, userMovie, batches, exclusion,
		suggester, enricher, cache, clock,
		utils.ConstantBackoff{Interval: time.Second},
		3, 30,
	)

	return &testEnv{
		svc:       svc,
		prefs:     prefs,
		userMovie: userMovie,
		batches:   batches,
		suggester: suggester,
		enricher:  enricher,
		cache:     cache,
		clock:     clock,
	}
}

func stub(title string) utils.MovieStub {
	return utils.MovieStub{
		Title:     title,
		Genres:    []string{"Action"},
		PosterURL: "http://p/" + title + ".jpg",
		Platforms: []string{"Netflix"},
		Reason:    "looks good",
	}
}

func fiveStubs() []utils.MovieStub {
	return []utils.MovieStub{
		stub("Heat"), stub("Se7en"), stub("Alien"), stub("Arrival"), stub("Whiplash"),
	}
}

// ==================== 测试 ====================

func TestGenerateMissingPreferences(t *testing.T) {
	env := newTestEnv(t)
	env.prefs.pref = nil

	_, err := env.svc.Generate(context.Background(), 1)
	assert.ErrorIs(t, err, model.ErrMissingPreferences)

	// 偏好不完整时不发起任何外部调用
	assert.Equal(t, 0, env.suggester.calls)
	assert.Equal(t, 0, env.enricher.calls)
}

func TestGenerateEmptyPlatforms(t *testing.T) {
	env := newTestEnv(t)
	env.prefs.pref = &model.UserPreference{UserID: 1, Genres: "Action"}

	_, err := env.svc.Generate(context.Background(), 1)
	assert.ErrorIs(t, err, model.ErrMissingPreferences)
	assert.Equal(t, 0, env.suggester.calls)
}

func TestGenerateRetriesThenFails(t *testing.T) {
	env := newTestEnv(t)
	env.suggester.results = []suggestResult{
		{err: fmt.Errorf("%w: 输出中未找到 JSON 数组", model.ErrInvalidResponse)},
	}

	_, err := env.svc.Generate(context.Background(), 1)
	assert.ErrorIs(t, err, model.ErrGenerationFailed)

	// 整批重试 3 次，每次失败后等待固定间隔
	assert.Equal(t, 3, env.suggester.calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, env.clock.sleeps)
	assert.Empty(t, env.batches.batches)
}

func TestGenerateEmptyResultCountsAsFailure(t *testing.T) {
	env := newTestEnv(t)
	env.suggester.results = []suggestResult{{stubs: nil, err: nil}}

	_, err := env.svc.Generate(context.Background(), 1)
	assert.ErrorIs(t, err, model.ErrGenerationFailed)
	assert.Equal(t, 3, env.suggester.calls)
}

func TestGenerateSecondAttemptSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.suggester.results = []suggestResult{
		{err: fmt.Errorf("%w: timeout", model.ErrTimeout)},
		{stubs: fiveStubs()},
	}

	records, err := env.svc.Generate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, env.suggester.calls)
	assert.Len(t, records, 5)
}

func TestGenerateDegradedEnrichment(t *testing.T) {
	env := newTestEnv(t)
	env.suggester.results = []suggestResult{{stubs: fiveStubs()}}

	rating := 8.7
	runtime := 170
	for _, title := range []string{"Heat", "Se7en", "Alien", "Arrival"} {
		env.enricher.byTitle[title] = &model.Movie{
			IMDbID:  "tt-" + title,
			Title:   title,
			Year:    "1995",
			Rating:  &rating,
			Runtime: &runtime,
		}
	}
	env.enricher.failing["Whiplash"] = model.ErrNotFound

	records, err := env.svc.Generate(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 5)

	// 全部标记为当前推荐并计入历史
	for _, r := range records {
		assert.True(t, r.IsCurrentPick)
		assert.True(t, r.IsInHistory)
		require.NotNil(t, r.PickedAt)
	}

	// 补全成功的带 IMDb ID 与评分
	assert.Equal(t, "tt-Heat", records[0].IMDbID)
	require.NotNil(t, records[0].Rating)

	// 补全失败的降级保留粗粒度数据：无 IMDb ID，标识退化为小写标题
	last := records[4]
	assert.Empty(t, last.IMDbID)
	assert.Equal(t, "whiplash", last.MovieID)
	assert.Equal(t, "http://p/Whiplash.jpg", last.Poster)
	assert.Nil(t, last.Rating)

	// 批次落库：当日、5 个 ID
	require.Len(t, env.batches.batches, 1)
	batch := env.batches.batches[0]
	assert.Equal(t, "2024-06-01", batch.Day)
	assert.Len(t, model.SplitList(batch.MovieIDs), 5)
	assert.NotEmpty(t, batch.ID)

	// 旧推荐标记已清除
	assert.Equal(t, []int{1}, env.userMovie.clearedUsers)
}

func TestGenerateDedupByTitle(t *testing.T) {
	env := newTestEnv(t)
	stubs := []utils.MovieStub{stub("Heat"), stub("HEAT"), stub("heat "), stub("Se7en")}
	env.suggester.results = []suggestResult{{stubs: stubs}}

	records, err := env.svc.Generate(context.Background(), 1)
	require.NoError(t, err)

	// 大小写不敏感去重，保留首次出现
	require.Len(t, records, 2)
	assert.Equal(t, "Heat", records[0].Title)
	assert.Equal(t, "Se7en", records[1].Title)
}

func TestGenerateCommaTitleKeyRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.suggester.results = []suggestResult{{stubs: []utils.MovieStub{
		stub("The Good, the Bad and the Ugly"), stub("Heat"),
	}}}

	records, err := env.svc.Generate(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// 补全失败时标识退化为规范化标题，不能带列表分隔符
	key := records[0].MovieID
	assert.Equal(t, "the good the bad and the ugly", key)
	assert.NotContains(t, key, ",")

	// 批次列字段拆分后标识完整往返，排除集合才能命中
	require.Len(t, env.batches.batches, 1)
	ids := model.SplitList(env.batches.batches[0].MovieIDs)
	require.Len(t, ids, 2)
	assert.Contains(t, ids, key)
}

func TestGenerateInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	env.suggester.results = []suggestResult{{stubs: fiveStubs()}}

	env.cache.Put(1, model.UserMovie{UserID: 1, MovieID: "stale"})

	_, err := env.svc.Generate(context.Background(), 1)
	require.NoError(t, err)

	_, ok := env.cache.Get(1, "stale")
	assert.False(t, ok)
}

func TestGeneratePromptContext(t *testing.T) {
	env := newTestEnv(t)
	env.prefs.pref.Actors = "Al Pacino"
	env.userMovie.titles = []string{"The Godfather", "Casino"}
	env.suggester.results = []suggestResult{{stubs: fiveStubs()}}

	_, err := env.svc.Generate(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, env.suggester.prompts, 1)
	prompt := env.suggester.prompts[0]
	assert.Contains(t, prompt, "Action, Comedy")
	assert.Contains(t, prompt, "Netflix")
	assert.Contains(t, prompt, "Al Pacino")
	assert.Contains(t, prompt, "The Godfather")
}

func TestGenerateExclusionContextFailureIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.userMovie.titlesErr = fmt.Errorf("索引缺失")
	env.suggester.results = []suggestResult{{stubs: fiveStubs()}}

	// 交互标题读取失败不阻塞生成
	records, err := env.svc.Generate(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}
