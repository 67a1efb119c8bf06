package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/user/findy/internal/model"
	"github.com/user/findy/internal/utils"
	"golang.org/x/sync/singleflight"
)

// Suggester 推荐生成客户端接口
type Suggester interface {
	Suggest(ctx context.Context, prompt string) ([]utils.MovieStub, error)
}

// Enricher 元数据补全客户端接口
type Enricher interface {
	FetchByTitle(ctx context.Context, title string) (*model.Movie, error)
}

// PreferenceStore 偏好读取接口
type PreferenceStore interface {
	Get(userID int) (*model.UserPreference, error)
}

// UserMovieStore 交互记录存储接口（编排所需的子集）
type UserMovieStore interface {
	UpsertBatch(records []*model.UserMovie) error
	ClearCurrentPicks(userID int) error
	RecentInteractionTitles(userID int, limit int) ([]string, error)
}

// BatchStore 推荐批次存储接口
type BatchStore interface {
	ReplaceForDay(rec *model.DailyRecommendation) error
}

// RecommendationService 推荐编排服务
// 组合偏好、排除上下文、OpenAI 生成与 OMDB 补全，产出一批当前推荐
type RecommendationService struct {
	prefs     PreferenceStore
	userMovie UserMovieStore
	batches   BatchStore
	exclusion *ExclusionService
	suggester Suggester
	enricher  Enricher
	cache     *utils.UserMovieCache
	clock     utils.Clock
	backoff   utils.Backoff

	attempts    int
	contextSize int
	group       singleflight.Group
}

// NewRecommendationService 创建推荐编排服务
func NewRecommendationService(
	prefs PreferenceStore,
	userMovie UserMovieStore,
	batches BatchStore,
	exclusion *ExclusionService,
	suggester Suggester,
	enricher Enricher,
	cache *utils.UserMovieCache,
	clock utils.Clock,
	backoff utils.Backoff,
	attempts int,
	contextSize int,
) *RecommendationService {
	return &RecommendationService{
		prefs:       prefs,
		userMovie:   userMovie,
		batches:     batches,
		exclusion:   exclusion,
		suggester:   suggester,
		enricher:    enricher,
		cache:       cache,
		clock:       clock,
		backoff:     backoff,
		attempts:    attempts,
		contextSize: contextSize,
	}
}

// Generate 为用户生成一批推荐（最多 5 部）
// 使用 singleflight 合并同一用户的并发生成请求
func (s *RecommendationService) Generate(ctx context.Context, userID int) ([]*model.UserMovie, error) {
	val, err, _ := s.group.Do(strconv.Itoa(userID), func() (interface{}, error) {
		return s.generate(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return val.([]*model.UserMovie), nil
}

func (s *RecommendationService) generate(ctx context.Context, userID int) ([]*model.UserMovie, error) {
	// 1. 读取偏好，类型或平台为空时直接终止，不发起任何网络调用
	pref, err := s.prefs.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("读取偏好失败: %w", err)
	}
	if pref == nil || !pref.Complete() {
		return nil, model.ErrMissingPreferences
	}

	// 2. 组装排除上下文：最近交互过的标题 + 排除清单贡献的标题
	// 只作为提示词上下文，不对生成结果做硬过滤
	avoid, err := s.userMovie.RecentInteractionTitles(userID, s.contextSize)
	if err != nil {
		log.Printf("[Recommendation] 读取交互标题失败，忽略: %v", err)
		avoid = nil
	}
	avoid = append(avoid, s.exclusion.ContextTitles(userID, s.contextSize)...)
	if len(avoid) > s.contextSize {
		avoid = avoid[:s.contextSize]
	}

	prompt := BuildPrompt(pref, avoid)

	// 3. 调用推荐接口，失败或空结果整批重试，最多 attempts 次
	var stubs []utils.MovieStub
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		stubs, lastErr = s.suggester.Suggest(ctx, prompt)
		if lastErr == nil && len(stubs) > 0 {
			break
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("推荐接口返回空结果")
		}
		log.Printf("[Recommendation] 第 %d 次生成失败 (用户 %d): %v", attempt, userID, lastErr)
		stubs = nil
		if attempt < s.attempts {
			s.clock.Sleep(s.backoff.Delay(attempt))
		}
	}

	// 4. 逐条补全元数据；补全失败只降级保留粗粒度数据，不影响整批
	now := s.clock.Now()
	movies := make([]model.Movie, 0, len(stubs))
	for _, stub := range stubs {
		movie := stubToMovie(stub)
		enriched, err := s.enricher.FetchByTitle(ctx, stub.Title)
		if err != nil {
			log.Printf("[Recommendation] 元数据补全失败 (%s): %v", stub.Title, err)
		} else {
			mergeEnrichment(&movie, enriched)
		}
		movies = append(movies, movie)
	}

	// 5. 按标题去重（不区分大小写），保留首次出现顺序
	movies = dedupByTitle(movies)

	// 6. 重试耗尽仍为空，整体失败
	if len(movies) == 0 {
		return nil, fmt.Errorf("%w: %v", model.ErrGenerationFailed, lastErr)
	}

	// 7. 持久化批次并标记当前推荐，最后整体失效缓存
	records := make([]*model.UserMovie, 0, len(movies))
	ids := make([]string, 0, len(movies))
	titles := make([]string, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.Key())
		titles = append(titles, m.Title)
		records = append(records, movieToUserMovie(userID, m, now))
	}

	batch := &model.DailyRecommendation{
		ID:          uuid.NewString(),
		UserID:      userID,
		Day:         now.Format("2006-01-02"),
		MovieIDs:    model.JoinList(ids),
		Titles:      model.JoinList(titles),
		GeneratedAt: now,
	}
	if err := s.batches.ReplaceForDay(batch); err != nil {
		return nil, fmt.Errorf("保存推荐批次失败: %w", err)
	}

	if err := s.userMovie.ClearCurrentPicks(userID); err != nil {
		return nil, fmt.Errorf("清除旧推荐标记失败: %w", err)
	}
	if err := s.userMovie.UpsertBatch(records); err != nil {
		return nil, fmt.Errorf("保存推荐记录失败: %w", err)
	}

	s.cache.Invalidate(userID)

	return records, nil
}

// BuildPrompt 组装推荐提示词
func BuildPrompt(pref *model.UserPreference, avoidTitles []string) string {
	var b strings.Builder
	b.WriteString("You are a movie recommendation assistant. Suggest exactly 5 movies as a JSON array.\n")
	b.WriteString("Each element must have: title, genres (array), poster_url, platforms (array), recommendation_reason.\n")
	b.WriteString("Respond with the JSON array only.\n\n")

	b.WriteString("Preferred genres: " + strings.Join(pref.GenreList(), ", ") + "\n")
	b.WriteString("Available streaming platforms: " + strings.Join(pref.PlatformList(), ", ") + "\n")
	if actors := pref.ActorList(); len(actors) > 0 {
		b.WriteString("Favorite actors: " + strings.Join(actors, ", ") + "\n")
	}
	if len(avoidTitles) > 0 {
		b.WriteString("Do not recommend these movies again: " + strings.Join(avoidTitles, "; ") + "\n")
	}

	return b.String()
}

// stubToMovie 粗粒度推荐数据转电影模型
func stubToMovie(stub utils.MovieStub) model.Movie {
	return model.Movie{
		Title:     strings.TrimSpace(stub.Title),
		Poster:    stub.PosterURL,
		Genres:    model.JoinList(stub.Genres),
		Platforms: model.JoinList(stub.Platforms),
		Reason:    stub.Reason,
	}
}

// movieToUserMovie 生成批次中的电影转用户交互记录，标记为当前推荐并计入历史
func movieToUserMovie(userID int, m model.Movie, now time.Time) *model.UserMovie {
	pickedAt := now
	return &model.UserMovie{
		UserID:        userID,
		MovieID:       m.Key(),
		Title:         m.Title,
		Summary:       m.Summary,
		Poster:        m.Poster,
		Year:          m.Year,
		Genres:        m.Genres,
		Platforms:     m.Platforms,
		Director:      m.Director,
		Actors:        m.Actors,
		ContentRating: m.ContentRating,
		Awards:        m.Awards,
		Reason:        m.Reason,
		Runtime:       m.Runtime,
		Rating:        m.Rating,
		IMDbID:        m.IMDbID,
		IsCurrentPick: true,
		IsInHistory:   true,
		PickedAt:      &pickedAt,
		CreatedAt:     now,
		LastUpdated:   now,
	}
}

// mergeEnrichment 用 OMDB 规范字段覆盖粗粒度数据
// 平台与推荐理由来自生成接口，补全不覆盖
func mergeEnrichment(movie *model.Movie, enriched *model.Movie) {
	if enriched.Title != "" {
		movie.Title = enriched.Title
	}
	if enriched.Summary != "" {
		movie.Summary = enriched.Summary
	}
	if enriched.Poster != "" {
		movie.Poster = enriched.Poster
	}
	if enriched.Year != "" {
		movie.Year = enriched.Year
	}
	if enriched.Genres != "" {
		movie.Genres = enriched.Genres
	}
	if enriched.Director != "" {
		movie.Director = enriched.Director
	}
	if enriched.Actors != "" {
		movie.Actors = enriched.Actors
	}
	if enriched.ContentRating != "" {
		movie.ContentRating = enriched.ContentRating
	}
	if enriched.Awards != "" {
		movie.Awards = enriched.Awards
	}
	movie.IMDbID = enriched.IMDbID
	movie.Runtime = enriched.Runtime
	movie.Rating = enriched.Rating
}

// dedupByTitle 按标题去重，保留首次出现顺序
func dedupByTitle(movies []model.Movie) []model.Movie {
	seen := make(map[string]bool, len(movies))
	result := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		key := model.NormalizeTitle(m.Title)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, m)
	}
	return result
}
