package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/user/findy/internal/model"
)

// OMDBResponse OMDB API 响应结构（全部为字符串字段）
type OMDBResponse struct {
	Response   string `json:"Response"` // "True" / "False"
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Runtime    string `json:"Runtime"` // 如 "142 min"
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	Awards     string `json:"Awards"`
	ImdbRating string `json:"imdbRating"`
	ImdbID     string `json:"imdbID"`
}

// OMDBClient OMDB 元数据客户端
type OMDBClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *gocache.Cache
}

// NewOMDBClient 创建 OMDB 客户端，超时一般为 15 秒
// 响应缓存默认 5 分钟过期、10 分钟清理一次
func NewOMDBClient(baseURL, apiKey string, timeout time.Duration) *OMDBClient {
	return &OMDBClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// FetchByTitle 按标题查询元数据
func (c *OMDBClient) FetchByTitle(ctx context.Context, title string) (*model.Movie, error) {
	params := url.Values{}
	params.Set("t", title)
	return c.fetch(ctx, params)
}

// FetchByIMDbID 按 IMDb ID 查询元数据
func (c *OMDBClient) FetchByIMDbID(ctx context.Context, imdbID string) (*model.Movie, error) {
	params := url.Values{}
	params.Set("i", imdbID)
	return c.fetch(ctx, params)
}

func (c *OMDBClient) fetch(ctx context.Context, params url.Values) (*model.Movie, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OMDB_API_KEY is not set")
	}

	params.Set("apikey", c.apiKey)
	cacheKey := params.Encode()

	// 短时间内重复查询直接走缓存
	if cached, ok := c.cache.Get(cacheKey); ok {
		movie := cached.(model.Movie)
		return &movie, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+cacheKey, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", model.ErrTimeout, err)
		}
		return nil, fmt.Errorf("get request to omdb failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: omdb returned status %d", model.ErrInvalidResponse, resp.StatusCode)
	}

	var result OMDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response failed: %v", model.ErrInvalidResponse, err)
	}

	if result.Response != "True" {
		return nil, fmt.Errorf("%w: %s", model.ErrNotFound, result.Error)
	}

	movie := convertOMDB(&result)
	c.cache.Set(cacheKey, *movie, gocache.DefaultExpiration)

	return movie, nil
}

// convertOMDB OMDB 响应转电影模型，N/A 字段转为缺失
func convertOMDB(r *OMDBResponse) *model.Movie {
	movie := &model.Movie{
		IMDbID:        clean(r.ImdbID),
		Title:         clean(r.Title),
		Summary:       clean(r.Plot),
		Poster:        clean(r.Poster),
		Year:          clean(r.Year),
		Genres:        model.JoinList(model.SplitList(clean(r.Genre))),
		Director:      clean(r.Director),
		Actors:        model.JoinList(model.SplitList(clean(r.Actors))),
		ContentRating: clean(r.Rated),
		Awards:        clean(r.Awards),
	}

	// 时长与评分：下游逻辑要区分"未知"和"零值"，用指针表示缺失
	if runtime := parseRuntime(r.Runtime); runtime > 0 {
		movie.Runtime = &runtime
	}
	if rating, err := strconv.ParseFloat(clean(r.ImdbRating), 64); err == nil {
		movie.Rating = &rating
	}

	return movie
}

// parseRuntime 解析 "142 min" 形式的时长
func parseRuntime(s string) int {
	fields := strings.Fields(clean(s))
	if len(fields) == 0 {
		return 0
	}
	minutes, _ := strconv.Atoi(fields[0])
	return minutes
}

// clean OMDB 用 "N/A" 表示缺失字段
func clean(s string) string {
	if s == "N/A" {
		return ""
	}
	return strings.TrimSpace(s)
}
