package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/user/findy/internal/model"
)

// MovieStub 推荐接口返回的电影粗粒度数据（补全前）
type MovieStub struct {
	Title     string   `json:"title"`
	Genres    []string `json:"genres"`
	PosterURL string   `json:"poster_url"`
	Platforms []string `json:"platforms"`
	Reason    string   `json:"recommendation_reason"`
}

// ChatRequest OpenAI chat completions 请求结构
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse OpenAI chat completions 响应结构
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SuggestionClient OpenAI 推荐客户端
type SuggestionClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewSuggestionClient 创建推荐客户端，超时一般为 30 秒（LLM 生成较慢）
func NewSuggestionClient(baseURL, apiKey, chatModel string, temperature float64, timeout time.Duration) *SuggestionClient {
	return &SuggestionClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       chatModel,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Suggest 发送提示词并解析模型输出中的电影数组
func (c *SuggestionClient) Suggest(ctx context.Context, prompt string) ([]MovieStub, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	reqBody := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", model.ErrTimeout, err)
		}
		return nil, fmt.Errorf("post request to openai failed: %v", err)
	}
	defer resp.Body.Close()

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response failed: %v", model.ErrInvalidResponse, err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("openai api error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", model.ErrInvalidResponse)
	}

	return ParseMovieStubs(result.Choices[0].Message.Content)
}

// ParseMovieStubs 从模型自由文本输出中抽取 JSON 数组
// 模型偶尔会在数组前后加说明文字或代码块标记，这里按第一个 [ 和最后一个 ] 截取
func ParseMovieStubs(content string) ([]MovieStub, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: 输出中未找到 JSON 数组", model.ErrInvalidResponse)
	}

	var stubs []MovieStub
	if err := json.Unmarshal([]byte(content[start:end+1]), &stubs); err != nil {
		return nil, fmt.Errorf("%w: 解析电影数组失败: %v", model.ErrInvalidResponse, err)
	}

	return stubs, nil
}

// isTimeout 判断传输错误是否为超时
func isTimeout(err error) bool {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
