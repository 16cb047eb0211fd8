package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// 支持的生成式文本服务商
const (
	AIProviderGemini   = "gemini"
	AIProviderOpenAI   = "openai"
	AIProviderDeepSeek = "deepseek"
)

const (
	defaultGeminiModel   = "gemini-3-flash-preview"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultDeepSeekModel = "deepseek-chat"
	defaultDeepSeekURL   = "https://api.deepseek.com/v1"
	aiRequestTimeout     = 60 * time.Second
)

var (
	// ErrAIKeyMissing 表示未配置 API Key
	ErrAIKeyMissing = errors.New("ai api key is not configured")
	// ErrAIProviderUnknown 表示配置了不支持的服务商
	ErrAIProviderUnknown = errors.New("unknown ai provider")
)

// AIConfig 描述文本生成所使用的服务商与凭据
type AIConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

type aiChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
}

type aiChatResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// textCompleter 是单次文本补全调用
type textCompleter interface {
	complete(ctx context.Context, req aiChatRequest) (aiChatResponse, error)
}

// NormalizeAIProvider 规范化服务商名称，空值视为 gemini
func NormalizeAIProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", AIProviderGemini, "google":
		return AIProviderGemini
	case AIProviderOpenAI:
		return AIProviderOpenAI
	case AIProviderDeepSeek:
		return AIProviderDeepSeek
	default:
		return strings.ToLower(strings.TrimSpace(raw))
	}
}

func newTextCompleter(cfg AIConfig, httpClient *http.Client) (textCompleter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrAIKeyMissing
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: aiRequestTimeout}
	}
	model := strings.TrimSpace(cfg.Model)
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	switch provider := NormalizeAIProvider(cfg.Provider); provider {
	case AIProviderGemini:
		if model == "" {
			model = defaultGeminiModel
		}
		return &geminiCompleter{apiKey: apiKey, model: model, baseURL: base, http: httpClient}, nil
	case AIProviderOpenAI, AIProviderDeepSeek:
		label := "OpenAI"
		if provider == AIProviderDeepSeek {
			label = "DeepSeek"
			if model == "" {
				model = defaultDeepSeekModel
			}
			if base == "" {
				base = defaultDeepSeekURL
			}
		}
		if model == "" {
			model = defaultOpenAIModel
		}
		clientCfg := openai.DefaultConfig(apiKey)
		if base != "" {
			clientCfg.BaseURL = base
		}
		clientCfg.HTTPClient = httpClient
		return &openAICompleter{client: openai.NewClientWithConfig(clientCfg), model: model, label: label}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAIProviderUnknown, cfg.Provider)
	}
}

type geminiCompleter struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func (c *geminiCompleter) complete(ctx context.Context, req aiChatRequest) (aiChatResponse, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.http,
	}
	if c.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(req.UserPrompt), config)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("请求 Gemini 接口失败: %w", err)
	}

	result := aiChatResponse{Content: strings.TrimSpace(resp.Text())}
	if resp.UsageMetadata != nil {
		result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}

type openAICompleter struct {
	client *openai.Client
	model  string
	label  string
}

func (c *openAICompleter) complete(ctx context.Context, req aiChatRequest) (aiChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("请求 %s 接口失败: %w", c.label, err)
	}
	if len(resp.Choices) == 0 {
		return aiChatResponse{}, fmt.Errorf("%s 接口未返回结果", c.label)
	}

	return aiChatResponse{
		Content:          strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
