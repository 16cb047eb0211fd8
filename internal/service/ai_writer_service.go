package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	descriptionMaxTokens   = 512
	biographyMaxTokens     = 2048
	aiWriterTemperature    = 0.7
	maxBiographyNotesRunes = 4000
)

var (
	// ErrGenerationInProgress 表示已有一次生成正在进行
	ErrGenerationInProgress = errors.New("ai generation already in progress")
	// ErrGenerationEmpty 表示模型未返回可用内容
	ErrGenerationEmpty = errors.New("ai generation returned empty content")
	// ErrAITitleMissing 表示生成描述时缺少项目标题
	ErrAITitleMissing = errors.New("project title is required")
)

// TextWriter 生成项目描述与简介草稿，便于在处理器中替换实现。
type TextWriter interface {
	GenerateDescription(ctx context.Context, title string) (string, error)
	GenerateBiography(ctx context.Context, notes string) (string, error)
}

// AIWriterService 调用生成式文本接口起草文案。
// 同一时间只允许一次生成，其余请求直接返回 ErrGenerationInProgress。
type AIWriterService struct {
	cfg    AIConfig
	http   *http.Client
	logger *zap.Logger

	gate      sync.Mutex
	completer textCompleter
}

// NewAIWriterService 构造 AIWriterService。API Key 为空时服务仍可构造，调用时返回 ErrAIKeyMissing。
func NewAIWriterService(cfg AIConfig, logger *zap.Logger) *AIWriterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIWriterService{cfg: cfg, logger: logger}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *AIWriterService) SetHTTPClient(client *http.Client) {
	s.http = client
}

// Enabled 表示是否配置了 API Key。
func (s *AIWriterService) Enabled() bool {
	return strings.TrimSpace(s.cfg.APIKey) != ""
}

// Provider 返回规范化后的服务商名称。
func (s *AIWriterService) Provider() string {
	return NormalizeAIProvider(s.cfg.Provider)
}

// GenerateDescription 为作品标题生成 2-3 句的韩语简介。
func (s *AIWriterService) GenerateDescription(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrAITitleMissing
	}
	return s.generate(ctx, "description", aiChatRequest{
		SystemPrompt: "당신은 갤러리와 디자인 스튜디오의 큐레이터입니다. 결과 문장만 출력하세요.",
		UserPrompt:   fmt.Sprintf("%s라는 제목의 예술 작품이나 디자인 프로젝트를 위한 짧고 고급스러운 감각의 한국어 설명을 2-3문장 작성해줘.", title),
		MaxTokens:    descriptionMaxTokens,
		Temperature:  aiWriterTemperature,
	})
}

// GenerateBiography 根据要点起草作者简介。
func (s *AIWriterService) GenerateBiography(ctx context.Context, notes string) (string, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return "", ErrBiographyMissing
	}
	notes, stash := stashImageLinks(notes)
	text, err := s.generate(ctx, "biography", aiChatRequest{
		SystemPrompt: "당신은 작가 소개 글을 다듬는 에디터입니다. 사실을 추가하지 말고 본문만 출력하세요. image:// 로 시작하는 이미지 주소는 그대로 유지하세요.",
		UserPrompt:   "다음 메모를 바탕으로 포트폴리오 웹사이트에 실을 한국어 작가 소개를 3-4개의 짧은 문단으로 작성해줘.\n\n" + truncateRunes(notes, maxBiographyNotesRunes),
		MaxTokens:    biographyMaxTokens,
		Temperature:  aiWriterTemperature,
	})
	if err != nil {
		return "", err
	}
	return stash.restore(text), nil
}

func (s *AIWriterService) generate(ctx context.Context, kind string, req aiChatRequest) (string, error) {
	if !s.gate.TryLock() {
		return "", ErrGenerationInProgress
	}
	defer s.gate.Unlock()

	completer, err := s.client()
	if err != nil {
		return "", err
	}

	logAIExchange(s.logger, kind, "request", req.UserPrompt)
	resp, err := completer.complete(ctx, req)
	if err != nil {
		s.logger.Warn("ai generation failed", zap.String("kind", kind), zap.Error(err))
		return "", err
	}
	logAIExchange(s.logger, kind, "response", resp.Content)

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", ErrGenerationEmpty
	}
	s.logger.Info("ai generation finished",
		zap.String("kind", kind),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
	)
	return content, nil
}

// client 在首次调用时构造，调用方需持有 gate。
func (s *AIWriterService) client() (textCompleter, error) {
	if s.completer != nil {
		return s.completer, nil
	}
	completer, err := newTextCompleter(s.cfg, s.http)
	if err != nil {
		return nil, err
	}
	s.completer = completer
	return completer, nil
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
