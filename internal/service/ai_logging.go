package service

import (
	"strings"
	"unicode/utf8"

	"github.com/folio/internal/logging"
	"go.uber.org/zap"
)

const maxAILogSnippetRunes = 1024

// logAIExchange 输出 AI 请求与响应的关键信息，方便排查模型行为。
func logAIExchange(logger *zap.Logger, kind, phase, content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		logger.Debug("ai exchange", zap.String("kind", kind), zap.String("phase", phase), zap.Bool("empty", true))
		return
	}
	logger.Debug("ai exchange",
		zap.String("kind", kind),
		zap.String("phase", phase),
		zap.Int("runes", utf8.RuneCountInString(trimmed)),
		zap.String("content", logging.Snippet(trimmed, maxAILogSnippetRunes)),
	)
}
