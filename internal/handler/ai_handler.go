package handler

import (
	"errors"
	"net/http"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

type descriptionRequest struct {
	Title string `json:"title"`
}

type biographyDraftRequest struct {
	Notes string `json:"notes"`
}

// GenerateDescription 根据项目标题生成简介草稿
func (a *API) GenerateDescription(c *gin.Context) {
	var payload descriptionRequest
	if !bindJSON(c, &payload, "제목을 확인하세요.") {
		return
	}
	if a.writer == nil {
		respondError(c, http.StatusServiceUnavailable, "AI 기능이 설정되지 않았습니다.")
		return
	}

	text, err := a.writer.GenerateDescription(c.Request.Context(), payload.Title)
	if err != nil {
		a.respondAIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// GenerateBiography 根据要点生成作者简介草稿
func (a *API) GenerateBiography(c *gin.Context) {
	var payload biographyDraftRequest
	if !bindJSON(c, &payload, "메모를 확인하세요.") {
		return
	}
	if a.writer == nil {
		respondError(c, http.StatusServiceUnavailable, "AI 기능이 설정되지 않았습니다.")
		return
	}

	text, err := a.writer.GenerateBiography(c.Request.Context(), payload.Notes)
	if err != nil {
		a.respondAIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (a *API) respondAIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAITitleMissing):
		respondError(c, http.StatusBadRequest, "제목을 먼저 입력하세요.")
	case errors.Is(err, service.ErrBiographyMissing):
		respondError(c, http.StatusBadRequest, "메모를 입력하세요.")
	case errors.Is(err, service.ErrAIKeyMissing), errors.Is(err, service.ErrAIProviderUnknown):
		respondError(c, http.StatusServiceUnavailable, "AI 기능이 설정되지 않았습니다.")
	case errors.Is(err, service.ErrGenerationInProgress):
		respondError(c, http.StatusConflict, "이미 생성 중입니다. 잠시 후 다시 시도하세요.")
	case errors.Is(err, service.ErrGenerationEmpty):
		respondError(c, http.StatusBadGateway, "AI 가 빈 결과를 반환했습니다.")
	default:
		c.Error(err)
		respondError(c, http.StatusBadGateway, "AI 생성에 실패했습니다.")
	}
}
