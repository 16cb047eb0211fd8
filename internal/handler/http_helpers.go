package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

const quotaExceededMessage = "저장 공간이 부족합니다. 이미지 크기를 줄이거나 항목을 정리한 뒤 다시 시도하세요."

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondWriteError 处理写入失败：超出配额返回 413，其余返回 500。
func (a *API) respondWriteError(c *gin.Context, err error, message string) {
	if errors.Is(err, service.ErrStorageQuotaExceeded) {
		respondError(c, http.StatusRequestEntityTooLarge, quotaExceededMessage)
		return
	}
	c.Error(err)
	respondError(c, http.StatusInternalServerError, message)
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}
