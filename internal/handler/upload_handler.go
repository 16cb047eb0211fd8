package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/folio/internal/imageopt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const imageTooLargeMessage = "이미지 용량이 너무 큽니다."

// UploadImage 压缩上传的图片；inline=1 时直接返回 data URI，否则写入上传目录并返回 URL
func (a *API) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.maxUploadBytes+(1<<20))

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, imageTooLargeMessage)
			return
		}
		respondError(c, http.StatusBadRequest, "업로드할 이미지를 찾을 수 없습니다.")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") && contentType != "application/octet-stream" {
		respondError(c, http.StatusBadRequest, "이미지 파일만 업로드할 수 있습니다.")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "이미지를 읽을 수 없습니다.")
		return
	}
	defer src.Close()

	result, err := a.images.Optimize(src)
	if err != nil {
		switch {
		case errors.Is(err, imageopt.ErrTooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, imageTooLargeMessage)
		default:
			a.logger.Info("image decode failed", zap.String("filename", file.Filename), zap.Error(err))
			respondError(c, http.StatusBadRequest, "이미지를 처리할 수 없습니다. 다른 파일을 선택하세요.")
		}
		return
	}

	meta := gin.H{
		"width":          result.Width,
		"height":         result.Height,
		"originalWidth":  result.OriginalWidth,
		"originalHeight": result.OriginalHeight,
		"bytes":          len(result.Bytes),
	}

	if c.Query("inline") == "1" || c.PostForm("inline") == "1" {
		c.JSON(http.StatusOK, gin.H{
			"message": "업로드 완료",
			"url":     result.DataURI(),
			"image":   meta,
		})
		return
	}

	if strings.TrimSpace(a.uploadDir) == "" {
		respondError(c, http.StatusInternalServerError, "업로드 경로가 설정되지 않았습니다.")
		return
	}
	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "업로드 폴더를 만들 수 없습니다.")
		return
	}

	filename := fmt.Sprintf("%s-%s.jpg", time.Now().Format("20060102"), uuid.New().String())
	if err := os.WriteFile(filepath.Join(a.uploadDir, filename), result.Bytes, 0o644); err != nil {
		respondError(c, http.StatusInternalServerError, "파일을 저장하지 못했습니다.")
		return
	}

	fileURL := strings.TrimRight(a.uploadURL, "/") + "/" + filename
	c.JSON(http.StatusOK, gin.H{
		"message": "업로드 완료",
		"url":     fileURL,
		"image":   meta,
	})
}
