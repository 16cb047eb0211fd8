package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxSnapshotBytes 限制导入文件大小，测试中可调小。
var maxSnapshotBytes int64 = 64 << 20

// ExportSnapshot 以附件形式下载完整状态
func (a *API) ExportSnapshot(c *gin.Context) {
	snap, err := a.snapshots.Export()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "내보내기에 실패했습니다.")
		return
	}

	filename := fmt.Sprintf("folio-%s.json", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.IndentedJSON(http.StatusOK, snap)
}

// ImportSnapshot 用上传的快照替换当前状态，支持 JSON 请求体或 file 表单字段
func (a *API) ImportSnapshot(c *gin.Context) {
	var reader io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			respondError(c, http.StatusBadRequest, "백업 파일을 선택하세요.")
			return
		}
		src, err := file.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "파일을 읽을 수 없습니다.")
			return
		}
		defer src.Close()
		reader = src
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxSnapshotBytes+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "파일을 읽을 수 없습니다.")
		return
	}
	if int64(len(data)) > maxSnapshotBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "백업 파일이 너무 큽니다.")
		return
	}

	snap, err := service.ParseSnapshot(data)
	if err != nil {
		respondError(c, http.StatusBadRequest, "백업 파일 형식이 올바르지 않습니다.")
		return
	}

	if err := a.snapshots.Import(snap); err != nil {
		switch {
		case errors.Is(err, service.ErrSnapshotInvalid), errors.Is(err, service.ErrProjectDuplicateID):
			respondError(c, http.StatusBadRequest, "백업 파일 형식이 올바르지 않습니다.")
		default:
			a.respondWriteError(c, err, "가져오기에 실패했습니다.")
		}
		return
	}

	a.logger.Info("snapshot imported", zap.Int("projects", len(snap.Projects)), zap.Int("notices", len(snap.Notices)))
	c.JSON(http.StatusOK, gin.H{
		"message":  "가져오기가 완료되었습니다.",
		"projects": len(snap.Projects),
		"notices":  len(snap.Notices),
	})
}

// ResetSite 恢复内置内容，保留管理员账号
func (a *API) ResetSite(c *gin.Context) {
	if err := a.snapshots.Reset(); err != nil {
		a.respondWriteError(c, err, "초기화에 실패했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "기본 상태로 복원되었습니다."})
}
