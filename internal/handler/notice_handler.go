package handler

import (
	"errors"
	"net/http"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

type noticeRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Date      string `json:"date"`
	Published *bool  `json:"published"`
}

func (r noticeRequest) toInput() service.NoticeInput {
	return service.NoticeInput{
		Title:     r.Title,
		Content:   r.Content,
		Date:      r.Date,
		Published: r.Published,
	}
}

func noticePayload(id uint, title, content, date string, published bool) gin.H {
	return gin.H{
		"id":        id,
		"title":     title,
		"content":   content,
		"date":      date,
		"published": published,
	}
}

// ListNotices 返回全部公告（包括未发布）
func (a *API) ListNotices(c *gin.Context) {
	notices, err := a.notices.List(true)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "공지사항을 불러오지 못했습니다.")
		return
	}

	items := make([]gin.H, 0, len(notices))
	for _, notice := range notices {
		items = append(items, noticePayload(notice.ID, notice.Title, notice.Content, notice.Date, notice.Published))
	}
	c.JSON(http.StatusOK, gin.H{"notices": items})
}

// CreateNotice 新建公告
func (a *API) CreateNotice(c *gin.Context) {
	var payload noticeRequest
	if !bindJSON(c, &payload, "공지 내용을 확인하세요.") {
		return
	}

	notice, err := a.notices.Create(payload.toInput())
	if err != nil {
		if errors.Is(err, service.ErrNoticeInvalidInput) {
			respondError(c, http.StatusBadRequest, "제목과 내용을 입력하세요.")
			return
		}
		a.respondWriteError(c, err, "공지를 저장하지 못했습니다.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "공지가 등록되었습니다.",
		"notice":  noticePayload(notice.ID, notice.Title, notice.Content, notice.Date, notice.Published),
	})
}

// UpdateNotice 更新公告
func (a *API) UpdateNotice(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "잘못된 공지 ID 입니다.")
		return
	}

	var payload noticeRequest
	if !bindJSON(c, &payload, "공지 내용을 확인하세요.") {
		return
	}

	notice, err := a.notices.Update(id, payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoticeNotFound):
			respondError(c, http.StatusNotFound, "공지를 찾을 수 없습니다.")
		case errors.Is(err, service.ErrNoticeInvalidInput):
			respondError(c, http.StatusBadRequest, "제목과 내용을 입력하세요.")
		default:
			a.respondWriteError(c, err, "공지를 저장하지 못했습니다.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "공지가 수정되었습니다.",
		"notice":  noticePayload(notice.ID, notice.Title, notice.Content, notice.Date, notice.Published),
	})
}

// DeleteNotice 删除公告
func (a *API) DeleteNotice(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "잘못된 공지 ID 입니다.")
		return
	}

	if err := a.notices.Delete(id); err != nil {
		if errors.Is(err, service.ErrNoticeNotFound) {
			respondError(c, http.StatusNotFound, "공지를 찾을 수 없습니다.")
			return
		}
		a.respondWriteError(c, err, "공지를 삭제하지 못했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "공지가 삭제되었습니다."})
}
