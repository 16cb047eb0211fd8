package handler

import (
	"errors"
	"net/http"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

type projectRequest struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Gallery     []string `json:"gallery"`
	VideoURL    string   `json:"videoUrl"`
	Date        string   `json:"date"`
	Link        string   `json:"link"`
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

func (r projectRequest) toInput() service.ProjectInput {
	return service.ProjectInput{
		Title:       r.Title,
		Category:    r.Category,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Gallery:     r.Gallery,
		VideoURL:    r.VideoURL,
		Date:        r.Date,
		Link:        r.Link,
	}
}

// ListProjects 返回全部项目
func (a *API) ListProjects(c *gin.Context) {
	projects, err := a.projects.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "프로젝트 목록을 불러오지 못했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject 返回单个项目
func (a *API) GetProject(c *gin.Context) {
	project, err := a.projects.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondError(c, http.StatusNotFound, "프로젝트를 찾을 수 없습니다.")
			return
		}
		respondError(c, http.StatusInternalServerError, "프로젝트를 불러오지 못했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// CreateProject 以占位内容新建项目并放在列表最前
func (a *API) CreateProject(c *gin.Context) {
	project, err := a.projects.Create()
	if err != nil {
		a.respondWriteError(c, err, "프로젝트를 추가하지 못했습니다.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "새 프로젝트가 추가되었습니다.",
		"project": project,
	})
}

// UpdateProject 保存项目编辑内容
func (a *API) UpdateProject(c *gin.Context) {
	var payload projectRequest
	if !bindJSON(c, &payload, "프로젝트 정보를 확인하세요.") {
		return
	}

	project, err := a.projects.Update(c.Param("id"), payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			respondError(c, http.StatusNotFound, "프로젝트를 찾을 수 없습니다.")
		case errors.Is(err, service.ErrProjectTitleMissing):
			respondError(c, http.StatusBadRequest, "제목을 입력하세요.")
		case errors.Is(err, service.ErrProjectURLInvalid):
			respondError(c, http.StatusBadRequest, "링크는 http(s) 주소여야 합니다.")
		default:
			a.respondWriteError(c, err, "프로젝트를 저장하지 못했습니다.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "저장되었습니다.",
		"project": project,
	})
}

// DeleteProject 删除项目
func (a *API) DeleteProject(c *gin.Context) {
	if err := a.projects.Delete(c.Param("id")); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondError(c, http.StatusNotFound, "프로젝트를 찾을 수 없습니다.")
			return
		}
		a.respondWriteError(c, err, "프로젝트를 삭제하지 못했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "삭제되었습니다."})
}

// ReorderProjects 按给定的 id 顺序重新排列项目
func (a *API) ReorderProjects(c *gin.Context) {
	var payload reorderRequest
	if !bindJSON(c, &payload, "순서 정보를 확인하세요.") {
		return
	}

	if err := a.projects.Reorder(payload.IDs); err != nil {
		if errors.Is(err, service.ErrProjectOrderInvalid) {
			respondError(c, http.StatusBadRequest, "모든 프로젝트를 한 번씩 포함해야 합니다.")
			return
		}
		a.respondWriteError(c, err, "순서를 저장하지 못했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "순서가 저장되었습니다."})
}
