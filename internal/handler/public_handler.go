package handler

import (
	"errors"
	"net/http"

	"github.com/folio/internal/service"
	"github.com/folio/internal/view"
	"github.com/gin-gonic/gin"
)

// ShowHome renders the hero section and the project grid.
func (a *API) ShowHome(c *gin.Context) {
	projects, err := a.projects.List()
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "home.html", gin.H{
			"error": "작품 목록을 불러오지 못했습니다.",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"projects": projects,
	})
}

// ShowProject renders a single project, or the not-found page when the id is unknown.
func (a *API) ShowProject(c *gin.Context) {
	project, err := a.projects.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			a.renderNotFound(c, "프로젝트를 찾을 수 없습니다.")
			return
		}
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "not_found.html", gin.H{
			"title":   "오류",
			"message": "프로젝트를 불러오지 못했습니다.",
		})
		return
	}

	var videoURL string
	if embed, ok := view.ParseVideoEmbed(project.VideoURL); ok {
		videoURL = embed.EmbedURL
	}

	a.renderHTML(c, http.StatusOK, "project_detail.html", gin.H{
		"title":    project.Title,
		"project":  project,
		"videoURL": videoURL,
	})
}

// ShowNotFound renders the not-found page for unmatched routes.
func (a *API) ShowNotFound(c *gin.Context) {
	a.renderNotFound(c, "페이지를 찾을 수 없습니다.")
}

func (a *API) renderNotFound(c *gin.Context, message string) {
	a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{
		"title":   "Not Found",
		"message": message,
	})
}

// ShowBiography renders the artist biography.
func (a *API) ShowBiography(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "biography.html", gin.H{
		"title": "Biography",
	})
}

// ShowContact renders the contact channels.
func (a *API) ShowContact(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "contact.html", gin.H{
		"title": "Contact",
	})
}

// ShowNotices lists published studio notices.
func (a *API) ShowNotices(c *gin.Context) {
	notices, err := a.notices.List(false)
	if err != nil {
		c.Error(err)
		notices = nil
	}

	a.renderHTML(c, http.StatusOK, "notices.html", gin.H{
		"title":   "Notices",
		"notices": notices,
	})
}
