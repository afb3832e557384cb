package category

import (
	"github.com/gin-gonic/gin"
	"github.com/mx-space/blogicum/internal/modules/blog/post"
	"github.com/mx-space/blogicum/internal/pkg/pagination"
	"github.com/mx-space/blogicum/internal/pkg/response"
)

type Handler struct {
	svc          *Service
	posts        *post.Service
	itemsPerPage int
}

func NewHandler(svc *Service, posts *post.Service, itemsPerPage int) *Handler {
	return &Handler{svc: svc, posts: posts, itemsPerPage: itemsPerPage}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/category/:slug/", h.list)
}

// list GET /category/:slug/
func (h *Handler) list(c *gin.Context) {
	cat, err := h.svc.GetBrowsable(c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := pagination.FromContext(c, h.itemsPerPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	posts, pag, err := h.posts.ByCategory(cat.ID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, h.posts.Views(posts), pag, gin.H{"category": cat})
}
