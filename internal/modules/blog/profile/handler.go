package profile

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/middleware"
	"github.com/mx-space/blogicum/internal/modules/blog/post"
	"github.com/mx-space/blogicum/internal/pkg/pagination"
	"github.com/mx-space/blogicum/internal/pkg/response"
	"github.com/mx-space/blogicum/internal/pkg/urls"
	"github.com/mx-space/blogicum/internal/pkg/validate"
)

type Handler struct {
	svc          *Service
	posts        *post.Service
	itemsPerPage int
}

func NewHandler(svc *Service, posts *post.Service, itemsPerPage int) *Handler {
	return &Handler{svc: svc, posts: posts, itemsPerPage: itemsPerPage}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, loginMW gin.HandlerFunc) {
	rg.GET("/profile/:username/", h.list)

	authed := rg.Group("/edit_profile", loginMW)
	authed.GET("/", h.editForm)
	authed.POST("/", h.update)
}

// list GET /profile/:username/
func (h *Handler) list(c *gin.Context) {
	author, err := h.svc.GetByUsername(c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := pagination.FromContext(c, h.itemsPerPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	viewer := middleware.CurrentActor(c)
	posts, pag, err := h.posts.ByAuthor(author, viewer, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	self := viewer != nil && viewer.ID == author.ID
	ctx := gin.H{
		"profile": NewView(author, self, pag.Total),
		"user":    post.NewAuthorView(viewer),
	}
	response.Paged(c, h.posts.Views(posts), pag, ctx)
}

// editForm GET /edit_profile/
func (h *Handler) editForm(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	response.Form(c, FormFor(actor), nil)
}

// update POST /edit_profile/
func (h *Handler) update(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	var f Form
	if err := c.ShouldBindWith(&f, binding.Form); err != nil {
		response.FormInvalid(c, f, validate.FieldErrors(err), nil)
		return
	}
	if err := h.svc.Update(actor, &f); err != nil {
		if errors.Is(err, errors.AlreadyExists) {
			response.FormInvalid(c, f, map[string]string{"username": "A user with that username already exists."}, nil)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Redirect(c, urls.Profile(actor.Username))
}
