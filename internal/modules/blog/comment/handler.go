package comment

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/mx-space/blogicum/internal/middleware"
	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/modules/blog/post"
	"github.com/mx-space/blogicum/internal/pkg/response"
	"github.com/mx-space/blogicum/internal/pkg/urls"
	"github.com/mx-space/blogicum/internal/pkg/validate"
	"github.com/mx-space/blogicum/internal/policy"
)

type Handler struct {
	svc   *Service
	posts *post.Service
}

func NewHandler(svc *Service, posts *post.Service) *Handler {
	return &Handler{svc: svc, posts: posts}
}

// RegisterRoutes mounts the comment routes under /posts/:id. Every route
// requires a signed-in actor.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, loginMW gin.HandlerFunc) {
	authed := rg.Group("/posts/:id", loginMW)
	authed.GET("/comment/", h.createForm)
	authed.POST("/comment/", h.create)
	authed.GET("/edit_comment/:comment_id/", h.editForm)
	authed.POST("/edit_comment/:comment_id/", h.update)
	authed.GET("/delete_comment/:comment_id/", h.deleteForm)
	authed.POST("/delete_comment/:comment_id/", h.delete)
}

// createForm GET /posts/:id/comment/
func (h *Handler) createForm(c *gin.Context) {
	p := h.targetPost(c)
	if p == nil {
		return
	}
	response.Form(c, Form{}, gin.H{"post": h.posts.View(p)})
}

// create POST /posts/:id/comment/
func (h *Handler) create(c *gin.Context) {
	p := h.targetPost(c)
	if p == nil {
		return
	}
	f, ok := bind(c, gin.H{"post": h.posts.View(p)})
	if !ok {
		return
	}
	if _, err := h.svc.Create(middleware.CurrentActor(c), p.ID, f); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Redirect(c, urls.PostDetail(p.ID))
}

// editForm GET /posts/:id/edit_comment/:comment_id/
func (h *Handler) editForm(c *gin.Context) {
	cm := h.owned(c)
	if cm == nil {
		return
	}
	response.Form(c, Form{Text: cm.Text}, gin.H{"comment": post.NewCommentView(cm)})
}

// update POST /posts/:id/edit_comment/:comment_id/
func (h *Handler) update(c *gin.Context) {
	cm := h.owned(c)
	if cm == nil {
		return
	}
	f, ok := bind(c, gin.H{"comment": post.NewCommentView(cm)})
	if !ok {
		return
	}
	if err := h.svc.Update(cm, f); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Redirect(c, urls.PostDetail(cm.PostID))
}

// deleteForm GET /posts/:id/delete_comment/:comment_id/
func (h *Handler) deleteForm(c *gin.Context) {
	cm := h.owned(c)
	if cm == nil {
		return
	}
	response.Form(c, Form{Text: cm.Text}, gin.H{"comment": post.NewCommentView(cm)})
}

// delete POST /posts/:id/delete_comment/:comment_id/
func (h *Handler) delete(c *gin.Context) {
	cm := h.owned(c)
	if cm == nil {
		return
	}
	if err := h.svc.Delete(cm); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Redirect(c, urls.PostDetail(cm.PostID))
}

func (h *Handler) targetPost(c *gin.Context) *models.PostModel {
	id, ok := post.ParamID(c, "id")
	if !ok {
		return nil
	}
	p, err := h.posts.Get(id)
	if err != nil {
		response.Error(c, err)
		return nil
	}
	return p
}

// owned resolves the post and comment named in the path. Unknown posts or
// comments and comments of another post are 404; comments written by
// someone else redirect to the post.
func (h *Handler) owned(c *gin.Context) *models.CommentModel {
	p := h.targetPost(c)
	if p == nil {
		return nil
	}
	commentID, ok := post.ParamID(c, "comment_id")
	if !ok {
		return nil
	}
	cm, err := h.svc.Get(commentID)
	if err != nil {
		response.Error(c, err)
		return nil
	}
	if !policy.CanModifyComment(cm, middleware.CurrentActor(c)) {
		response.Redirect(c, urls.PostDetail(p.ID))
		return nil
	}
	if cm.PostID != p.ID {
		response.NotFoundMsg(c, "comment not found")
		return nil
	}
	return cm
}

func bind(c *gin.Context, ctx gin.H) (*Form, bool) {
	var f Form
	err := c.ShouldBindWith(&f, binding.Form)
	if err == nil && strings.TrimSpace(f.Text) == "" {
		response.FormInvalid(c, f, map[string]string{"text": "This field is required."}, ctx)
		return nil, false
	}
	if err != nil {
		response.FormInvalid(c, f, validate.FieldErrors(err), ctx)
		return nil, false
	}
	return &f, true
}
