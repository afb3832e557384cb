package post

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/middleware"
	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/pkg/pagination"
	"github.com/mx-space/blogicum/internal/pkg/response"
	"github.com/mx-space/blogicum/internal/pkg/urls"
	"github.com/mx-space/blogicum/internal/pkg/validate"
	"github.com/mx-space/blogicum/internal/policy"
)

// Options tunes the post handlers.
type Options struct {
	ItemsPerPage int
	Location     *time.Location
	// EnforceDetailVisibility hides non-public posts from the detail view
	// for everyone but their author.
	EnforceDetailVisibility bool
}

// Handler handles post HTTP requests.
type Handler struct {
	svc  *Service
	opts Options
}

func NewHandler(svc *Service, opts Options) *Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Handler{svc: svc, opts: opts}
}

// RegisterRoutes mounts the index and post routes. loginMW guards every
// mutating route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, loginMW gin.HandlerFunc) {
	rg.GET("/", h.index)

	posts := rg.Group("/posts")
	posts.GET("/:id/", h.detail)

	authed := posts.Group("", loginMW)
	authed.GET("/create/", h.createForm)
	authed.POST("/create/", h.create)
	authed.GET("/:id/edit/", h.editForm)
	authed.POST("/:id/edit/", h.update)
	authed.GET("/:id/delete/", h.deleteForm)
	authed.POST("/:id/delete/", h.delete)
}

// ParamID reads a numeric path parameter. Anything else is answered with 404.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.NotFound(c)
		return 0, false
	}
	return uint(id), true
}

// index GET /
func (h *Handler) index(c *gin.Context) {
	q, err := pagination.FromContext(c, h.opts.ItemsPerPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	posts, pag, err := h.svc.Index(q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, h.svc.Views(posts), pag, nil)
}

// detail GET /posts/:id/
func (h *Handler) detail(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.opts.EnforceDetailVisibility && !policy.IsPostVisible(p, middleware.CurrentActor(c), h.svc.Now()) {
		response.NotFoundMsg(c, "post not found")
		return
	}

	comments, err := h.svc.Comments(p.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]CommentView, len(comments))
	for i := range comments {
		items[i] = NewCommentView(&comments[i])
	}
	response.OK(c, gin.H{
		"post":     h.svc.View(p),
		"comments": items,
		"form":     gin.H{"text": ""},
	})
}

// createForm GET /posts/create/
func (h *Handler) createForm(c *gin.Context) {
	choices, err := h.svc.Choices()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Form(c, EmptyForm(h.svc.Now(), h.opts.Location), choices)
}

// create POST /posts/create/
func (h *Handler) create(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	var f Form
	in, fieldErrors, err := h.bind(c, &f)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if fieldErrors != nil {
		h.invalid(c, &f, fieldErrors, nil)
		return
	}

	if _, err := h.svc.Create(c.Request.Context(), actor, in); err != nil {
		if errors.Is(err, errors.NotValid) {
			h.invalid(c, &f, map[string]string{"image": err.Error()}, nil)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Redirect(c, urls.Profile(actor.Username))
}

// editForm GET /posts/:id/edit/
func (h *Handler) editForm(c *gin.Context) {
	p := h.owned(c)
	if p == nil {
		return
	}
	choices, err := h.svc.Choices()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	choices["post"] = h.svc.View(p)
	response.Form(c, FormFor(p, h.opts.Location, h.svc.ImageURL(p.Image)), choices)
}

// update POST /posts/:id/edit/
func (h *Handler) update(c *gin.Context) {
	p := h.owned(c)
	if p == nil {
		return
	}

	var f Form
	in, fieldErrors, err := h.bind(c, &f)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if fieldErrors != nil {
		h.invalid(c, &f, fieldErrors, p)
		return
	}

	if err := h.svc.Update(c.Request.Context(), p, in); err != nil {
		if errors.Is(err, errors.NotValid) {
			h.invalid(c, &f, map[string]string{"image": err.Error()}, p)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Redirect(c, urls.Profile(middleware.CurrentActor(c).Username))
}

// deleteForm GET /posts/:id/delete/
func (h *Handler) deleteForm(c *gin.Context) {
	p := h.owned(c)
	if p == nil {
		return
	}
	response.Form(c, FormFor(p, h.opts.Location, h.svc.ImageURL(p.Image)), gin.H{"post": h.svc.View(p)})
}

// delete POST /posts/:id/delete/
func (h *Handler) delete(c *gin.Context) {
	p := h.owned(c)
	if p == nil {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Redirect(c, urls.Profile(middleware.CurrentActor(c).Username))
}

// owned loads the post named in the path and checks the actor wrote it.
// Otherwise it answers the request and returns nil: 404 for unknown posts,
// a redirect to the post for everyone else's.
func (h *Handler) owned(c *gin.Context) *models.PostModel {
	id, ok := ParamID(c, "id")
	if !ok {
		return nil
	}
	p, err := h.svc.Get(id)
	if err != nil {
		response.Error(c, err)
		return nil
	}
	if !policy.CanModifyPost(p, middleware.CurrentActor(c)) {
		response.Redirect(c, urls.PostDetail(p.ID))
		return nil
	}
	return p
}

// bind parses the submitted form. Field errors from binding and from
// cleaning are reported together.
func (h *Handler) bind(c *gin.Context, f *Form) (*Input, map[string]string, error) {
	fieldErrors := validate.FieldErrors(c.ShouldBindWith(f, binding.Form))

	in, cleanErrors, err := f.Clean(h.svc.DB(), h.opts.Location)
	if err != nil {
		return nil, nil, err
	}
	for field, msg := range cleanErrors {
		if fieldErrors == nil {
			fieldErrors = map[string]string{}
		}
		if _, ok := fieldErrors[field]; !ok {
			fieldErrors[field] = msg
		}
	}
	if len(fieldErrors) > 0 {
		return nil, fieldErrors, nil
	}

	if fh, err := c.FormFile("image"); err == nil {
		in.Image = fh
	}
	return in, nil, nil
}

func (h *Handler) invalid(c *gin.Context, f *Form, fieldErrors map[string]string, p *models.PostModel) {
	choices, err := h.svc.Choices()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p != nil {
		choices["post"] = h.svc.View(p)
	}
	response.FormInvalid(c, f, fieldErrors, choices)
}
