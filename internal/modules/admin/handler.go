package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/mx-space/blogicum/internal/modules/blog/category"
	"github.com/mx-space/blogicum/internal/modules/blog/post"
	"github.com/mx-space/blogicum/internal/pkg/pagination"
	"github.com/mx-space/blogicum/internal/pkg/response"
	"github.com/mx-space/blogicum/internal/pkg/validate"
)

type Handler struct {
	svc          *Service
	categories   *category.Service
	posts        *post.Service
	itemsPerPage int
}

func NewHandler(svc *Service, categories *category.Service, posts *post.Service, itemsPerPage int) *Handler {
	return &Handler{svc: svc, categories: categories, posts: posts, itemsPerPage: itemsPerPage}
}

// RegisterRoutes mounts the staff API behind staffMW.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, staffMW gin.HandlerFunc) {
	a := rg.Group("/admin", staffMW)

	a.GET("/categories/", h.listCategories)
	a.POST("/categories/", h.createCategory)
	a.PATCH("/categories/:id/", h.updateCategory)
	a.DELETE("/categories/:id/", h.deleteCategory)

	a.GET("/locations/", h.listLocations)
	a.POST("/locations/", h.createLocation)
	a.PATCH("/locations/:id/", h.updateLocation)
	a.DELETE("/locations/:id/", h.deleteLocation)

	a.GET("/posts/", h.listPosts)
	a.PATCH("/posts/:id/", h.moderatePost)

	a.DELETE("/users/:username/", h.deleteUser)
}

func (h *Handler) listCategories(c *gin.Context) {
	cats, err := h.categories.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, cats)
}

func (h *Handler) createCategory(c *gin.Context) {
	var dto category.CreateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.FormInvalid(c, dto, validate.FieldErrors(err), nil)
		return
	}
	cat, err := h.categories.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cat)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := post.ParamID(c, "id")
	if !ok {
		return
	}
	var dto category.UpdateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.FormInvalid(c, dto, validate.FieldErrors(err), nil)
		return
	}
	cat, err := h.categories.Update(id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cat)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := post.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) listLocations(c *gin.Context) {
	locs, err := h.svc.ListLocations()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, locs)
}

func (h *Handler) createLocation(c *gin.Context) {
	var dto CreateLocationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.FormInvalid(c, dto, validate.FieldErrors(err), nil)
		return
	}
	loc, err := h.svc.CreateLocation(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, loc)
}

func (h *Handler) updateLocation(c *gin.Context) {
	id, ok := post.ParamID(c, "id")
	if !ok {
		return
	}
	var dto UpdateLocationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.FormInvalid(c, dto, validate.FieldErrors(err), nil)
		return
	}
	loc, err := h.svc.UpdateLocation(id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, loc)
}

func (h *Handler) deleteLocation(c *gin.Context) {
	id, ok := post.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteLocation(id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// listPosts GET /admin/posts/?q=&category=
func (h *Handler) listPosts(c *gin.Context) {
	q, err := pagination.FromContext(c, h.itemsPerPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	var f PostFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	posts, pag, err := h.svc.ListPosts(q, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, h.posts.Views(posts), pag, gin.H{"q": f.Query, "category": f.Category})
}

// moderatePost PATCH /admin/posts/:id/
func (h *Handler) moderatePost(c *gin.Context) {
	id, ok := post.ParamID(c, "id")
	if !ok {
		return
	}
	var dto ModeratePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.FormInvalid(c, dto, validate.FieldErrors(err), nil)
		return
	}
	if err := h.svc.SetPostPublished(id, *dto.IsPublished); err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.posts.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, h.posts.View(p))
}

// deleteUser DELETE /admin/users/:username/
func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.svc.DeleteUser(c.Param("username")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
