package response

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

// pagedResponse is the envelope for paginated list responses.
type pagedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
	Context    interface{} `json:"context,omitempty"`
}

// formResponse is the envelope used to (re)display a submission form.
type formResponse struct {
	Form    interface{}       `json:"form"`
	Errors  map[string]string `json:"errors,omitempty"`
	Context interface{}       `json:"context,omitempty"`
}

// OK sends a 200 response. Arrays/slices are wrapped in {data: [...]}.
func OK(c *gin.Context, data interface{}) {
	if data != nil {
		v := reflect.ValueOf(data)
		if v.Kind() == reflect.Slice {
			c.JSON(http.StatusOK, gin.H{"data": data})
			return
		}
	}
	c.JSON(http.StatusOK, data)
}

// Paged sends a paginated response. ctx carries page-level data such as the
// category or profile being listed.
func Paged(c *gin.Context, data interface{}, pagination Pagination, ctx interface{}) {
	c.JSON(http.StatusOK, pagedResponse{
		Data:       data,
		Pagination: pagination,
		Context:    ctx,
	})
}

// Form sends a form page with its current values.
func Form(c *gin.Context, form interface{}, ctx interface{}) {
	c.JSON(http.StatusOK, formResponse{Form: form, Context: ctx})
}

// FormInvalid redisplays a form with field-level messages.
func FormInvalid(c *gin.Context, form interface{}, fieldErrors map[string]string, ctx interface{}) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, formResponse{
		Form:    form,
		Errors:  fieldErrors,
		Context: ctx,
	})
}

// Redirect sends a 302 to location.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": 0, "code": http.StatusBadRequest, "message": message})
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": 0, "code": http.StatusUnauthorized, "message": "authentication required"})
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": 0, "code": http.StatusForbidden, "message": "forbidden"})
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	NotFoundMsg(c, "Not Found")
}

// NotFoundMsg sends a 404 error with a custom message.
func NotFoundMsg(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"ok": 0, "code": http.StatusNotFound, "message": message})
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"ok": 0, "code": http.StatusMethodNotAllowed, "message": "method not allowed"})
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": 0, "code": http.StatusInternalServerError, "message": "internal server error"})
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{"ok": 0, "code": http.StatusConflict, "message": message})
}

// Error maps a service error onto a status code.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errors.NotFound):
		NotFoundMsg(c, err.Error())
	case errors.Is(err, errors.NotValid), errors.Is(err, errors.BadRequest):
		BadRequest(c, err.Error())
	case errors.Is(err, errors.AlreadyExists):
		Conflict(c, err.Error())
	case errors.Is(err, errors.Forbidden):
		Forbidden(c)
	case errors.Is(err, errors.Unauthorized):
		Unauthorized(c)
	default:
		InternalError(c, err)
	}
}
