package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/middleware"
	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/modules/blog/post"
	"github.com/mx-space/blogicum/internal/pkg/response"
	"github.com/mx-space/blogicum/internal/pkg/urls"
	"github.com/mx-space/blogicum/internal/pkg/validate"
)

type Handler struct {
	svc          *Service
	loginURL     string
	secureCookie bool
}

func NewHandler(svc *Service, loginURL string, secureCookie bool) *Handler {
	return &Handler{svc: svc, loginURL: loginURL, secureCookie: secureCookie}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, loginMW gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.GET("/registration/", h.registrationForm)
	a.POST("/registration/", h.register)
	a.GET("/login/", h.loginForm)
	a.POST("/login/", h.login)
	a.POST("/logout/", loginMW, h.logout)
}

type loginResponse struct {
	Token string           `json:"token"`
	User  *post.AuthorView `json:"user"`
	Next  string           `json:"next"`
}

func (h *Handler) registrationForm(c *gin.Context) {
	response.Form(c, RegisterDTO{}, nil)
}

// register POST /auth/registration/
func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBind(&dto); err != nil {
		dto.Password1, dto.Password2 = "", ""
		response.FormInvalid(c, dto, validate.FieldErrors(err), nil)
		return
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		dto.Password1, dto.Password2 = "", ""
		if errors.Is(err, errors.AlreadyExists) {
			response.FormInvalid(c, dto, map[string]string{"username": "A user with that username already exists."}, nil)
			return
		}
		response.InternalError(c, err)
		return
	}
	if wantsJSON(c) {
		response.Created(c, post.NewAuthorView(u))
		return
	}
	response.Redirect(c, h.loginURL)
}

func (h *Handler) loginForm(c *gin.Context) {
	response.Form(c, LoginDTO{Next: c.Query("next")}, nil)
}

// login POST /auth/login/
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBind(&dto); err != nil {
		dto.Password = ""
		response.FormInvalid(c, dto, validate.FieldErrors(err), nil)
		return
	}
	if dto.Next == "" {
		dto.Next = c.Query("next")
	}

	token, u, err := h.svc.Login(dto.Username, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		dto.Password = ""
		if errors.Is(err, errors.Unauthorized) {
			response.FormInvalid(c, dto, map[string]string{
				"__all__": "Please enter a correct username and password. Note that both fields may be case-sensitive.",
			}, nil)
			return
		}
		response.InternalError(c, err)
		return
	}

	next := urls.SafeNext(dto.Next, urls.Profile(u.Username))
	h.setToken(c, token, h.svc.sessionTTL)
	if wantsJSON(c) {
		response.OK(c, loginResponse{Token: token, User: post.NewAuthorView(u), Next: next})
		return
	}
	response.Redirect(c, next)
}

// logout POST /auth/logout/
func (h *Handler) logout(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	if err := h.svc.Logout(actorID(actor), middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	h.setToken(c, "", -time.Second)
	if wantsJSON(c) {
		response.NoContent(c)
		return
	}
	response.Redirect(c, urls.Index())
}

func (h *Handler) setToken(c *gin.Context, token string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.secureCookie, true)
}

func actorID(u *models.UserModel) uint {
	if u == nil {
		return 0
	}
	return u.ID
}

// wantsJSON reports whether the client asked for a JSON body instead of the
// browser redirect.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}
