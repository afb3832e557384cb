package app

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/juju/clock"
	"github.com/mx-space/blogicum/internal/config"
	"github.com/mx-space/blogicum/internal/database"
	"github.com/mx-space/blogicum/internal/middleware"
	"github.com/mx-space/blogicum/internal/modules/admin"
	"github.com/mx-space/blogicum/internal/modules/auth"
	"github.com/mx-space/blogicum/internal/modules/blog/category"
	"github.com/mx-space/blogicum/internal/modules/blog/comment"
	"github.com/mx-space/blogicum/internal/modules/blog/post"
	"github.com/mx-space/blogicum/internal/modules/blog/profile"
	"github.com/mx-space/blogicum/internal/pkg/response"
	"github.com/mx-space/blogicum/internal/pkg/storage"
	"github.com/mx-space/blogicum/internal/pkg/validate"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the router is built from. Redis is optional.
type Deps struct {
	Config *config.AppConfig
	DB     *gorm.DB
	Redis  *redis.Client
	Clock  clock.Clock
	Store  storage.Store
	Logger *zap.Logger
}

// NewRouter builds the HTTP router with every blog route mounted.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	validate.Register()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(d.Logger))
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(middleware.OptionalAuth(d.DB))
	if d.Redis != nil {
		r.Use(middleware.RateLimit(d.Redis, cfg.RateLimit.Max, cfg.RateLimit.Window, d.Logger))
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.GET("/healthz", func(c *gin.Context) {
		if err := database.Ping(d.DB); err != nil {
			d.Logger.Error("health check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"ok": 0, "database": "down"})
			return
		}
		response.OK(c, gin.H{"ok": 1, "database": "up"})
	})

	if local, ok := d.Store.(*storage.Local); ok {
		r.Static("/media", local.Dir())
	}

	loginMW := middleware.RequireLogin(cfg.Blog.LoginURL)
	perPage := cfg.Blog.ItemsPerPage
	images := storage.NewImages(d.Store, cfg.Storage.MaxImageMB)
	root := r.Group("")

	postSvc := post.NewService(d.DB, d.Clock, images, d.Logger)
	post.NewHandler(postSvc, post.Options{
		ItemsPerPage:            perPage,
		Location:                cfg.Location,
		EnforceDetailVisibility: cfg.Blog.EnforceDetailVisibility,
	}).RegisterRoutes(root, loginMW)

	categorySvc := category.NewService(d.DB, d.Logger)
	category.NewHandler(categorySvc, postSvc, perPage).RegisterRoutes(root)

	profile.NewHandler(profile.NewService(d.DB, d.Logger), postSvc, perPage).RegisterRoutes(root, loginMW)
	comment.NewHandler(comment.NewService(d.DB, d.Logger), postSvc).RegisterRoutes(root, loginMW)

	auth.NewHandler(auth.NewService(d.DB, cfg.SessionTTL, d.Logger), cfg.Blog.LoginURL, !cfg.IsDev()).
		RegisterRoutes(root, loginMW)

	admin.NewHandler(admin.NewService(d.DB, d.Logger), categorySvc, postSvc, perPage).
		RegisterRoutes(root, middleware.RequireStaff())

	return r
}
