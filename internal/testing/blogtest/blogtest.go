// Package blogtest builds a complete blog router over an in-memory sqlite
// database for handler tests.
package blogtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/clock/testclock"
	jc "github.com/juju/testing/checkers"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	gc "gopkg.in/check.v1"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mx-space/blogicum/internal/app"
	"github.com/mx-space/blogicum/internal/config"
	"github.com/mx-space/blogicum/internal/database"
	"github.com/mx-space/blogicum/internal/models"
	sessionpkg "github.com/mx-space/blogicum/internal/pkg/session"
	"github.com/mx-space/blogicum/internal/pkg/storage"
)

// Password is the plain password of every user made by Env.User.
const Password = "correct-horse-battery"

// Epoch is the initial time of Env.Clock.
var Epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var dbSeq int64

// OpenDB opens and migrates a private in-memory sqlite database.
func OpenDB(c *gc.C) *gorm.DB {
	n := atomic.AddInt64(&dbSeq, 1)
	dsn := fmt.Sprintf("file:blogtest_%d?mode=memory&cache=shared&_foreign_keys=on", n)
	db, err := database.Open(config.DriverSQLite, dsn, logger.Silent)
	c.Assert(err, jc.ErrorIsNil)

	sqlDB, err := db.DB()
	c.Assert(err, jc.ErrorIsNil)
	sqlDB.SetMaxOpenConns(1)

	c.Assert(database.Migrate(db), jc.ErrorIsNil)
	return db
}

// Env is a router wired to a fresh database and a test clock.
type Env struct {
	DB       *gorm.DB
	Clock    *testclock.Clock
	Config   *config.AppConfig
	Router   *gin.Engine
	MediaDir string

	seq int
}

// New builds an Env. extraYAML is appended to the base test config.
func New(c *gc.C, extraYAML string) *Env {
	gin.SetMode(gin.TestMode)

	media := c.MkDir()
	yaml := fmt.Sprintf("database:\n  driver: sqlite\n  path: unused\npaths:\n  media: %q\n  logs: %q\n", media, c.MkDir())
	cfg, err := config.Parse([]byte(yaml + extraYAML))
	c.Assert(err, jc.ErrorIsNil)

	env := &Env{
		DB:       OpenDB(c),
		Clock:    testclock.NewClock(Epoch),
		Config:   cfg,
		MediaDir: media,
	}
	env.Router = app.NewRouter(app.Deps{
		Config: cfg,
		DB:     env.DB,
		Clock:  env.Clock,
		Store:  storage.NewLocal(media, "/media"),
		Logger: zap.NewNop(),
	})
	return env
}

// User creates a user with Password.
func (e *Env) User(c *gc.C, username string) *models.UserModel {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	c.Assert(err, jc.ErrorIsNil)
	u := &models.UserModel{Username: username, Email: username + "@example.com", Password: string(hash)}
	c.Assert(e.DB.Create(u).Error, jc.ErrorIsNil)
	return u
}

func (e *Env) Category(c *gc.C, slug string, published bool) *models.CategoryModel {
	cat := &models.CategoryModel{Title: strings.ToUpper(slug), Description: "about " + slug, Slug: slug}
	cat.IsPublished = published
	c.Assert(e.DB.Create(cat).Error, jc.ErrorIsNil)
	return cat
}

func (e *Env) Location(c *gc.C, name string, published bool) *models.LocationModel {
	loc := &models.LocationModel{Name: name}
	loc.IsPublished = published
	c.Assert(e.DB.Create(loc).Error, jc.ErrorIsNil)
	return loc
}

// PostOpts tweaks Env.Post. The zero value is a published post dated an
// hour before the clock.
type PostOpts struct {
	Title       string
	Category    *models.CategoryModel
	Location    *models.LocationModel
	Unpublished bool
	PubDate     time.Time
}

func (e *Env) Post(c *gc.C, author *models.UserModel, opts PostOpts) *models.PostModel {
	e.seq++
	p := &models.PostModel{
		Title:    opts.Title,
		Text:     "text of post",
		PubDate:  opts.PubDate,
		AuthorID: author.ID,
	}
	if p.Title == "" {
		p.Title = fmt.Sprintf("post %d", e.seq)
	}
	if p.PubDate.IsZero() {
		p.PubDate = e.Clock.Now().Add(-time.Hour).Add(time.Duration(e.seq) * time.Minute)
	}
	p.PubDate = p.PubDate.UTC()
	p.IsPublished = !opts.Unpublished
	if opts.Category != nil {
		p.CategoryID = &opts.Category.ID
	}
	if opts.Location != nil {
		p.LocationID = &opts.Location.ID
	}
	c.Assert(e.DB.Create(p).Error, jc.ErrorIsNil)
	return p
}

// Comment adds a comment. Each one is created a second after the last.
func (e *Env) Comment(c *gc.C, author *models.UserModel, p *models.PostModel, text string) *models.CommentModel {
	e.seq++
	cm := &models.CommentModel{Text: text, AuthorID: author.ID, PostID: p.ID}
	cm.CreatedAt = Epoch.Add(time.Duration(e.seq) * time.Second)
	c.Assert(e.DB.Create(cm).Error, jc.ErrorIsNil)
	return cm
}

// Token opens a session for u.
func (e *Env) Token(c *gc.C, u *models.UserModel) string {
	token, _, err := sessionpkg.Issue(e.DB, u.ID, "127.0.0.1", "blogtest", time.Hour)
	c.Assert(err, jc.ErrorIsNil)
	return token
}

// Do sends a request as u (anonymous when nil). A non-nil form is sent
// url-encoded.
func (e *Env) Do(c *gc.C, method, path string, form url.Values, u *models.UserModel) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+e.Token(c, u))
	}
	return e.Serve(req)
}

// Serve runs req through the router.
func (e *Env) Serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// JSON sends a JSON body as u.
func (e *Env) JSON(c *gc.C, method, path string, payload interface{}, u *models.UserModel) *httptest.ResponseRecorder {
	raw, err := json.Marshal(payload)
	c.Assert(err, jc.ErrorIsNil)
	req := httptest.NewRequest(method, path, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+e.Token(c, u))
	}
	return e.Serve(req)
}

// Decode unmarshals a response body into out.
func Decode(c *gc.C, rec *httptest.ResponseRecorder, out interface{}) {
	c.Assert(json.Unmarshal(rec.Body.Bytes(), out), jc.ErrorIsNil, gc.Commentf("body: %s", rec.Body.String()))
}

// Listing is the decoded shape of a paginated post listing.
type Listing struct {
	Data []struct {
		ID           uint   `json:"id"`
		Title        string `json:"title"`
		CommentCount int64  `json:"comment_count"`
	} `json:"data"`
	Pagination struct {
		Total       int64 `json:"total"`
		CurrentPage int   `json:"current_page"`
		TotalPage   int   `json:"total_page"`
		HasNextPage bool  `json:"has_next_page"`
	} `json:"pagination"`
	Context map[string]json.RawMessage `json:"context"`
}

// IDs lists the post ids in listing order.
func (l *Listing) IDs() []uint {
	ids := make([]uint, len(l.Data))
	for i, d := range l.Data {
		ids[i] = d.ID
	}
	return ids
}

// ContextValue decodes one key of the listing context into out.
func (l *Listing) ContextValue(c *gc.C, key string, out interface{}) {
	raw, ok := l.Context[key]
	c.Assert(ok, jc.IsTrue, gc.Commentf("context key %q", key))
	c.Assert(json.Unmarshal(raw, out), jc.ErrorIsNil)
}

// GetListing fetches and decodes a listing, asserting a 200.
func (e *Env) GetListing(c *gc.C, path string, u *models.UserModel) *Listing {
	rec := e.Do(c, http.MethodGet, path, nil, u)
	c.Assert(rec.Code, gc.Equals, http.StatusOK, gc.Commentf("GET %s: %s", path, rec.Body.String()))
	var l Listing
	Decode(c, rec, &l)
	return &l
}
