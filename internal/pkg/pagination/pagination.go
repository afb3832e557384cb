package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	lastPage    = "last"
)

// Query holds parsed pagination parameters. Size is fixed by configuration,
// never by the client.
type Query struct {
	Page int
	Size int
	Last bool
}

// FromContext parses ?page=N (or ?page=last). Anything else is NotFound.
func FromContext(c *gin.Context, size int) (Query, error) {
	return Parse(c.Query("page"), size)
}

// Parse validates a raw page value.
func Parse(raw string, size int) (Query, error) {
	if size < 1 {
		size = DefaultSize
	}
	q := Query{Page: DefaultPage, Size: size}

	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return q, nil
	case raw == lastPage:
		q.Last = true
		return q, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return Query{}, errors.NotFoundf("page %q", raw)
	}
	q.Page = page
	return q, nil
}

// Paginate counts base, resolves the requested page and loads it into dest.
// decorate adds selects, preloads and ordering to the page query only, so
// the count stays a plain count(*). An empty first page is allowed; any
// other page beyond the end is NotFound.
func Paginate[T any](base *gorm.DB, q Query, dest *[]T, decorate func(*gorm.DB) *gorm.DB) (response.Pagination, error) {
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return response.Pagination{}, errors.Annotate(err, "count")
	}

	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	if totalPage < 1 {
		totalPage = 1
	}
	page := q.Page
	if q.Last {
		page = totalPage
	}
	if page > totalPage {
		return response.Pagination{}, errors.NotFoundf("page %d", page)
	}

	tx := base
	if decorate != nil {
		tx = decorate(tx)
	}
	offset := (page - 1) * q.Size
	if err := tx.Offset(offset).Limit(q.Size).Find(dest).Error; err != nil {
		return response.Pagination{}, errors.Annotate(err, "load page")
	}

	return response.Pagination{
		Total:       total,
		CurrentPage: page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: page < totalPage,
		HasPrevPage: page > 1,
	}, nil
}
