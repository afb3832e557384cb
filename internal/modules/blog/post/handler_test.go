package post_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/testing/blogtest"
)

func Test(t *testing.T) { gc.TestingT(t) }

type postSuite struct {
	env   *blogtest.Env
	alice *models.UserModel
	bob   *models.UserModel
	news  *models.CategoryModel
}

var _ = gc.Suite(&postSuite{})

func (s *postSuite) SetUpTest(c *gc.C) {
	s.env = blogtest.New(c, "blog:\n  items_per_page: 3\n")
	s.alice = s.env.User(c, "alice")
	s.bob = s.env.User(c, "bob")
	s.news = s.env.Category(c, "news", true)
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

type detailBody struct {
	Post struct {
		ID           uint   `json:"id"`
		Title        string `json:"title"`
		TextHTML     string `json:"text_html"`
		CommentCount int64  `json:"comment_count"`
		Image    string `json:"image"`
		Author   struct {
			Username string `json:"username"`
		} `json:"author"`
	} `json:"post"`
	Comments []struct {
		ID     uint   `json:"id"`
		Text   string `json:"text"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
	} `json:"comments"`
	Form map[string]string `json:"form"`
}

type formBody struct {
	Form   map[string]interface{} `json:"form"`
	Errors map[string]string      `json:"errors"`
}

func (s *postSuite) TestIndexShowsOnlyPublicPosts(c *gc.C) {
	hidden := s.env.Category(c, "hidden", false)
	public := s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news})
	s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news, Unpublished: true})
	s.env.Post(c, s.alice, blogtest.PostOpts{Category: hidden})
	s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news, PubDate: blogtest.Epoch.Add(time.Hour)})
	s.env.Post(c, s.alice, blogtest.PostOpts{})

	l := s.env.GetListing(c, "/", nil)
	c.Check(l.IDs(), jc.DeepEquals, []uint{public.ID})

	// the author gets no special treatment on the index
	l = s.env.GetListing(c, "/", s.alice)
	c.Check(l.IDs(), jc.DeepEquals, []uint{public.ID})
}

func (s *postSuite) TestIndexFuturePostAppearsOnceDue(c *gc.C) {
	future := s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news, PubDate: blogtest.Epoch.Add(time.Hour)})
	c.Check(s.env.GetListing(c, "/", nil).IDs(), gc.HasLen, 0)

	s.env.Clock.Advance(2 * time.Hour)
	c.Check(s.env.GetListing(c, "/", nil).IDs(), jc.DeepEquals, []uint{future.ID})
}

func (s *postSuite) TestIndexOrderAndCommentCount(c *gc.C) {
	older := s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news, PubDate: blogtest.Epoch.Add(-48 * time.Hour)})
	newer := s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news, PubDate: blogtest.Epoch.Add(-time.Hour)})
	s.env.Comment(c, s.bob, older, "one")
	s.env.Comment(c, s.bob, older, "two")
	s.env.Comment(c, s.alice, newer, "three")

	l := s.env.GetListing(c, "/", nil)
	c.Assert(l.IDs(), jc.DeepEquals, []uint{newer.ID, older.ID})
	c.Check(l.Data[0].CommentCount, gc.Equals, int64(1))
	c.Check(l.Data[1].CommentCount, gc.Equals, int64(2))
}

func (s *postSuite) TestIndexPagination(c *gc.C) {
	for i := 0; i < 7; i++ {
		s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news})
	}

	l := s.env.GetListing(c, "/", nil)
	c.Check(l.Data, gc.HasLen, 3)
	c.Check(l.Pagination.Total, gc.Equals, int64(7))
	c.Check(l.Pagination.TotalPage, gc.Equals, 3)
	c.Check(l.Pagination.HasNextPage, jc.IsTrue)

	l = s.env.GetListing(c, "/?page=last", nil)
	c.Check(l.Data, gc.HasLen, 1)
	c.Check(l.Pagination.CurrentPage, gc.Equals, 3)

	for _, page := range []string{"4", "0", "abc"} {
		rec := s.env.Do(c, http.MethodGet, "/?page="+page, nil, nil)
		c.Check(rec.Code, gc.Equals, http.StatusNotFound, gc.Commentf("page %s", page))
	}
}

func (s *postSuite) TestIndexEmpty(c *gc.C) {
	l := s.env.GetListing(c, "/", nil)
	c.Check(l.Data, gc.HasLen, 0)
	c.Check(l.Pagination.CurrentPage, gc.Equals, 1)
}

func (s *postSuite) TestDetail(c *gc.C) {
	p := s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news})
	s.env.Comment(c, s.bob, p, "first")
	s.env.Comment(c, s.alice, p, "second")

	rec := s.env.Do(c, http.MethodGet, "/posts/"+id(p.ID)+"/", nil, nil)
	c.Assert(rec.Code, gc.Equals, http.StatusOK)
	var body detailBody
	blogtest.Decode(c, rec, &body)
	c.Check(body.Post.ID, gc.Equals, p.ID)
	c.Check(body.Post.Author.Username, gc.Equals, "alice")
	c.Check(body.Post.TextHTML, gc.Equals, "<p>text of post</p>\n")
	c.Check(body.Post.CommentCount, gc.Equals, int64(2))
	c.Assert(body.Comments, gc.HasLen, 2)
	c.Check(body.Comments[0].Text, gc.Equals, "first")
	c.Check(body.Comments[0].Author.Username, gc.Equals, "bob")
	c.Check(body.Comments[1].Text, gc.Equals, "second")
	c.Check(body.Form, jc.DeepEquals, map[string]string{"text": ""})
}

func (s *postSuite) TestDetailNotFound(c *gc.C) {
	for _, path := range []string{"/posts/999/", "/posts/abc/"} {
		rec := s.env.Do(c, http.MethodGet, path, nil, nil)
		c.Check(rec.Code, gc.Equals, http.StatusNotFound, gc.Commentf("GET %s", path))
	}
}

func (s *postSuite) TestDetailOfHiddenPostIsReachableByDefault(c *gc.C) {
	p := s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news, Unpublished: true})
	rec := s.env.Do(c, http.MethodGet, "/posts/"+id(p.ID)+"/", nil, s.bob)
	c.Check(rec.Code, gc.Equals, http.StatusOK)
}

func (s *postSuite) TestDetailVisibilityEnforced(c *gc.C) {
	env := blogtest.New(c, "blog:\n  enforce_detail_visibility: true\n")
	alice := env.User(c, "alice")
	bob := env.User(c, "bob")
	p := env.Post(c, alice, blogtest.PostOpts{Category: env.Category(c, "news", true), Unpublished: true})

	path := "/posts/" + id(p.ID) + "/"
	c.Check(env.Do(c, http.MethodGet, path, nil, nil).Code, gc.Equals, http.StatusNotFound)
	c.Check(env.Do(c, http.MethodGet, path, nil, bob).Code, gc.Equals, http.StatusNotFound)
	c.Check(env.Do(c, http.MethodGet, path, nil, alice).Code, gc.Equals, http.StatusOK)
}

func (s *postSuite) TestCreateRequiresLogin(c *gc.C) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := s.env.Do(c, method, "/posts/create/", url.Values{}, nil)
		c.Check(rec.Code, gc.Equals, http.StatusFound)
		c.Check(rec.Header().Get("Location"), gc.Equals, "/auth/login/?next=%2Fposts%2Fcreate%2F")
	}
}

func (s *postSuite) TestCreateForm(c *gc.C) {
	s.env.Location(c, "Moscow", true)
	rec := s.env.Do(c, http.MethodGet, "/posts/create/", nil, s.alice)
	c.Assert(rec.Code, gc.Equals, http.StatusOK)

	var body struct {
		Form    map[string]interface{} `json:"form"`
		Context struct {
			Categories []struct{ Slug string } `json:"categories"`
			Locations  []struct{ Name string } `json:"locations"`
		} `json:"context"`
	}
	blogtest.Decode(c, rec, &body)
	c.Check(body.Form["pub_date"], gc.Equals, "2024-03-01T12:00")
	c.Check(body.Context.Categories, gc.HasLen, 1)
	c.Check(body.Context.Locations, gc.HasLen, 1)
}

func (s *postSuite) TestCreate(c *gc.C) {
	loc := s.env.Location(c, "Moscow", true)
	rec := s.env.Do(c, http.MethodPost, "/posts/create/", url.Values{
		"title":    {"Hello"},
		"text":     {"Body"},
		"pub_date": {"2024-02-01T10:00"},
		"category": {id(s.news.ID)},
		"location": {id(loc.ID)},
	}, s.alice)
	c.Assert(rec.Code, gc.Equals, http.StatusFound, gc.Commentf("body: %s", rec.Body.String()))
	c.Check(rec.Header().Get("Location"), gc.Equals, "/profile/alice/")

	var p models.PostModel
	c.Assert(s.env.DB.Where("title = ?", "Hello").First(&p).Error, jc.ErrorIsNil)
	c.Check(p.AuthorID, gc.Equals, s.alice.ID)
	c.Check(*p.CategoryID, gc.Equals, s.news.ID)
	c.Check(*p.LocationID, gc.Equals, loc.ID)
	c.Check(p.IsPublished, jc.IsTrue)
	c.Check(p.PubDate.UTC().Equal(time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)), jc.IsTrue)
}

func (s *postSuite) TestCreateUnpublishedCheckbox(c *gc.C) {
	rec := s.env.Do(c, http.MethodPost, "/posts/create/", url.Values{
		"title":        {"Draft"},
		"text":         {"Body"},
		"pub_date":     {"2024-02-01"},
		"is_published": {""},
	}, s.alice)
	c.Assert(rec.Code, gc.Equals, http.StatusFound)

	var p models.PostModel
	c.Assert(s.env.DB.Where("title = ?", "Draft").First(&p).Error, jc.ErrorIsNil)
	c.Check(p.IsPublished, jc.IsFalse)
	c.Check(p.CategoryID, gc.IsNil)
}

func (s *postSuite) TestCreateIgnoresSubmittedAuthor(c *gc.C) {
	rec := s.env.Do(c, http.MethodPost, "/posts/create/", url.Values{
		"title":    {"Mine"},
		"text":     {"Body"},
		"pub_date": {"2024-02-01"},
		"author":   {id(s.bob.ID)},
	}, s.alice)
	c.Assert(rec.Code, gc.Equals, http.StatusFound)

	var p models.PostModel
	c.Assert(s.env.DB.Where("title = ?", "Mine").First(&p).Error, jc.ErrorIsNil)
	c.Check(p.AuthorID, gc.Equals, s.alice.ID)
}

func (s *postSuite) TestCreateInvalid(c *gc.C) {
	rec := s.env.Do(c, http.MethodPost, "/posts/create/", url.Values{
		"title":    {""},
		"text":     {"Body"},
		"pub_date": {"next tuesday"},
		"category": {"999"},
	}, s.alice)
	c.Assert(rec.Code, gc.Equals, http.StatusUnprocessableEntity)

	var body formBody
	blogtest.Decode(c, rec, &body)
	c.Check(body.Errors["title"], gc.Equals, "This field is required.")
	c.Check(body.Errors["pub_date"], gc.Equals, "Enter a valid date/time.")
	c.Check(body.Errors["category"], gc.Matches, "Select a valid choice.*")
	c.Check(body.Form["text"], gc.Equals, "Body")

	var count int64
	c.Assert(s.env.DB.Model(&models.PostModel{}).Count(&count).Error, jc.ErrorIsNil)
	c.Check(count, gc.Equals, int64(0))
}

func (s *postSuite) TestNonOwnerCannotEdit(c *gc.C) {
	p := s.env.Post(c, s.alice, blogtest.PostOpts{Title: "original", Category: s.news})
	path := "/posts/" + id(p.ID) + "/edit/"

	rec := s.env.Do(c, http.MethodGet, path, nil, s.bob)
	c.Check(rec.Code, gc.Equals, http.StatusFound)
	c.Check(rec.Header().Get("Location"), gc.Equals, "/posts/"+id(p.ID)+"/")

	rec = s.env.Do(c, http.MethodPost, path, url.Values{
		"title": {"hijacked"}, "text": {"x"}, "pub_date": {"2024-01-01"},
	}, s.bob)
	c.Check(rec.Code, gc.Equals, http.StatusFound)
	c.Check(rec.Header().Get("Location"), gc.Equals, "/posts/"+id(p.ID)+"/")

	var stored models.PostModel
	c.Assert(s.env.DB.First(&stored, p.ID).Error, jc.ErrorIsNil)
	c.Check(stored.Title, gc.Equals, "original")
}

func (s *postSuite) TestNonOwnerCannotDelete(c *gc.C) {
	p := s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news})
	rec := s.env.Do(c, http.MethodPost, "/posts/"+id(p.ID)+"/delete/", url.Values{}, s.bob)
	c.Check(rec.Code, gc.Equals, http.StatusFound)
	c.Check(rec.Header().Get("Location"), gc.Equals, "/posts/"+id(p.ID)+"/")

	var count int64
	c.Assert(s.env.DB.Model(&models.PostModel{}).Where("id = ?", p.ID).Count(&count).Error, jc.ErrorIsNil)
	c.Check(count, gc.Equals, int64(1))
}

func (s *postSuite) TestEditMissingPost(c *gc.C) {
	rec := s.env.Do(c, http.MethodGet, "/posts/999/edit/", nil, s.alice)
	c.Check(rec.Code, gc.Equals, http.StatusNotFound)
}

func (s *postSuite) TestOwnerEdits(c *gc.C) {
	p := s.env.Post(c, s.alice, blogtest.PostOpts{Title: "original", Category: s.news})
	path := "/posts/" + id(p.ID) + "/edit/"

	rec := s.env.Do(c, http.MethodGet, path, nil, s.alice)
	c.Assert(rec.Code, gc.Equals, http.StatusOK)
	var form formBody
	blogtest.Decode(c, rec, &form)
	c.Check(form.Form["title"], gc.Equals, "original")
	c.Check(form.Form["category"], gc.Equals, id(s.news.ID))

	rec = s.env.Do(c, http.MethodPost, path, url.Values{
		"title": {"edited"}, "text": {"new text"}, "pub_date": {"2024-01-01 08:30"},
	}, s.alice)
	c.Assert(rec.Code, gc.Equals, http.StatusFound, gc.Commentf("body: %s", rec.Body.String()))
	c.Check(rec.Header().Get("Location"), gc.Equals, "/profile/alice/")

	var stored models.PostModel
	c.Assert(s.env.DB.First(&stored, p.ID).Error, jc.ErrorIsNil)
	c.Check(stored.Title, gc.Equals, "edited")
	c.Check(stored.Text, gc.Equals, "new text")
	c.Check(stored.CategoryID, gc.IsNil)
	c.Check(stored.AuthorID, gc.Equals, s.alice.ID)
}

func (s *postSuite) TestOwnerDeletesWithComments(c *gc.C) {
	p := s.env.Post(c, s.alice, blogtest.PostOpts{Category: s.news})
	s.env.Comment(c, s.bob, p, "gone soon")

	rec := s.env.Do(c, http.MethodGet, "/posts/"+id(p.ID)+"/delete/", nil, s.alice)
	c.Check(rec.Code, gc.Equals, http.StatusOK)

	rec = s.env.Do(c, http.MethodPost, "/posts/"+id(p.ID)+"/delete/", url.Values{}, s.alice)
	c.Assert(rec.Code, gc.Equals, http.StatusFound)
	c.Check(rec.Header().Get("Location"), gc.Equals, "/profile/alice/")

	var posts, comments int64
	c.Assert(s.env.DB.Model(&models.PostModel{}).Count(&posts).Error, jc.ErrorIsNil)
	c.Assert(s.env.DB.Model(&models.CommentModel{}).Count(&comments).Error, jc.ErrorIsNil)
	c.Check(posts, gc.Equals, int64(0))
	c.Check(comments, gc.Equals, int64(0))
}

// 1x1 transparent PNG.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (s *postSuite) multipartRequest(c *gc.C, path string, fields map[string]string, image []byte) *http.Request {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		c.Assert(w.WriteField(k, v), jc.ErrorIsNil)
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "pixel.png")
		c.Assert(err, jc.ErrorIsNil)
		_, err = part.Write(image)
		c.Assert(err, jc.ErrorIsNil)
	}
	c.Assert(w.Close(), jc.ErrorIsNil)

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.env.Token(c, s.alice))
	return req
}

func (s *postSuite) TestCreateWithImage(c *gc.C) {
	req := s.multipartRequest(c, "/posts/create/", map[string]string{
		"title": "Picture", "text": "Look", "pub_date": "2024-02-01", "category": id(s.news.ID),
	}, pngPixel)
	rec := s.env.Serve(req)
	c.Assert(rec.Code, gc.Equals, http.StatusFound, gc.Commentf("body: %s", rec.Body.String()))

	var p models.PostModel
	c.Assert(s.env.DB.Where("title = ?", "Picture").First(&p).Error, jc.ErrorIsNil)
	c.Assert(p.Image, gc.Matches, `posts_images/.+\.png`)

	rec = s.env.Do(c, http.MethodGet, fmt.Sprintf("/posts/%d/", p.ID), nil, nil)
	var body detailBody
	blogtest.Decode(c, rec, &body)
	c.Check(body.Post.Image, gc.Equals, "/media/"+p.Image)

	rec = s.env.Do(c, http.MethodGet, body.Post.Image, nil, nil)
	c.Check(rec.Code, gc.Equals, http.StatusOK)
	c.Check(rec.Body.Bytes(), jc.DeepEquals, pngPixel)
}

func (s *postSuite) TestEditClearsImageFromCheckbox(c *gc.C) {
	req := s.multipartRequest(c, "/posts/create/", map[string]string{
		"title": "Picture", "text": "Look", "pub_date": "2024-02-01", "category": id(s.news.ID),
	}, pngPixel)
	c.Assert(s.env.Serve(req).Code, gc.Equals, http.StatusFound)
	var p models.PostModel
	c.Assert(s.env.DB.Where("title = ?", "Picture").First(&p).Error, jc.ErrorIsNil)
	c.Assert(p.Image, gc.Not(gc.Equals), "")

	path := "/posts/" + id(p.ID) + "/edit/"
	rec := s.env.Do(c, http.MethodPost, path, url.Values{
		"title": {"Picture"}, "text": {"Look"}, "pub_date": {"2024-02-01"},
		"category": {id(s.news.ID)}, "image_clear": {"on"},
	}, s.alice)
	c.Assert(rec.Code, gc.Equals, http.StatusFound, gc.Commentf("body: %s", rec.Body.String()))

	var stored models.PostModel
	c.Assert(s.env.DB.First(&stored, p.ID).Error, jc.ErrorIsNil)
	c.Check(stored.Image, gc.Equals, "")

	rec = s.env.Do(c, http.MethodGet, "/media/"+p.Image, nil, nil)
	c.Check(rec.Code, gc.Equals, http.StatusNotFound)
}

func (s *postSuite) TestEditKeepsImageWithoutCheckbox(c *gc.C) {
	req := s.multipartRequest(c, "/posts/create/", map[string]string{
		"title": "Picture", "text": "Look", "pub_date": "2024-02-01", "category": id(s.news.ID),
	}, pngPixel)
	c.Assert(s.env.Serve(req).Code, gc.Equals, http.StatusFound)
	var p models.PostModel
	c.Assert(s.env.DB.Where("title = ?", "Picture").First(&p).Error, jc.ErrorIsNil)

	rec := s.env.Do(c, http.MethodPost, "/posts/"+id(p.ID)+"/edit/", url.Values{
		"title": {"Renamed"}, "text": {"Look"}, "pub_date": {"2024-02-01"},
	}, s.alice)
	c.Assert(rec.Code, gc.Equals, http.StatusFound, gc.Commentf("body: %s", rec.Body.String()))

	var stored models.PostModel
	c.Assert(s.env.DB.First(&stored, p.ID).Error, jc.ErrorIsNil)
	c.Check(stored.Image, gc.Equals, p.Image)
}

func (s *postSuite) TestCreateRejectsNonImageUpload(c *gc.C) {
	req := s.multipartRequest(c, "/posts/create/", map[string]string{
		"title": "Bad", "text": "x", "pub_date": "2024-02-01",
	}, []byte(strings.Repeat("not an image ", 10)))
	rec := s.env.Serve(req)
	c.Assert(rec.Code, gc.Equals, http.StatusUnprocessableEntity)

	var body formBody
	blogtest.Decode(c, rec, &body)
	c.Check(body.Errors["image"], gc.Not(gc.Equals), "")
}
