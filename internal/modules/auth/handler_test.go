package auth_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/mx-space/blogicum/internal/middleware"
	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/testing/blogtest"
)

func Test(t *testing.T) { gc.TestingT(t) }

type authSuite struct {
	env *blogtest.Env
}

var _ = gc.Suite(&authSuite{})

func (s *authSuite) SetUpTest(c *gc.C) {
	s.env = blogtest.New(c, "")
}

func (s *authSuite) post(path string, form url.Values, accept string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return req
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.TokenCookie {
			return ck
		}
	}
	return nil
}

func (s *authSuite) TestRegister(c *gc.C) {
	rec := s.env.Serve(s.post("/auth/registration/", url.Values{
		"username":  {"carol"},
		"email":     {"carol@example.com"},
		"password1": {"long-enough-pw"},
		"password2": {"long-enough-pw"},
	}, ""))
	c.Assert(rec.Code, gc.Equals, http.StatusFound, gc.Commentf("body: %s", rec.Body.String()))
	c.Check(rec.Header().Get("Location"), gc.Equals, "/auth/login/")

	var u models.UserModel
	c.Assert(s.env.DB.Where("username = ?", "carol").First(&u).Error, jc.ErrorIsNil)
	c.Check(u.Password, gc.Not(gc.Equals), "long-enough-pw")
	c.Check(u.IsStaff, jc.IsFalse)
}

func (s *authSuite) TestRegisterInvalid(c *gc.C) {
	s.env.User(c, "carol")

	rec := s.env.Serve(s.post("/auth/registration/", url.Values{
		"username":  {"carol"},
		"password1": {"long-enough-pw"},
		"password2": {"long-enough-pw"},
	}, ""))
	c.Assert(rec.Code, gc.Equals, http.StatusUnprocessableEntity)
	var body struct {
		Form   map[string]string `json:"form"`
		Errors map[string]string `json:"errors"`
	}
	blogtest.Decode(c, rec, &body)
	c.Check(body.Errors["username"], gc.Equals, "A user with that username already exists.")
	c.Check(body.Form["password1"], gc.Equals, "")

	rec = s.env.Serve(s.post("/auth/registration/", url.Values{
		"username":  {"dave"},
		"password1": {"long-enough-pw"},
		"password2": {"different-pw"},
	}, ""))
	c.Assert(rec.Code, gc.Equals, http.StatusUnprocessableEntity)
	body.Errors = nil
	blogtest.Decode(c, rec, &body)
	c.Check(body.Errors["password2"], gc.Equals, "The two password fields didn't match.")
}

func (s *authSuite) TestLoginFailure(c *gc.C) {
	s.env.User(c, "alice")
	for _, form := range []url.Values{
		{"username": {"alice"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {blogtest.Password}},
	} {
		rec := s.env.Serve(s.post("/auth/login/", form, ""))
		c.Check(rec.Code, gc.Equals, http.StatusUnprocessableEntity)
		c.Check(tokenCookie(rec), gc.IsNil)
	}
}

func (s *authSuite) TestLoginSessionLogout(c *gc.C) {
	s.env.User(c, "alice")

	rec := s.env.Serve(s.post("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {blogtest.Password},
		"next":     {"/posts/create/"},
	}, ""))
	c.Assert(rec.Code, gc.Equals, http.StatusFound)
	c.Check(rec.Header().Get("Location"), gc.Equals, "/posts/create/")
	cookie := tokenCookie(rec)
	c.Assert(cookie, gc.NotNil)
	c.Check(cookie.HttpOnly, jc.IsTrue)

	req := httptest.NewRequest(http.MethodGet, "/edit_profile/", nil)
	req.AddCookie(cookie)
	c.Check(s.env.Serve(req).Code, gc.Equals, http.StatusOK)

	logout := s.post("/auth/logout/", url.Values{}, "")
	logout.AddCookie(cookie)
	rec = s.env.Serve(logout)
	c.Assert(rec.Code, gc.Equals, http.StatusFound)
	c.Check(rec.Header().Get("Location"), gc.Equals, "/")
	cleared := tokenCookie(rec)
	c.Assert(cleared, gc.NotNil)
	c.Check(cleared.MaxAge < 0, jc.IsTrue)

	// the revoked token no longer authenticates
	req = httptest.NewRequest(http.MethodGet, "/edit_profile/", nil)
	req.AddCookie(cookie)
	rec = s.env.Serve(req)
	c.Check(rec.Code, gc.Equals, http.StatusFound)
	c.Check(rec.Header().Get("Location"), gc.Matches, "/auth/login/.*")
}

func (s *authSuite) TestLoginIgnoresForeignNext(c *gc.C) {
	s.env.User(c, "alice")
	rec := s.env.Serve(s.post("/auth/login/?next=https://evil.example/", url.Values{
		"username": {"alice"},
		"password": {blogtest.Password},
	}, ""))
	c.Assert(rec.Code, gc.Equals, http.StatusFound)
	c.Check(rec.Header().Get("Location"), gc.Equals, "/profile/alice/")
}

func (s *authSuite) TestLoginJSON(c *gc.C) {
	s.env.User(c, "alice")
	rec := s.env.Serve(s.post("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {blogtest.Password},
	}, "application/json"))
	c.Assert(rec.Code, gc.Equals, http.StatusOK)

	var body struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	blogtest.Decode(c, rec, &body)
	c.Check(body.User.Username, gc.Equals, "alice")

	req := httptest.NewRequest(http.MethodGet, "/edit_profile/", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	c.Check(s.env.Serve(req).Code, gc.Equals, http.StatusOK)
}

func (s *authSuite) TestLogoutRequiresLogin(c *gc.C) {
	rec := s.env.Serve(s.post("/auth/logout/", url.Values{}, ""))
	c.Check(rec.Code, gc.Equals, http.StatusFound)
	c.Check(rec.Header().Get("Location"), gc.Equals, "/auth/login/?next=%2Fauth%2Flogout%2F")
}

func (s *authSuite) TestGarbageTokenIsAnonymous(c *gc.C) {
	req := httptest.NewRequest(http.MethodGet, "/edit_profile/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	c.Check(s.env.Serve(req).Code, gc.Equals, http.StatusFound)
}
