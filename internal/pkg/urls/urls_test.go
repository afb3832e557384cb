package urls

import (
	"testing"

	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

type urlsSuite struct{}

var _ = gc.Suite(&urlsSuite{})

func (s *urlsSuite) TestPaths(c *gc.C) {
	c.Check(Profile("alice"), gc.Equals, "/profile/alice/")
	c.Check(PostDetail(7), gc.Equals, "/posts/7/")
	c.Check(Category("travel"), gc.Equals, "/category/travel/")
}

func (s *urlsSuite) TestLogin(c *gc.C) {
	c.Check(Login("/auth/login/", ""), gc.Equals, "/auth/login/")
	c.Check(Login("/auth/login/", "/posts/create/"), gc.Equals, "/auth/login/?next=%2Fposts%2Fcreate%2F")
	c.Check(Login("/login?x=1", "/a/"), gc.Equals, "/login?x=1&next=%2Fa%2F")
}

func (s *urlsSuite) TestSafeNext(c *gc.C) {
	c.Check(SafeNext("/posts/1/", "/"), gc.Equals, "/posts/1/")
	for _, bad := range []string{"", "https://evil.example/", "//evil.example/", "/\\evil", "posts/1/"} {
		c.Check(SafeNext(bad, "/"), gc.Equals, "/", gc.Commentf("next %q", bad))
	}
}
