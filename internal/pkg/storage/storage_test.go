package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

type imagesSuite struct {
	dir    string
	images *Images
}

var _ = gc.Suite(&imagesSuite{})

// 1x1 transparent PNG.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (s *imagesSuite) SetUpTest(c *gc.C) {
	s.dir = c.MkDir()
	s.images = NewImages(NewLocal(s.dir, "/media/"), 1)
}

func fileHeader(c *gc.C, name string, content []byte) *multipart.FileHeader {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	c.Assert(err, jc.ErrorIsNil)
	_, err = part.Write(content)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(w.Close(), jc.ErrorIsNil)

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(form.File["image"], gc.HasLen, 1)
	return form.File["image"][0]
}

func (s *imagesSuite) TestSavePNG(c *gc.C) {
	key, err := s.images.Save(context.Background(), fileHeader(c, "pixel.png", pngPixel))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(strings.HasPrefix(key, ImagePrefix+"/"), jc.IsTrue)
	c.Check(filepath.Ext(key), gc.Equals, ".png")

	stored, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(key)))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(stored, jc.DeepEquals, pngPixel)
	c.Check(s.images.URL(key), gc.Equals, "/media/"+key)
}

func (s *imagesSuite) TestRejectsNonImage(c *gc.C) {
	_, err := s.images.Save(context.Background(), fileHeader(c, "notes.png", []byte("plain text pretending")))
	c.Check(errors.Is(err, errors.NotValid), jc.IsTrue)
}

func (s *imagesSuite) TestRejectsOversized(c *gc.C) {
	big := append(append([]byte{}, pngPixel...), make([]byte, 2<<20)...)
	_, err := s.images.Save(context.Background(), fileHeader(c, "big.png", big))
	c.Check(errors.Is(err, errors.NotValid), jc.IsTrue)
}

func (s *imagesSuite) TestDelete(c *gc.C) {
	key, err := s.images.Save(context.Background(), fileHeader(c, "pixel.png", pngPixel))
	c.Assert(err, jc.ErrorIsNil)

	c.Assert(s.images.Delete(context.Background(), key), jc.ErrorIsNil)
	_, err = os.Stat(filepath.Join(s.dir, filepath.FromSlash(key)))
	c.Check(os.IsNotExist(err), jc.IsTrue)

	// missing objects and empty keys are not errors
	c.Check(s.images.Delete(context.Background(), key), jc.ErrorIsNil)
	c.Check(s.images.Delete(context.Background(), ""), jc.ErrorIsNil)
	c.Check(s.images.URL(""), gc.Equals, "")
}

func (s *imagesSuite) TestLocalKeysStayInsideDir(c *gc.C) {
	local := NewLocal(s.dir, "/media")
	p, err := local.path("../../etc/passwd")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(strings.HasPrefix(p, s.dir), jc.IsTrue)
}
