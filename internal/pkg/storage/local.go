package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
)

// Local stores objects below a directory, served under URLPrefix.
type Local struct {
	dir       string
	urlPrefix string
}

func NewLocal(dir, urlPrefix string) *Local {
	return &Local{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Dir is the root directory, used for static serving.
func (l *Local) Dir() string { return l.dir }

func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	if clean == string(filepath.Separator) {
		return "", errors.NotValidf("object key %q", key)
	}
	return filepath.Join(l.dir, clean), nil
}

func (l *Local) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	target, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Trace(err)
	}
	f, err := os.Create(target)
	if err != nil {
		return errors.Trace(err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(target)
		return errors.Trace(err)
	}
	return errors.Trace(f.Close())
}

func (l *Local) Delete(_ context.Context, key string) error {
	target, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.Trace(err)
	}
	return nil
}

func (l *Local) URL(key string) string {
	return l.urlPrefix + "/" + strings.TrimLeft(key, "/")
}
