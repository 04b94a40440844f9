// Package tokenstore resolves the optional bearer token the access layer
// attaches to outgoing requests. A missing token is not an error; requests
// proceed unauthenticated.
package tokenstore

import (
	"context"
	"os"
	"strings"

	"github.com/petrodata/brentdash/errors"
)

type Source interface {
	// Token returns the current bearer token, or "" when none is available.
	Token(ctx context.Context) (string, error)
}

// Static is a fixed token, mostly for tests and one-off CLI runs.
type Static string

func (s Static) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// None never returns a token.
var None Source = Static("")

// FileStore persists the token in a plain file, the client-side equivalent of
// browser local storage in the original dashboard.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Token(ctx context.Context) (string, error) {
	bs, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "error in reading token file")
	}
	return strings.TrimSpace(string(bs)), nil
}

func (f *FileStore) Save(token string) error {
	return errors.Wrap(os.WriteFile(f.Path, []byte(token+"\n"), 0o600), "error in writing token file")
}

func (f *FileStore) Forget() error {
	err := os.Remove(f.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "error in removing token file")
}
