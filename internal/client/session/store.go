// Package session persists the token pair of the logged-in judgectl user.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/judgeserver/internal/filex"
)

const fileName = "tokens.json"

var ErrNotLoggedIn = errors.New("not logged in")

type Tokens struct {
	UserName     string `json:"username"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Store keeps Tokens in a JSON file inside dir. A relative dir is resolved
// against the working directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) ensureDir() (string, error) {
	if filepath.IsAbs(s.dir) {
		if err := os.MkdirAll(s.dir, 0o700); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", s.dir, err)
		}
		return s.dir, nil
	}
	return filex.EnsureSubdDir(s.dir)
}

func (s *Store) Save(t *Tokens) error {
	dir, err := s.ensureDir()
	if err != nil {
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return filex.WritePrivateFile(filepath.Join(dir, fileName), data)
}

// Load returns ErrNotLoggedIn when nothing has been saved yet.
func (s *Store) Load() (*Tokens, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, fileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}

	var t Tokens
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("corrupt token file: %w", err)
	}
	if t.AccessToken == "" && t.RefreshToken == "" {
		return nil, ErrNotLoggedIn
	}
	return &t, nil
}

func (s *Store) Clear() error {
	err := os.Remove(filepath.Join(s.dir, fileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
