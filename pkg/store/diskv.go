package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// Persistence is the on-disk home of the login session.
type Persistence interface {
	ReadToken() (string, error)
	ReadUser() ([]byte, error)
	Write(token string, user []byte) error
	Clear() error
	Watch(ctx context.Context) (<-chan Event, error)
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      64 * 1024,
		PathPerm:          0o700,
		FilePerm:          0o600,
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) ReadToken() (string, error) {
	val, err := p.d.Read(keyToken)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(val)), nil
}

func (p *persistence) ReadUser() ([]byte, error) {
	return p.d.Read(keyUser)
}

// Write stores the user before the token so a reader never sees a token
// without its user.
func (p *persistence) Write(token string, user []byte) error {
	if err := p.d.Write(keyUser, user); err != nil {
		return fmt.Errorf("store: write user: %w", err)
	}
	if err := p.d.Write(keyToken, []byte(token)); err != nil {
		return fmt.Errorf("store: write token: %w", err)
	}
	return nil
}

func (p *persistence) Clear() error {
	for _, key := range []string{keyToken, keyUser} {
		if !p.d.Has(key) {
			continue
		}
		if err := p.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("store: erase %s: %w", key, err)
		}
	}
	return nil
}

// Keys live flat in the base directory.
func keyToPathTransform(s string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{},
		FileName: s,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
