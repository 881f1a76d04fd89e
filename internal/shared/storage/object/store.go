// Package object stores catalog artifacts: source exports and import reports.
package object

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"scentmatch-backend/internal/shared/storage/object/local"
	s3store "scentmatch-backend/internal/shared/storage/object/s3"
)

// Store reads and writes objects by key.
type Store interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error)
}

// Location is a parsed artifact address.
type Location struct {
	Bucket string // empty for local files
	Key    string
	Dir    string // local only
}

// ParseLocation accepts s3://bucket/key or a filesystem path.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, fmt.Errorf("empty location")
	}
	if rest, ok := strings.CutPrefix(raw, "s3://"); ok {
		bucket, key, found := strings.Cut(rest, "/")
		if !found || bucket == "" || strings.Trim(key, "/") == "" {
			return Location{}, fmt.Errorf("invalid s3 location %q", raw)
		}
		return Location{Bucket: bucket, Key: strings.Trim(key, "/")}, nil
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return Location{}, fmt.Errorf("resolve path: %w", err)
	}
	return Location{Dir: filepath.Dir(abs), Key: filepath.Base(abs)}, nil
}

// Resolve returns the store serving loc and the key within it.
func Resolve(ctx context.Context, raw, region string) (Store, string, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, "", err
	}
	if loc.Bucket == "" {
		return local.New(loc.Dir), loc.Key, nil
	}
	store, err := s3store.New(ctx, region, loc.Bucket, "")
	if err != nil {
		return nil, "", err
	}
	return store, loc.Key, nil
}

// Open is a convenience for Resolve followed by Store.Open.
func Open(ctx context.Context, raw, region string) (io.ReadCloser, error) {
	store, key, err := Resolve(ctx, raw, region)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, key)
}
