package upload

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Store persists an uploaded image and returns the reference saved on the row:
// a bare filename for local storage or an absolute URL for a hosted image.
type Store interface {
	Save(ctx context.Context, r io.Reader, originalName string) (string, error)
	Remove(ctx context.Context, ref string) error
}

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".heic": true,
}

// imageExt returns the lower-cased extension of name, defaulting to .jpg.
func imageExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExt[ext] {
		return ".jpg"
	}
	return ext
}

// FallbackStore tries the primary store and falls back to the secondary on error.
type FallbackStore struct {
	Primary   Store
	Secondary Store
}

// NewFallbackStore returns secondary alone when primary is nil.
func NewFallbackStore(primary, secondary Store) Store {
	if primary == nil {
		return secondary
	}
	return &FallbackStore{Primary: primary, Secondary: secondary}
}

func (s *FallbackStore) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	// The primary may consume part of the reader before failing; rewind when possible.
	seeker, canSeek := r.(io.Seeker)
	ref, err := s.Primary.Save(ctx, r, originalName)
	if err == nil {
		return ref, nil
	}
	zap.L().Warn("primary image store failed, using local storage", zap.String("file", originalName), zap.Error(err))
	if canSeek {
		if _, serr := seeker.Seek(0, io.SeekStart); serr != nil {
			return "", serr
		}
	}
	return s.Secondary.Save(ctx, r, originalName)
}

func (s *FallbackStore) Remove(ctx context.Context, ref string) error {
	if isURL(ref) {
		return s.Primary.Remove(ctx, ref)
	}
	return s.Secondary.Remove(ctx, ref)
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
