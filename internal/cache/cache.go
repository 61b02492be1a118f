package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/coltype/internal/model"
)

// Cache defines the interface for caching dataset profiles
type Cache interface {
	Get(key string) (*model.Profile, bool)
	Set(key string, value *model.Profile, ttl time.Duration) error
}

// CacheKey generates a cache key from a content digest and the parameters that affect the result
func CacheKey(digest string, cfg *model.Config) string {
	inf := cfg.Inference
	params := fmt.Sprintf("%s|%s|%q|%g|%d|%d", digest, cfg.Loader.Format, cfg.Loader.Delimiter, inf.Threshold, inf.SampleSize, inf.Seed)
	hash := sha256.Sum256([]byte(params))
	return "coltype:v1:" + hex.EncodeToString(hash[:])
}

// FileDigest returns the SHA-256 of a file's content
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
