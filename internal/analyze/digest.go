package analyze

import (
	"fmt"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/YuujiKamura/tonsuu-checker/internal/cache"
)

// digestMemo memoizes path -> content digest so a pipeline run hashes each
// image once even though the cache and the history store share the digest
// scheme. Entries are validated against file size and mtime, so an image
// replaced on disk is re-hashed.
type digestMemo struct {
	memo *gocache.Cache
}

type digestEntry struct {
	digest  string
	size    int64
	modTime time.Time
}

func newDigestMemo() *digestMemo {
	return &digestMemo{memo: gocache.New(30*time.Minute, 10*time.Minute)}
}

// FileDigest returns the SHA-256 content digest for path, reusing a memoized
// value when the file is unchanged.
func (d *digestMemo) FileDigest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if v, ok := d.memo.Get(path); ok {
		entry := v.(digestEntry)
		if entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
			return entry.digest, nil
		}
	}

	digest, err := cache.FileDigest(path)
	if err != nil {
		return "", err
	}
	d.memo.Set(path, digestEntry{digest: digest, size: info.Size(), modTime: info.ModTime()}, gocache.DefaultExpiration)
	return digest, nil
}
