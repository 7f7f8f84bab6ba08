package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/scrapeflow/pkg/utils"
)

const submittedURLPrefix = "scrapeflow:submitted:"

// DedupRepoImpl remembers submitted URLs as expiring Redis keys.
type DedupRepoImpl struct {
	client *redis.Client
}

// NewDedupRepo creates a new instance of DedupRepoImpl.
func NewDedupRepo(client *redis.Client) *DedupRepoImpl {
	return &DedupRepoImpl{client: client}
}

// generateKey creates a consistent Redis key for a URL by hashing it.
func (r *DedupRepoImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", submittedURLPrefix, utils.HashURL(url))
}

// MarkSubmitted remembers a URL for the given window. SETEX is atomic and
// sets the key with an expiry.
func (r *DedupRepoImpl) MarkSubmitted(ctx context.Context, url string, window time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(url), "1", window).Err()
}

// IsSubmitted reports whether the URL was submitted within the window.
func (r *DedupRepoImpl) IsSubmitted(ctx context.Context, url string) (bool, error) {
	val, err := r.client.Exists(ctx, r.generateKey(url)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// Clear forgets a URL, used for forced re-scrapes.
func (r *DedupRepoImpl) Clear(ctx context.Context, url string) error {
	return r.client.Del(ctx, r.generateKey(url)).Err()
}
