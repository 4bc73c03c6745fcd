package revalidate

import (
	"context"
	"time"

	"github.com/rakbuku/rakbuku/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/robinjoseph08/golib/logger"
)

// Views rendered from book data.
const (
	HomeView       = "/"
	FictionView    = "/fiksi"
	NonFictionView = "/non-fiksi"
)

// DetailView is the path of a book's detail page.
func DetailView(bookID string) string {
	return "/buku/" + bookID
}

// Invalidator tells the rendering layer which views are stale.
type Invalidator interface {
	Invalidate(ctx context.Context, paths []string) error
}

// Event is the message delivered by the webhook and redis drivers.
type Event struct {
	Paths     []string  `json:"paths"`
	Timestamp time.Time `json:"timestamp"`
}

// New builds the invalidator selected by the config.
func New(cfg *config.Config) Invalidator {
	switch cfg.RevalidateDriver {
	case config.RevalidateDriverWebhook:
		return NewWebhookInvalidator(cfg.RevalidateWebhookURL, cfg.RevalidateSecret, cfg.HTTPClientTimeout)
	case config.RevalidateDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisInvalidator(client, cfg.RedisChannel)
	default:
		return &LogInvalidator{}
	}
}

// Notify invalidates the given paths. Failures are logged and never returned
// since the mutation that triggered them has already been committed.
func Notify(ctx context.Context, inv Invalidator, paths ...string) {
	if inv == nil || len(paths) == 0 {
		return
	}
	if err := inv.Invalidate(ctx, dedupe(paths)); err != nil {
		logger.FromContext(ctx).Warn("cache invalidation failed", logger.Data{
			"paths": paths,
			"error": err.Error(),
		})
	}
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// LogInvalidator only logs the stale paths. Used when nothing caches views.
type LogInvalidator struct{}

func (*LogInvalidator) Invalidate(ctx context.Context, paths []string) error {
	logger.FromContext(ctx).Info("views invalidated", logger.Data{"paths": paths})
	return nil
}
