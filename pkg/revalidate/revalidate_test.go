package revalidate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_Dedupes(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	Notify(context.Background(), rec, HomeView, FictionView, HomeView, DetailView("b1"))
	assert.Equal(t, [][]string{{"/", "/fiksi", "/buku/b1"}}, rec.Calls())
}

func TestNotify_SwallowsErrors(t *testing.T) {
	t.Parallel()

	rec := &Recorder{Err: errors.New("renderer down")}
	assert.NotPanics(t, func() {
		Notify(context.Background(), rec, HomeView)
	})
	assert.Equal(t, []string{"/"}, rec.Last())
}

func TestNotify_NoPaths(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	Notify(context.Background(), rec)
	Notify(context.Background(), nil, HomeView)
	assert.Empty(t, rec.Calls())
}

func TestWebhookInvalidator(t *testing.T) {
	t.Parallel()

	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s3cret", r.Header.Get(SecretHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	inv := NewWebhookInvalidator(srv.URL, "s3cret", time.Second)
	err := inv.Invalidate(context.Background(), []string{HomeView, NonFictionView})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/non-fiksi"}, got.Paths)
	assert.False(t, got.Timestamp.IsZero())
}

func TestWebhookInvalidator_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	inv := NewWebhookInvalidator(srv.URL, "wrong", time.Second)
	err := inv.Invalidate(context.Background(), []string{HomeView})
	assert.EqualError(t, err, "revalidation webhook responded with 401")
}

func TestRedisInvalidator_Publishes(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := miniredis.RunT(t)

	cfg := config.NewForTest()
	cfg.RevalidateDriver = config.RevalidateDriverRedis
	cfg.RedisAddr = server.Addr()
	cfg.RedisChannel = "rakbuku:test"

	subscriber := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer subscriber.Close()
	sub := subscriber.Subscribe(ctx, cfg.RedisChannel)
	defer sub.Close()
	// wait for the subscription to be confirmed
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	inv := New(cfg)
	require.IsType(t, &RedisInvalidator{}, inv)
	require.NoError(t, inv.Invalidate(ctx, []string{HomeView, DetailView("b1")}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rakbuku:test", msg.Channel)

	got := Event{}
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, []string{"/", "/buku/b1"}, got.Paths)
	assert.False(t, got.Timestamp.IsZero())
}

func TestRedisInvalidator_Unreachable(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	inv := NewRedisInvalidator(client, "rakbuku:revalidate")
	err := inv.Invalidate(context.Background(), []string{HomeView})
	assert.Error(t, err)
}

func TestNew_SelectsDriver(t *testing.T) {
	t.Parallel()

	cfg := config.NewForTest()
	assert.IsType(t, &LogInvalidator{}, New(cfg))

	cfg.RevalidateDriver = config.RevalidateDriverWebhook
	cfg.RevalidateWebhookURL = "http://127.0.0.1:3000/api/revalidate"
	assert.IsType(t, &WebhookInvalidator{}, New(cfg))

	cfg.RevalidateDriver = config.RevalidateDriverRedis
	assert.IsType(t, &RedisInvalidator{}, New(cfg))
}
