package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	prev := client
	SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = client.Close()
		client = prev
	})
	return mr
}

func TestInitInvalidURL(t *testing.T) {
	err := Init("://invalid-url", "")
	assert.Error(t, err)
}

func TestInitWithMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	prev := client
	t.Cleanup(func() {
		_ = Close()
		client = prev
	})

	require.NoError(t, Init("redis://"+mr.Addr(), "ignored-password-override"))
	assert.NotNil(t, GetClient())
}

func TestSetClientAndBasicOpsWithUnreachableRedis(t *testing.T) {
	cli := goredis.NewClient(&goredis.Options{
		Addr:         "127.0.0.1:0", // invalid/unreachable
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
	})
	prev := client
	SetClient(cli)
	t.Cleanup(func() { client = prev })
	assert.NotNil(t, GetClient())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.Error(t, Set(ctx, "k", "v", time.Second))
	_, err := Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, Del(ctx, "k"))
	_, err = SetNX(ctx, "k", "v", time.Second)
	assert.Error(t, err)
	assert.Error(t, Publish(ctx, "c", "m"))
	assert.Error(t, pingClient(ctx, cli))
}

func TestKeyValueOps(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	require.NoError(t, Set(ctx, "wallet:a@b.c", `{"address":"0x1"}`, 0))
	val, err := Get(ctx, "wallet:a@b.c")
	require.NoError(t, err)
	assert.Equal(t, `{"address":"0x1"}`, val)

	ok, err := SetNX(ctx, "wallet:a@b.c", "x", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Del(ctx, "wallet:a@b.c"))
	_, err = Get(ctx, "wallet:a@b.c")
	assert.ErrorIs(t, err, Nil)
}

func TestPublishSubscribe(t *testing.T) {
	useMiniredis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub, err := Subscribe(ctx, "midatopay:payments")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, ChannelPublisher{}.Publish(ctx, "midatopay:payments", `{"type":"payment_confirmed"}`))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "midatopay:payments", msg.Channel)
	assert.Equal(t, `{"type":"payment_confirmed"}`, msg.Payload)
}
