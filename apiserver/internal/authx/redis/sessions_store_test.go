package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/krancour/accounts/apiserver/internal/authx"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func newTestSession() authx.Session {
	now := time.Now().UTC()
	expires := now.Add(10 * time.Minute)
	return authx.Session{
		ID:                "abc",
		HashedOAuth2State: "hashed-state",
		HashedToken:       "hashed-token",
		ReturnTo:          "/",
		Created:           &now,
		Expires:           &expires,
	}
}

func TestSessionsStoreLifecycle(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewSessionsStore(client, "test")
	ctx := context.Background()

	session := newTestSession()
	require.NoError(t, store.Create(ctx, session))
	require.True(t, mr.Exists("test:session:abc"))
	require.True(t, mr.Exists("test:session-state:hashed-state"))
	require.True(t, mr.Exists("test:session-token:hashed-token"))

	found, err := store.GetByHashedOAuth2State(ctx, "hashed-state")
	require.NoError(t, err)
	require.Equal(t, "abc", found.ID)
	require.Nil(t, found.Identity)

	identity := authx.Identity{
		Subject: "auth0|tony",
		Email:   "tony@starkindustries.com",
	}
	require.NoError(
		t,
		store.Authenticate(ctx, "abc", identity, time.Now().Add(time.Hour)),
	)
	require.True(t, mr.TTL("test:session:abc") > 50*time.Minute)

	found, err = store.GetByHashedToken(ctx, "hashed-token")
	require.NoError(t, err)
	require.NotNil(t, found.Identity)
	require.Equal(t, identity, *found.Identity)
	require.NotNil(t, found.Authenticated)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.GetByHashedToken(ctx, "hashed-token")
	require.IsType(t, &meta.ErrNotFound{}, err)
	require.False(t, mr.Exists("test:session-state:hashed-state"))
}

func TestSessionsStoreExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewSessionsStore(client, "test")
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTestSession()))
	mr.FastForward(11 * time.Minute)
	_, err := store.GetByHashedToken(ctx, "hashed-token")
	require.IsType(t, &meta.ErrNotFound{}, err)
}

func TestSessionsStoreNotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionsStore(client, "test")
	ctx := context.Background()

	_, err := store.GetByHashedOAuth2State(ctx, "nope")
	require.IsType(t, &meta.ErrNotFound{}, err)
	err = store.Authenticate(ctx, "nope", authx.Identity{}, time.Now())
	require.IsType(t, &meta.ErrNotFound{}, err)
	err = store.Delete(ctx, "nope")
	require.IsType(t, &meta.ErrNotFound{}, err)
}
