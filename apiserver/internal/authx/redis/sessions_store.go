package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/krancour/accounts/apiserver/internal/authx"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// sessionsStore is a Redis-based implementation of the authx.SessionsStore
// interface. Each session is stored once, as JSON, with two secondary keys
// mapping its hashed OAuth2 state and hashed token to its ID. All three keys
// expire with the session.
type sessionsStore struct {
	client *redis.Client
	prefix string
}

// NewSessionsStore returns a Redis-based implementation of the
// authx.SessionsStore interface.
func NewSessionsStore(client *redis.Client, prefix string) authx.SessionsStore {
	return &sessionsStore{
		client: client,
		prefix: prefix,
	}
}

func (s *sessionsStore) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

func (s *sessionsStore) stateKey(hashedOAuth2State string) string {
	return fmt.Sprintf("%s:session-state:%s", s.prefix, hashedOAuth2State)
}

func (s *sessionsStore) tokenKey(hashedToken string) string {
	return fmt.Sprintf("%s:session-token:%s", s.prefix, hashedToken)
}

func ttlFor(session authx.Session) time.Duration {
	if session.Expires == nil {
		return 0
	}
	ttl := time.Until(*session.Expires)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (s *sessionsStore) Create(
	ctx context.Context,
	session authx.Session,
) error {
	if err := s.write(ctx, session); err != nil {
		return errors.Wrapf(err, "error storing new session %q", session.ID)
	}
	return nil
}

func (s *sessionsStore) write(ctx context.Context, session authx.Session) error {
	sessionBytes, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "error marshaling session")
	}
	ttl := ttlFor(session)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(session.ID), sessionBytes, ttl)
	if session.HashedOAuth2State != "" {
		pipe.Set(ctx, s.stateKey(session.HashedOAuth2State), session.ID, ttl)
	}
	if session.HashedToken != "" {
		pipe.Set(ctx, s.tokenKey(session.HashedToken), session.ID, ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *sessionsStore) get(
	ctx context.Context,
	id string,
) (authx.Session, error) {
	session := authx.Session{}
	sessionBytes, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err == redis.Nil {
		return session, &meta.ErrNotFound{
			Type: "Session",
			ID:   id,
		}
	}
	if err != nil {
		return session, errors.Wrapf(err, "error retrieving session %q", id)
	}
	if err = json.Unmarshal(sessionBytes, &session); err != nil {
		return session, errors.Wrap(err, "error decoding session")
	}
	return session, nil
}

func (s *sessionsStore) getByIndex(
	ctx context.Context,
	indexKey string,
) (authx.Session, error) {
	id, err := s.client.Get(ctx, indexKey).Result()
	if err == redis.Nil {
		return authx.Session{}, &meta.ErrNotFound{
			Type: "Session",
		}
	}
	if err != nil {
		return authx.Session{}, errors.Wrap(err, "error resolving session ID")
	}
	return s.get(ctx, id)
}

func (s *sessionsStore) GetByHashedOAuth2State(
	ctx context.Context,
	hashedOAuth2State string,
) (authx.Session, error) {
	return s.getByIndex(ctx, s.stateKey(hashedOAuth2State))
}

func (s *sessionsStore) GetByHashedToken(
	ctx context.Context,
	hashedToken string,
) (authx.Session, error) {
	return s.getByIndex(ctx, s.tokenKey(hashedToken))
}

func (s *sessionsStore) Authenticate(
	ctx context.Context,
	sessionID string,
	identity authx.Identity,
	expires time.Time,
) error {
	session, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	session.Identity = &identity
	session.Authenticated = &now
	session.Expires = &expires
	if err = s.write(ctx, session); err != nil {
		return errors.Wrapf(err, "error updating session %q", sessionID)
	}
	return nil
}

func (s *sessionsStore) Delete(ctx context.Context, id string) error {
	session, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	keys := []string{s.sessionKey(id)}
	if session.HashedOAuth2State != "" {
		keys = append(keys, s.stateKey(session.HashedOAuth2State))
	}
	if session.HashedToken != "" {
		keys = append(keys, s.tokenKey(session.HashedToken))
	}
	if err = s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrapf(err, "error deleting session %q", id)
	}
	return nil
}
