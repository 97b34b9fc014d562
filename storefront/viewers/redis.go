package viewers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keySession       = "viewer:session:%s"
	keyProductActive = "viewers:product:%s:active"
	keyActive        = "viewers:active"
	keyAll           = "viewers:all"

	fieldProductID = "product_id"
	fieldUserAgent = "user_agent"
	fieldIPAddress = "ip_address"
	fieldJoinedAt  = "joined_at"
	fieldLastSeen  = "last_seen"
	fieldIsActive  = "is_active"

	maxWatchRetries = 5
)

// redis-backed store: one hash per session plus sorted sets scored by lastSeen
// (unix millis) so counts and stale scans are range queries
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, session *ViewerSession) error {
	key := fmt.Sprintf(keySession, session.SessionID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			fieldProductID: session.ProductID,
			fieldUserAgent: session.UserAgent,
			fieldIPAddress: session.IPAddress,
			fieldJoinedAt:  formatMillis(session.JoinedAt),
			fieldLastSeen:  formatMillis(session.LastSeen),
			fieldIsActive:  formatBool(session.IsActive),
		})
		index(ctx, pipe, session.SessionID, session.ProductID, session.LastSeen, session.IsActive)

		return nil
	})
	if err != nil {
		return fmt.Errorf("creating viewer session: %w", err)
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*ViewerSession, error) {
	fields, err := s.client.HGetAll(ctx, fmt.Sprintf(keySession, sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting viewer session: %w", err)
	}

	if len(fields) == 0 {
		return nil, ErrSessionNotFound
	}

	return decodeSession(sessionID, fields)
}

// read-modify-write under WATCH so the hash and the indexes stay in step
func (s *RedisStore) Patch(ctx context.Context, sessionID string, patch Patch) error {
	if patch.IsEmpty() {
		return nil
	}

	key := fmt.Sprintf(keySession, sessionID)

	txf := func(tx *redis.Tx) error {
		vals, err := tx.HMGet(ctx, key, fieldProductID, fieldLastSeen, fieldIsActive).Result()
		if err != nil {
			return err
		}

		productID, ok := vals[0].(string)
		if !ok {
			return ErrSessionNotFound
		}

		lastSeen, err := parseMillis(vals[1])
		if err != nil {
			return err
		}

		active := vals[2] == "1"

		if patch.LastSeen != nil {
			lastSeen = patch.LastSeen.UTC()
		}

		if patch.IsActive != nil {
			active = *patch.IsActive
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldLastSeen, formatMillis(lastSeen), fieldIsActive, formatBool(active))
			index(ctx, pipe, sessionID, productID, lastSeen, active)

			return nil
		})

		return err
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("patching viewer session: %w", err)
		}

		return err
	}

	return fmt.Errorf("patching viewer session: gave up after %d conflicting writes", maxWatchRetries)
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf(keySession, sessionID)

	productID, err := s.client.HGet(ctx, key, fieldProductID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("looking up viewer session: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, keyActive, sessionID)
		pipe.ZRem(ctx, keyAll, sessionID)

		if productID != "" {
			pipe.ZRem(ctx, fmt.Sprintf(keyProductActive, productID), sessionID)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting viewer session: %w", err)
	}

	return nil
}

func (s *RedisStore) CountActive(ctx context.Context, productID string, since time.Time) (int, error) {
	n, err := s.client.ZCount(ctx, fmt.Sprintf(keyProductActive, productID), exclusive(since), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("counting active viewers: %w", err)
	}

	return int(n), nil
}

func (s *RedisStore) ListStale(ctx context.Context, q StaleQuery) ([]*ViewerSession, error) {
	key := keyAll
	if q.ActiveOnly {
		key = keyActive
	}

	ids, err := s.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   exclusive(q.Before),
		Count: int64(max(q.Limit, 0)),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("querying stale sessions: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))

	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, fmt.Sprintf(keySession, id))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("loading stale sessions: %w", err)
	}

	sessions := make([]*ViewerSession, 0, len(ids))

	for i, cmd := range cmds {
		fields := cmd.Val()

		// deleted between the range scan and the load
		if len(fields) == 0 {
			continue
		}

		session, err := decodeSession(ids[i], fields)
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, session)
	}

	return sessions, nil
}

func (s *RedisStore) Stats(ctx context.Context, cutoff time.Time) (*Stats, error) {
	pipe := s.client.Pipeline()
	active := pipe.ZCount(ctx, keyActive, exclusive(cutoff), "+inf")
	pending := pipe.ZCount(ctx, keyActive, "-inf", exclusive(cutoff))
	total := pipe.ZCard(ctx, keyAll)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("querying session stats: %w", err)
	}

	return &Stats{
		ActiveSessions:  int(active.Val()),
		PendingInactive: int(pending.Val()),
		TotalSessions:   int(total.Val()),
	}, nil
}

// keeps the sorted sets consistent with a session's state
func index(ctx context.Context, pipe redis.Pipeliner, sessionID, productID string, lastSeen time.Time, active bool) {
	member := redis.Z{Score: float64(lastSeen.UnixMilli()), Member: sessionID}
	productKey := fmt.Sprintf(keyProductActive, productID)

	if active {
		pipe.ZAdd(ctx, productKey, member)
		pipe.ZAdd(ctx, keyActive, member)
	} else {
		pipe.ZRem(ctx, productKey, sessionID)
		pipe.ZRem(ctx, keyActive, sessionID)
	}

	pipe.ZAdd(ctx, keyAll, member)
}

func decodeSession(sessionID string, fields map[string]string) (*ViewerSession, error) {
	joinedAt, err := parseMillis(fields[fieldJoinedAt])
	if err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}

	lastSeen, err := parseMillis(fields[fieldLastSeen])
	if err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}

	return &ViewerSession{
		SessionID: sessionID,
		ProductID: fields[fieldProductID],
		UserAgent: fields[fieldUserAgent],
		IPAddress: fields[fieldIPAddress],
		JoinedAt:  joinedAt,
		LastSeen:  lastSeen,
		IsActive:  fields[fieldIsActive] == "1",
	}, nil
}

// score bound excluding t itself
func exclusive(t time.Time) string {
	return "(" + formatMillis(t)
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMillis(v any) (time.Time, error) {
	s, _ := v.(string)

	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}

	return time.UnixMilli(ms).UTC(), nil
}

func formatBool(b bool) string {
	if b {
		return "1"
	}

	return "0"
}
