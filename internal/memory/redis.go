package memory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// memberSep separates the score prefix from the stored text.
const memberSep = "\x00"

// RedisStore implements SortedSet on Redis sorted sets (ZADD / ZRANGE).
//
// Redis sorted sets hold each member once, so every member is stored as
// "<score>\x00<text>". Identical texts appended at different scores stay
// distinct entries; Range strips the prefix again.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore connects to the Redis server at url (redis:// or rediss://).
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	if url == "" {
		return nil, errors.New("redis URL is required")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrStoreUnavailable, err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Add inserts member under key with the given score.
func (s *RedisStore) Add(ctx context.Context, key string, score float64, member string) error {
	return s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: encodeMember(score, member)}).Err()
}

func encodeMember(score float64, text string) string {
	return strconv.FormatFloat(score, 'f', -1, 64) + memberSep + text
}

// decodeMember returns the text of a stored member. Members written without
// a score prefix are returned unchanged.
func decodeMember(member string) string {
	if i := strings.Index(member, memberSep); i >= 0 {
		if _, err := strconv.ParseFloat(member[:i], 64); err == nil {
			return member[i+len(memberSep):]
		}
	}
	return member
}

// Range returns members under key in ascending score order.
func (s *RedisStore) Range(ctx context.Context, key string, limit int) ([]string, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	members, err := s.client.ZRange(ctx, key, start, -1).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(members))
	for i, m := range members {
		texts[i] = decodeMember(m)
	}
	return texts, nil
}

// Exists reports whether key holds at least one member.
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements SortedSet interface.
var _ SortedSet = (*RedisStore)(nil)
