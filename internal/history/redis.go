package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage persists run records in a Redis sorted set keyed by run
// timestamp, so range queries by time stay cheap.
type RedisStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStorage connects to Redis using a redis:// URL.
func NewRedisStorage(url string) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisStorage{
		client: client,
		key:    "paperval:runs",
		ttl:    30 * 24 * time.Hour,
	}, nil
}

// SaveRun stores a run record and prunes records past the retention TTL.
func (rs *RedisStorage) SaveRun(ctx context.Context, record RunRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling run record: %w", err)
	}

	pipe := rs.client.Pipeline()
	pipe.ZAdd(ctx, rs.key, redis.Z{
		Score:  float64(record.Timestamp.Unix()),
		Member: string(data),
	})

	minScore := time.Now().Add(-rs.ttl).Unix()
	pipe.ZRemRangeByScore(ctx, rs.key, "-inf", fmt.Sprintf("%d", minScore))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving run record: %w", err)
	}
	return nil
}

// LoadRuns returns up to limit most recent run records, oldest first.
func (rs *RedisStorage) LoadRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 500
	}

	// Newest first, then reverse into chronological order.
	members, err := rs.client.ZRevRangeByScore(ctx, rs.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "+inf",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("loading run history: %w", err)
	}

	records := make([]RunRecord, 0, len(members))
	for i := len(members) - 1; i >= 0; i-- {
		var r RunRecord
		if err := json.Unmarshal([]byte(members[i]), &r); err != nil {
			// Skip entries written by incompatible versions.
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// LoadRunsSince returns run records recorded at or after the given time,
// oldest first.
func (rs *RedisStorage) LoadRunsSince(ctx context.Context, since time.Time) ([]RunRecord, error) {
	members, err := rs.client.ZRangeByScore(ctx, rs.key, &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", since.Unix()),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("loading run history: %w", err)
	}

	records := make([]RunRecord, 0, len(members))
	for _, m := range members {
		var r RunRecord
		if err := json.Unmarshal([]byte(m), &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// DeleteAll removes all stored run records.
func (rs *RedisStorage) DeleteAll(ctx context.Context) error {
	if err := rs.client.Del(ctx, rs.key).Err(); err != nil {
		return fmt.Errorf("deleting run history: %w", err)
	}
	return nil
}

// SetTTL sets the retention window for stored runs.
func (rs *RedisStorage) SetTTL(ttl time.Duration) {
	rs.ttl = ttl
}

// Close closes the Redis connection.
func (rs *RedisStorage) Close() error {
	return rs.client.Close()
}
