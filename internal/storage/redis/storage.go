package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveGameRecord(ctx context.Context, record *model.GameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// Pipeline the record write with its participant index updates
	pipe := s.client.Pipeline()
	pipe.Set(ctx, recordKey(record.SessionID), data, s.cfg.RecordTTL)
	for _, identity := range record.Participants {
		idxKey := recordsForIdentityKey(identity)
		pipe.SAdd(ctx, idxKey, string(record.SessionID))
		if s.cfg.RecordTTL > 0 {
			pipe.Expire(ctx, idxKey, s.cfg.RecordTTL)
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGameRecord(ctx context.Context, id model.SessionID) (*model.GameRecord, error) {
	data, err := s.client.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRecordNotFound
		}
		return nil, err
	}

	var record model.GameRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Storage) ListGameRecordsFor(ctx context.Context, identity model.Identity) ([]*model.GameRecord, error) {
	ids, err := s.client.SMembers(ctx, recordsForIdentityKey(identity)).Result()
	if err != nil {
		return nil, err
	}

	var out []*model.GameRecord
	for _, id := range ids {
		record, err := s.GetGameRecord(ctx, model.SessionID(id))
		if err != nil {
			if errors.Is(err, model.ErrRecordNotFound) {
				// Record expired out from under its index entry
				continue
			}
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *Storage) DeleteGameRecord(ctx context.Context, id model.SessionID) error {
	record, err := s.GetGameRecord(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, recordKey(id))
	for _, identity := range record.Participants {
		pipe.SRem(ctx, recordsForIdentityKey(identity), string(id))
	}
	_, err = pipe.Exec(ctx)
	return err
}
