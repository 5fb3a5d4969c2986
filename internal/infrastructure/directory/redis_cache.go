package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bibbank/loan-decision/internal/domain/model"
	"github.com/bibbank/loan-decision/internal/domain/port"
)

const (
	profileKeyPrefix = "credit-profile:"
	// absentMarker caches a negative lookup.
	absentMarker = "-"
)

// NewRedisClient parses url, connects and pings. It returns nil when url is
// empty, meaning no cache is configured.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// CachedDirectory is a read-through Redis cache in front of another directory.
// The cache is advisory: when Redis fails the lookup goes to the backing
// directory and the failure is only logged.
type CachedDirectory struct {
	next   port.ProfileLookup
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedDirectory wraps next with a cache whose entries expire after ttl.
func NewCachedDirectory(next port.ProfileLookup, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	return &CachedDirectory{next: next, client: client, ttl: ttl, logger: logger}
}

func (d *CachedDirectory) FindProfile(ctx context.Context, applicantID string) (model.CreditProfile, bool, error) {
	key := profileKeyPrefix + applicantID

	cached, err := d.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if p, found, ok := d.decode(applicantID, cached); ok {
			return p, found, nil
		}
	case !errors.Is(err, redis.Nil):
		d.logger.WarnContext(ctx, "profile cache read failed", "error", err)
	}

	p, found, err := d.next.FindProfile(ctx, applicantID)
	if err != nil {
		return model.CreditProfile{}, false, err
	}

	value := absentMarker
	if found {
		raw, err := json.Marshal(RecordFromProfile(p))
		if err != nil {
			return p, found, nil
		}
		value = string(raw)
	}
	if err := d.client.Set(ctx, key, value, d.ttl).Err(); err != nil {
		d.logger.WarnContext(ctx, "profile cache write failed", "error", err)
	}
	return p, found, nil
}

// decode returns ok=false when the cached entry is unusable and should be refreshed.
func (d *CachedDirectory) decode(applicantID, cached string) (model.CreditProfile, bool, bool) {
	if cached == absentMarker {
		return model.CreditProfile{}, false, true
	}
	var rec ProfileRecord
	if err := json.Unmarshal([]byte(cached), &rec); err != nil || rec.ApplicantID != applicantID {
		d.logger.Warn("discarding corrupt profile cache entry", "error", err)
		return model.CreditProfile{}, false, false
	}
	p, err := rec.ToProfile()
	if err != nil {
		return model.CreditProfile{}, false, false
	}
	return p, true, true
}
