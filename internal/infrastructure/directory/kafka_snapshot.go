package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	pkgkafka "github.com/bibbank/loan-decision/pkg/kafka"
)

// snapshotFunc reads a topic to its current end. It matches pkgkafka.ReadSnapshot.
type snapshotFunc func(ctx context.Context, cfg pkgkafka.Config, topic string, handle pkgkafka.Handler, logger *slog.Logger) error

// KafkaLoader builds a MemoryDirectory from a compacted profile topic keyed by
// applicant ID. The last record per key wins and a tombstone removes the key.
type KafkaLoader struct {
	cfg    pkgkafka.Config
	topic  string
	logger *slog.Logger
	read   snapshotFunc
}

// NewKafkaLoader returns a loader for topic.
func NewKafkaLoader(cfg pkgkafka.Config, topic string, logger *slog.Logger) *KafkaLoader {
	return &KafkaLoader{cfg: cfg, topic: topic, logger: logger, read: pkgkafka.ReadSnapshot}
}

// Load reads the topic once and returns the resulting directory.
func (l *KafkaLoader) Load(ctx context.Context) (*MemoryDirectory, error) {
	latest := make(map[string]ProfileRecord)
	listed := make(map[string]bool)
	var order []string

	err := l.read(ctx, l.cfg, l.topic, func(_ context.Context, msg pkgkafka.Message) error {
		key := string(msg.Key)
		if msg.Value == nil {
			delete(latest, key)
			return nil
		}
		var rec ProfileRecord
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			return fmt.Errorf("decode profile %q: %w", key, err)
		}
		if rec.ApplicantID == "" {
			rec.ApplicantID = key
		}
		if rec.ApplicantID != key {
			return fmt.Errorf("profile key %q does not match applicant %q", key, rec.ApplicantID)
		}
		if !listed[key] {
			listed[key] = true
			order = append(order, key)
		}
		latest[key] = rec
		return nil
	}, l.logger)
	if err != nil {
		return nil, fmt.Errorf("read profile snapshot: %w", err)
	}

	records := make([]ProfileRecord, 0, len(latest))
	for _, key := range order {
		if rec, ok := latest[key]; ok {
			records = append(records, rec)
		}
	}

	dir, err := NewMemoryDirectory(records)
	if err != nil {
		return nil, fmt.Errorf("build directory: %w", err)
	}
	l.logger.Info("profile snapshot loaded", "topic", l.topic, "applicants", dir.Len())
	return dir, nil
}

// EncodeRecord renders a record as a profile topic message.
func EncodeRecord(r ProfileRecord) (pkgkafka.Message, error) {
	value, err := json.Marshal(r)
	if err != nil {
		return pkgkafka.Message{}, fmt.Errorf("encode profile %s: %w", r.ApplicantID, err)
	}
	return pkgkafka.Message{
		Key:     []byte(r.ApplicantID),
		Value:   value,
		Headers: map[string]string{"content-type": "application/json"},
	}, nil
}

// EncodeTombstone renders the message that removes an applicant from the
// profile topic.
func EncodeTombstone(applicantID string) pkgkafka.Message {
	return pkgkafka.Message{Key: []byte(applicantID)}
}
