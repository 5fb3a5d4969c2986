package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes one message read from a topic.
type Handler func(ctx context.Context, msg Message) error

// ReadSnapshot reads every partition of topic from its first retained offset up
// to the high-water mark observed when the partition is opened, calling handle
// for each message in partition order. It returns once all partitions are
// drained; messages produced afterwards are not seen.
func ReadSnapshot(ctx context.Context, cfg Config, topic string, handle Handler, logger *slog.Logger) error {
	if len(cfg.Brokers) == 0 {
		return errors.New("kafka snapshot: no brokers configured")
	}
	dialer, err := cfg.dialer()
	if err != nil {
		return fmt.Errorf("kafka dialer: %w", err)
	}

	partitions, err := dialer.LookupPartitions(ctx, "tcp", cfg.Brokers[0], topic)
	if err != nil {
		return fmt.Errorf("lookup partitions of %s: %w", topic, err)
	}

	for _, p := range partitions {
		n, err := readPartition(ctx, cfg, dialer, topic, p.ID, handle)
		if err != nil {
			return fmt.Errorf("read %s[%d]: %w", topic, p.ID, err)
		}
		logger.Debug("snapshot partition drained", "topic", topic, "partition", p.ID, "messages", n)
	}
	return nil
}

func readPartition(ctx context.Context, cfg Config, dialer *kafkago.Dialer, topic string, partition int, handle Handler) (int, error) {
	conn, err := dialer.DialLeader(ctx, "tcp", cfg.Brokers[0], topic, partition)
	if err != nil {
		return 0, fmt.Errorf("dial leader: %w", err)
	}
	first, last, err := conn.ReadOffsets()
	_ = conn.Close()
	if err != nil {
		return 0, fmt.Errorf("read offsets: %w", err)
	}
	if first >= last {
		return 0, nil
	}

	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   cfg.Brokers,
		Topic:     topic,
		Partition: partition,
		Dialer:    dialer,
		MinBytes:  1,
		MaxBytes:  10 * 1024 * 1024, // 10 MB
	})
	defer r.Close()

	if err := r.SetOffset(first); err != nil {
		return 0, fmt.Errorf("seek to %d: %w", first, err)
	}

	count := 0
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			return count, fmt.Errorf("read message: %w", err)
		}

		msg := Message{
			Key:     m.Key,
			Value:   m.Value,
			Headers: make(map[string]string, len(m.Headers)),
		}
		for _, h := range m.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}
		if err := handle(ctx, msg); err != nil {
			return count, fmt.Errorf("offset %d: %w", m.Offset, err)
		}
		count++

		// Compaction leaves gaps, so stop on the offset rather than a count.
		if m.Offset+1 >= last {
			return count, nil
		}
	}
}
