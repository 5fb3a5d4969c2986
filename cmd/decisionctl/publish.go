package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibbank/loan-decision/internal/infrastructure/config"
	"github.com/bibbank/loan-decision/internal/infrastructure/directory"
	pkgkafka "github.com/bibbank/loan-decision/pkg/kafka"
)

type publisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
	Close() error
}

// newPublisher is replaced in tests.
var newPublisher = func(cfg pkgkafka.Config) (publisher, error) {
	return pkgkafka.NewProducer(cfg)
}

type publishFlags struct {
	seedFile string
	brokers  []string
	topic    string
	delete   []string
}

func newPublishProfilesCmd() *cobra.Command {
	var flags publishFlags
	cmd := &cobra.Command{
		Use:   "publish-profiles",
		Short: "Publish credit profiles to the compacted profile topic",
		Long: "Publishes every profile of a JSON seed file (or the built-in seed) keyed by applicant id, " +
			"and a tombstone for every --delete id. Broker settings default to the KAFKA_* environment.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.seedFile, "file", "", "JSON array of profile records; the built-in seed when empty")
	f.StringSliceVar(&flags.brokers, "brokers", nil, "Kafka brokers, overriding KAFKA_BROKERS")
	f.StringVar(&flags.topic, "topic", "", "Profile topic, overriding KAFKA_PROFILE_TOPIC")
	f.StringArrayVar(&flags.delete, "delete", nil, "Applicant id to remove (may be repeated)")
	return cmd
}

func runPublish(cmd *cobra.Command, flags publishFlags) error {
	cfg := config.Load()
	kafkaCfg := cfg.KafkaClient()
	if len(flags.brokers) > 0 {
		kafkaCfg.Brokers = flags.brokers
	}
	topic := cfg.Kafka.ProfileTopic
	if flags.topic != "" {
		topic = flags.topic
	}

	records := directory.DefaultSeed()
	if flags.seedFile != "" {
		var err error
		if records, err = directory.LoadSeedFile(flags.seedFile); err != nil {
			return err
		}
	}
	// Building the directory rejects malformed and duplicate records before
	// anything is published.
	if _, err := directory.NewMemoryDirectory(records); err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	messages := make([]pkgkafka.Message, 0, len(records)+len(flags.delete))
	for _, r := range records {
		msg, err := directory.EncodeRecord(r)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}
	for _, id := range flags.delete {
		messages = append(messages, directory.EncodeTombstone(id))
	}

	producer, err := newPublisher(kafkaCfg)
	if err != nil {
		return err
	}
	defer func() { _ = producer.Close() }()

	if err := producer.Publish(cmd.Context(), topic, messages...); err != nil {
		return err
	}
	printf(cmd, "published %d profile(s) and %d tombstone(s) to %s\n", len(records), len(flags.delete), topic)
	return nil
}
