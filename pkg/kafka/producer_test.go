package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092", "localhost:9093"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, p.brokers)
	assert.Empty(t, p.writers)
	assert.Nil(t, p.transport.SASL)
	assert.Nil(t, p.transport.TLS)
}

func TestNewProducer_RejectsUnknownMechanism(t *testing.T) {
	_, err := NewProducer(Config{
		Brokers:       []string{"kafka:9092"},
		SASLEnabled:   true,
		SASLMechanism: "GSSAPI",
	})
	assert.ErrorContains(t, err, "unsupported SASL mechanism")
}

func TestConfig_SASLAndTLS(t *testing.T) {
	cfg := Config{
		Brokers:      []string{"kafka:9092"},
		TLS:          true,
		SASLEnabled:  true,
		SASLUsername: "svc",
		SASLPassword: "pw",
	}

	d, err := cfg.dialer()
	require.NoError(t, err)
	require.NotNil(t, d.TLS)
	mech, ok := d.SASLMechanism.(*plain.Mechanism)
	require.True(t, ok)
	assert.Equal(t, "svc", mech.Username)

	for _, name := range []string{"SCRAM-SHA-256", "SCRAM-SHA-512"} {
		cfg.SASLMechanism = name
		m, err := cfg.saslMechanism()
		require.NoError(t, err, name)
		assert.Equal(t, name, m.Name())
	}
}

func TestGetOrCreateWriter(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	w1 := p.getOrCreateWriter("topic-a")
	w2 := p.getOrCreateWriter("topic-a")
	w3 := p.getOrCreateWriter("topic-b")

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.IsType(t, &kafkago.Hash{}, w1.Balancer)
	assert.Len(t, p.writers, 2)

	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}
