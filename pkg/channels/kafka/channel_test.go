package kafka_test

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/flowsuite/pkg/channels/kafka"
	"github.com/stretchr/testify/assert"
)

func TestCreateChannel_RequiresBrokers(t *testing.T) {
	for _, brokers := range [][]string{nil, {}, {""}} {
		_, _, err := kafka.CreateChannel(watermill.NopLogger{}, brokers, "flowsuite-sandbox")

		assert.ErrorIs(t, err, kafka.ErrNoBrokers)
	}
}
