package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"iot/sensor/#", "iot/sensor/temp", true},
		{"iot/sensor/#", "iot/sensor/temp/raw", true},
		{"iot/sensor/#", "iot/control/led", false},
		{"iot/control/+/state", "iot/control/led/state", true},
		{"iot/control/+/state", "iot/control/led/brightness", false},
		{"iot/control/+/state", "iot/control/a/b/state", false},
		{"iot/sensor/temp", "iot/sensor/temp", true},
		{"iot/sensor/temp", "iot/sensor", false},
		{"#", "anything/at/all", true},
		{"+", "one", true},
		{"+", "one/two", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchTopic(tt.filter, tt.topic),
			"filter %q topic %q", tt.filter, tt.topic)
	}
}

func TestMemoryBroker_PublishSubscribe(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	var got []string
	err := b.Subscribe("iot/sensor/#", func(topic string, payload []byte) {
		got = append(got, topic+"="+string(payload))
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish("iot/sensor/temp", "21.5", false))
	require.NoError(t, b.Publish("iot/control/led", "ON", false))
	require.NoError(t, b.Publish("iot/sensor/humidity", "44", false))

	assert.Equal(t, []string{"iot/sensor/temp=21.5", "iot/sensor/humidity=44"}, got)
}

func TestMemoryBroker_RetainedReplay(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	require.NoError(t, b.Publish("iot/control/led", "ON", true))
	require.NoError(t, b.Publish("iot/control/led", "OFF", true))

	var got []string
	err := b.Subscribe("iot/control/+", func(topic string, payload []byte) {
		got = append(got, string(payload))
	})
	require.NoError(t, err)

	// only the last retained value is replayed
	assert.Equal(t, []string{"OFF"}, got)

	p, ok := b.Retained("iot/control/led")
	require.True(t, ok)
	assert.Equal(t, "OFF", p)
}

func TestMemoryBroker_DisconnectedPublishFails(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	b.SetConnected(false)
	assert.False(t, b.IsConnected())
	assert.Error(t, b.Publish("iot/sensor/temp", "1", false))

	b.SetConnected(true)
	assert.NoError(t, b.Publish("iot/sensor/temp", "1", false))
}

func TestMemoryBroker_DuplicateSubscriptionRejected(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	require.NoError(t, b.Subscribe("iot/sensor/#", func(string, []byte) {}))
	assert.Error(t, b.Subscribe("iot/sensor/#", func(string, []byte) {}))
}
