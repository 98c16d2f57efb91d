package kafka

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilder_Build(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	msg, err := NewMessage().
		WithKey("h1").
		WithValue(map[string]int{"quantity": 3}).
		WithEventType("stock.issued").
		WithSource("donations").
		WithSchemaVersion("1").
		WithCorrelationID("req-1").
		WithTimestamp(at).
		Build()

	require.NoError(t, err)
	assert.Equal(t, "h1", msg.Key)
	assert.JSONEq(t, `{"quantity":3}`, string(msg.Value))
	assert.Equal(t, "stock.issued", msg.GetEventType())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "2024-05-01T10:00:00Z", msg.Headers[HeaderTimestamp])
}

func TestMessageBuilder_EmptyCorrelationIDOmitted(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithValue("v").WithCorrelationID("").Build()

	require.NoError(t, err)
	_, ok := msg.GetHeader(HeaderCorrelationID)
	assert.False(t, ok)
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(math.Inf(1)).Build()

	assert.Error(t, err)
}

func TestMessage_DecodeValue(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithValue(struct {
		BloodType string `json:"blood_type"`
	}{BloodType: "O-"}).Build()
	require.NoError(t, err)

	var out struct {
		BloodType string `json:"blood_type"`
	}
	require.NoError(t, msg.DecodeValue(&out))
	assert.Equal(t, "O-", out.BloodType)
}
