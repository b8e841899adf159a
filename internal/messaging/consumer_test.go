package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNotification(t *testing.T) {
	msg, err := decodeNotification([]byte(`{"event_type":"order.dispatched","entity_id":"o-1","table_id":"4","request_id":"r-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "order.dispatched", msg.EventType)
	assert.Equal(t, "4", msg.TableID)
	assert.Equal(t, "r-1", requestIDOf(msg))

	_, err = decodeNotification([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = decodeNotification([]byte(`{"entity_id":"o-1"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	assert.Empty(t, requestIDOf(nil))
}
