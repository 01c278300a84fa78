package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineNotifierWritesOneJSONLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	n := NewLineNotifier(&buf)

	n.Notify(context.Background(), Event{Status: "running", Message: "computing", Percent: 50})

	var envelope struct {
		Notification Event `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimRight(buf.Bytes(), "\n"), &envelope))
	require.Equal(t, "running", envelope.Notification.Status)
	require.Equal(t, 50.0, envelope.Notification.Percent)
}

func TestLineNotifierRespectsCancellation(t *testing.T) {
	var buf bytes.Buffer
	n := NewLineNotifier(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n.Notify(ctx, Event{Status: "running"})
	require.Zero(t, buf.Len(), "a cancelled context must suppress the write")
}

func TestNoopNotifierDiscardsEvents(t *testing.T) {
	require.NotPanics(t, func() { (NoopNotifier{}).Notify(context.Background(), Event{}) })
}

func TestSSENotifierDropsWhenBufferFull(t *testing.T) {
	n := NewSSENotifier(1)
	n.Notify(context.Background(), Event{Status: "one"})
	n.Notify(context.Background(), Event{Status: "two"})

	event := <-n.Events()
	require.Equal(t, "one", event.Status, "a full buffer must drop the newest event, not block the handler")
}

func TestSSENotifierCloseClosesEventsChannel(t *testing.T) {
	n := NewSSENotifier(1)
	n.Close()
	_, ok := <-n.Events()
	require.False(t, ok)
}
