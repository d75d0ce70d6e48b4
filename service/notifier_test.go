package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/AnTengye/qualitytrack/model"
	"github.com/AnTengye/qualitytrack/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubNotifier(t *testing.T) {
	hub := sse.NewHub()
	mine := &sse.Client{ID: "c1", Topic: "form-1", Events: make(chan sse.Event, 1)}
	other := &sse.Client{ID: "c2", Topic: "form-2", Events: make(chan sse.Event, 1)}
	hub.Register(mine)
	hub.Register(other)

	NewHubNotifier(hub).Notify(context.Background(), Notification{
		FormID: "form-1",
		Kind:   model.KindAudit,
		Type:   NotifyInvalid,
		Fields: FieldErrors{"findings": "Findings must be at least 10 characters."},
	})

	require.Len(t, mine.Events, 1)
	assert.Len(t, other.Events, 0)

	ev := <-mine.Events
	assert.Equal(t, "invalid", ev.EventType)

	var n Notification
	require.NoError(t, json.Unmarshal([]byte(ev.Data), &n))
	assert.Equal(t, "form-1", n.FormID)
	assert.Equal(t, model.KindAudit, n.Kind)
	assert.Contains(t, n.Fields, "findings")
}
