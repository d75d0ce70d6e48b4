package service

import (
	"context"
	"encoding/json"

	"github.com/AnTengye/qualitytrack/model"
	"github.com/AnTengye/qualitytrack/pkg/logger"
	"github.com/AnTengye/qualitytrack/pkg/sse"
)

type NotificationType string

const (
	NotifySubmitted NotificationType = "submitted"
	NotifyInvalid   NotificationType = "invalid"
	NotifyFailed    NotificationType = "failed"
)

// Notification is the user-facing outcome of a submit
type Notification struct {
	FormID      string           `json:"formId"`
	Kind        model.Kind       `json:"kind"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Fields      FieldErrors      `json:"fields,omitempty"`
	Retryable   bool             `json:"retryable,omitempty"`
}

// Notifier delivers notifications to whoever is showing the form
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// HubNotifier publishes notifications on the SSE hub, one topic per form
type HubNotifier struct {
	hub *sse.Hub
}

func NewHubNotifier(hub *sse.Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) Notify(ctx context.Context, note Notification) {
	data, err := json.Marshal(note)
	if err != nil {
		logger.Error(ctx, "failed to encode notification", "error", err)
		return
	}
	delivered := n.hub.Publish(note.FormID, sse.Event{EventType: string(note.Type), Data: string(data)})
	logger.Debug(ctx, "notification published", "type", note.Type, "clients", delivered)
}
