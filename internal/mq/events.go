package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/taskdesk/apiserver/types"
)

// TaskEventPublisher writes task events to a single channel as JSON.
type TaskEventPublisher struct {
	backend Backend
	channel string
}

// NewTaskEventPublisher constructs a publisher for channel.
func NewTaskEventPublisher(backend Backend, channel string) *TaskEventPublisher {
	return &TaskEventPublisher{backend: backend, channel: channel}
}

// PublishTaskEvent encodes and sends event.
func (p *TaskEventPublisher) PublishTaskEvent(ctx context.Context, event types.TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode task event: %w", err)
	}
	attrs := map[string]string{
		AttrEventType: event.Type,
		AttrUserID:    event.UserID.String(),
	}
	if _, err := p.backend.Publish(ctx, p.channel, data, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// SubscribeTaskEvents decodes every message on the channel and passes it to fn.
// Messages that fail to decode are rejected without calling fn.
func (p *TaskEventPublisher) SubscribeTaskEvents(ctx context.Context, fn func(context.Context, types.TaskEvent) error) error {
	return p.backend.Subscribe(ctx, p.channel, func(ctx context.Context, msg Message) error {
		event, err := DecodeTaskEvent(msg)
		if err != nil {
			return err
		}
		return fn(ctx, event)
	})
}

// DecodeTaskEvent parses a message produced by PublishTaskEvent.
func DecodeTaskEvent(msg Message) (types.TaskEvent, error) {
	var event types.TaskEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return types.TaskEvent{}, fmt.Errorf("decode task event %s: %w", msg.ID, err)
	}
	if event.Type == "" {
		return types.TaskEvent{}, errors.New("task event without type")
	}
	return event, nil
}
