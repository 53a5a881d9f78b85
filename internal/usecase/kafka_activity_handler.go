package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"HostPulse/internal/domain/models"
	domrepo "HostPulse/internal/domain/repository"
	pkgkafka "HostPulse/pkg/kafka"
	applogger "HostPulse/pkg/logger"
)

const activityTopicName = "activity_feed"

// OwnerBroadcaster pushes a topic update to every connection of one account.
type OwnerBroadcaster interface {
	BroadcastToOwner(ownerID, topic string, data any)
}

// activityPayload is the wire shape the backoffice publishes on the
// activity topic.
type activityPayload struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Kind       string `json:"kind"`
	PropertyID string `json:"property_id,omitempty"`
	Message    string `json:"message"`
	At         int64  `json:"at"` // unix millis
}

// ActivityHandler consumes activity events from Kafka, records them in the
// in-memory feed and relays them to live dashboard connections.
type ActivityHandler struct {
	topic       string
	feed        *ActivityFeed
	broadcaster OwnerBroadcaster
	metrics     domrepo.Metrics
	logger      *applogger.Logger
}

var _ pkgkafka.MessageHandler = (*ActivityHandler)(nil)

func NewActivityHandler(topic string, feed *ActivityFeed, broadcaster OwnerBroadcaster, metrics domrepo.Metrics, logger *applogger.Logger) *ActivityHandler {
	return &ActivityHandler{
		topic:       topic,
		feed:        feed,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
	}
}

func (h *ActivityHandler) Topic() string { return h.topic }

// Handle decodes one activity event. Malformed payloads are an error so the
// consumer's retry/DLQ path takes over.
func (h *ActivityHandler) Handle(_ context.Context, data []byte) error {
	var p activityPayload
	if err := json.Unmarshal(data, &p); err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("activity_decode")
		}
		return fmt.Errorf("decode activity event: %w", err)
	}
	if p.OwnerID == "" || p.Kind == "" {
		return fmt.Errorf("activity event missing owner_id or kind")
	}

	ev := models.ActivityEvent{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Kind:       p.Kind,
		PropertyID: p.PropertyID,
		Message:    p.Message,
		At:         time.UnixMilli(p.At),
	}
	h.feed.Add(ev)

	if h.broadcaster != nil {
		h.broadcaster.BroadcastToOwner(ev.OwnerID, activityTopicName, ev)
	}
	if h.logger != nil {
		h.logger.Debug("activity event relayed",
			applogger.String("owner", ev.OwnerID),
			applogger.String("kind", ev.Kind),
		)
	}
	return nil
}
