package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Broadcast topics. Any string is a valid topic; these are the ones the
// server publishes on.
const (
	TopicDashboard    = "dashboard_metrics"
	TopicSystemStatus = "system_status"
	TopicActivity     = "activity_feed"
	TopicNotification = "notification"
	TopicPricing      = "pricing_update"
)

// Kind enumerates the closed set of inbound message kinds.
type Kind string

const (
	KindAuthenticate Kind = "authenticate"
	KindSubscribe    Kind = "subscribe"
	KindUnsubscribe  Kind = "unsubscribe"
)

// TopicList accepts either a bare string or an array of strings on the wire.
type TopicList []string

func (t *TopicList) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*t = TopicList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("topics: expected string or string array")
	}
	*t = many
	return nil
}

// ClientMessage is a decoded inbound frame.
type ClientMessage struct {
	Type   Kind      `json:"type"`
	Token  string    `json:"token,omitempty"`
	Topics TopicList `json:"topics,omitempty"`
}

// DecodeClientMessage parses an inbound frame and rejects unknown kinds so
// the dispatch switch stays exhaustive.
func DecodeClientMessage(b []byte) (ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("malformed message: %w", err)
	}
	switch m.Type {
	case KindAuthenticate, KindSubscribe, KindUnsubscribe:
		return m, nil
	case "":
		return ClientMessage{}, fmt.Errorf("missing message type")
	default:
		return ClientMessage{}, fmt.Errorf("unknown message type %q", m.Type)
	}
}

// ServerMessage is an outbound envelope.
type ServerMessage struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	Topic     string    `json:"topic,omitempty"`
	Topics    []string  `json:"topics,omitempty"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

func ConnectedMessage() ServerMessage {
	return ServerMessage{Type: "connected"}
}

func AuthenticatedMessage(userID string) ServerMessage {
	return ServerMessage{Type: "authenticated", UserID: userID}
}

func AuthErrorMessage(msg string) ServerMessage {
	return ServerMessage{Type: "auth_error", Message: msg}
}

func SubscribedMessage(topics []string) ServerMessage {
	return ServerMessage{Type: "subscribed", Topics: topics}
}

func UnsubscribedMessage(topics []string) ServerMessage {
	return ServerMessage{Type: "unsubscribed", Topics: topics}
}

func UpdateMessage(topic string, data any, at time.Time) ServerMessage {
	return ServerMessage{Type: "update", Topic: topic, Data: data, Timestamp: at}
}

func ErrorMessage(msg string) ServerMessage {
	return ServerMessage{Type: "error", Message: msg}
}
