package realtime

import (
	"encoding/json"
	"testing"
)

func TestDecodeClientMessageKinds(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"authenticate","token":"abc"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Type != KindAuthenticate || msg.Token != "abc" {
		t.Fatalf("unexpected message %+v", msg)
	}

	if _, err := DecodeClientMessage([]byte(`{"type":"ping"}`)); err == nil {
		t.Fatalf("unknown type accepted")
	}
	if _, err := DecodeClientMessage([]byte(`{"token":"abc"}`)); err == nil {
		t.Fatalf("missing type accepted")
	}
	if _, err := DecodeClientMessage([]byte(`not json`)); err == nil {
		t.Fatalf("malformed payload accepted")
	}
}

func TestTopicListAcceptsStringAndArray(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"subscribe","topics":"dashboard_metrics"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msg.Topics) != 1 || msg.Topics[0] != TopicDashboard {
		t.Fatalf("unexpected topics %v", msg.Topics)
	}

	msg, err = DecodeClientMessage([]byte(`{"type":"subscribe","topics":["dashboard_metrics","pricing_update"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msg.Topics) != 2 || msg.Topics[1] != TopicPricing {
		t.Fatalf("unexpected topics %v", msg.Topics)
	}

	var tl TopicList
	if err := json.Unmarshal([]byte(`42`), &tl); err == nil {
		t.Fatalf("numeric topics accepted")
	}
}
