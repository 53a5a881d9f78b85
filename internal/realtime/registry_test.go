package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []ServerMessage
	failing  bool
	closed   int
}

func (s *fakeSender) Send(msg ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("send failed")
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *fakeSender) Close() {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
}

func (s *fakeSender) last() ServerMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ServerMessage{}
	}
	return s.messages[len(s.messages)-1]
}

func (s *fakeSender) byType(typ string) []ServerMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ServerMessage
	for _, m := range s.messages {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

type fakeVerifier struct {
	owners map[string]string
}

func (v fakeVerifier) Verify(_ context.Context, token string) (string, error) {
	if owner, ok := v.owners[token]; ok {
		return owner, nil
	}
	return "", errors.New("invalid token")
}

func newTestRegistry() *Registry {
	return NewRegistry(fakeVerifier{owners: map[string]string{
		"tok-alice": "alice",
		"tok-bob":   "bob",
	}}, nil, nil)
}

func authedConn(t *testing.T, r *Registry, token string, topics ...string) (*Conn, *fakeSender) {
	t.Helper()
	s := &fakeSender{}
	c := r.Admit(s)
	r.Authenticate(context.Background(), c, token)
	if !c.authenticated {
		t.Fatalf("authentication with %q failed", token)
	}
	if len(topics) > 0 {
		r.Subscribe(c, topics)
	}
	return c, s
}

func TestAdmitAcknowledgesConnection(t *testing.T) {
	r := newTestRegistry()
	s := &fakeSender{}
	r.Admit(s)

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	if got := s.last().Type; got != "connected" {
		t.Fatalf("first message type = %q, want connected", got)
	}
}

func TestAuthenticateBindsOwner(t *testing.T) {
	r := newTestRegistry()
	c, s := authedConn(t, r, "tok-alice")

	if c.OwnerID() != "alice" {
		t.Fatalf("owner = %q, want alice", c.OwnerID())
	}
	msg := s.last()
	if msg.Type != "authenticated" || msg.UserID != "alice" {
		t.Fatalf("unexpected ack %+v", msg)
	}
}

func TestAuthenticateFailureKeepsConnection(t *testing.T) {
	r := newTestRegistry()
	s := &fakeSender{}
	c := r.Admit(s)

	r.Authenticate(context.Background(), c, "bad-token")

	if r.Len() != 1 {
		t.Fatalf("connection dropped on auth failure")
	}
	if c.authenticated {
		t.Fatalf("connection marked authenticated after failure")
	}
	if got := s.last().Type; got != "auth_error" {
		t.Fatalf("last message type = %q, want auth_error", got)
	}
}

func TestSubscribeRequiresAuthentication(t *testing.T) {
	r := newTestRegistry()
	s := &fakeSender{}
	c := r.Admit(s)

	r.Subscribe(c, []string{TopicDashboard})

	if got := s.last().Type; got != "error" {
		t.Fatalf("last message type = %q, want error", got)
	}
	if len(c.subscriptions) != 0 {
		t.Fatalf("unauthenticated subscribe changed state")
	}
}

func TestBroadcastReachesOnlySubscribers(t *testing.T) {
	r := newTestRegistry()
	_, subscribed := authedConn(t, r, "tok-alice", TopicDashboard)
	_, other := authedConn(t, r, "tok-bob", TopicPricing)
	unauthed := &fakeSender{}
	r.Admit(unauthed)

	r.Broadcast(TopicDashboard, map[string]int{"n": 1})

	if got := len(subscribed.byType("update")); got != 1 {
		t.Fatalf("subscriber got %d updates, want 1", got)
	}
	if got := len(other.byType("update")); got != 0 {
		t.Fatalf("non-subscriber got %d updates, want 0", got)
	}
	if got := len(unauthed.byType("update")); got != 0 {
		t.Fatalf("unauthenticated conn got %d updates, want 0", got)
	}
}

func TestBroadcastIsolatesFailedConnections(t *testing.T) {
	r := newTestRegistry()
	_, healthy := authedConn(t, r, "tok-alice", TopicDashboard)
	failed, failedSender := authedConn(t, r, "tok-bob", TopicDashboard)
	failedSender.failing = true

	r.Broadcast(TopicDashboard, "payload")

	if got := len(healthy.byType("update")); got != 1 {
		t.Fatalf("healthy subscriber got %d updates, want 1", got)
	}
	if r.Len() != 1 {
		t.Fatalf("failed connection not removed, Len = %d", r.Len())
	}
	if failedSender.closed != 1 {
		t.Fatalf("failed sender closed %d times, want 1", failedSender.closed)
	}

	// Later broadcasts keep working for the survivor.
	r.Broadcast(TopicDashboard, "payload2")
	if got := len(healthy.byType("update")); got != 2 {
		t.Fatalf("healthy subscriber got %d updates after removal, want 2", got)
	}
	_ = failed
}

func TestBroadcastToOwnerIgnoresSubscriptions(t *testing.T) {
	r := newTestRegistry()
	_, alice1 := authedConn(t, r, "tok-alice", TopicDashboard)
	_, alice2 := authedConn(t, r, "tok-alice")
	_, bob := authedConn(t, r, "tok-bob", TopicDashboard)

	r.BroadcastToOwner("alice", TopicDashboard, "snap")

	if got := len(alice1.byType("update")); got != 1 {
		t.Fatalf("alice conn 1 got %d updates, want 1", got)
	}
	if got := len(alice2.byType("update")); got != 1 {
		t.Fatalf("alice conn 2 (no subscription) got %d updates, want 1", got)
	}
	if got := len(bob.byType("update")); got != 0 {
		t.Fatalf("bob got %d updates, want 0", got)
	}
}

func TestBroadcastToOwnerTopicHonorsSubscriptions(t *testing.T) {
	r := newTestRegistry()
	_, subscribed := authedConn(t, r, "tok-alice", TopicDashboard)
	_, unsubscribed := authedConn(t, r, "tok-alice")
	_, bob := authedConn(t, r, "tok-bob", TopicDashboard)

	r.BroadcastToOwnerTopic("alice", TopicDashboard, "snap")

	if got := len(subscribed.byType("update")); got != 1 {
		t.Fatalf("subscribed alice conn got %d updates, want 1", got)
	}
	if got := len(unsubscribed.byType("update")); got != 0 {
		t.Fatalf("unsubscribed alice conn got %d updates, want 0", got)
	}
	if got := len(bob.byType("update")); got != 0 {
		t.Fatalf("bob got %d updates, want 0", got)
	}
}

func TestOwnersSubscribedFiltersByTopic(t *testing.T) {
	r := newTestRegistry()
	authedConn(t, r, "tok-alice", TopicDashboard)
	authedConn(t, r, "tok-alice", TopicDashboard)
	authedConn(t, r, "tok-bob") // authenticated, no subscriptions
	r.Admit(&fakeSender{})      // unauthenticated

	owners := r.OwnersSubscribed(TopicDashboard)
	if len(owners) != 1 || owners[0] != "alice" {
		t.Fatalf("OwnersSubscribed = %v, want [alice]", owners)
	}
	if got := r.OwnersSubscribed(TopicPricing); len(got) != 0 {
		t.Fatalf("OwnersSubscribed(pricing) = %v, want empty", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	r := newTestRegistry()
	c, s := authedConn(t, r, "tok-alice", TopicDashboard, TopicPricing)

	r.Unsubscribe(c, []string{TopicDashboard, "never-subscribed"})
	r.Broadcast(TopicDashboard, "x")
	r.Broadcast(TopicPricing, "y")

	updates := s.byType("update")
	if len(updates) != 1 || updates[0].Topic != TopicPricing {
		t.Fatalf("unexpected updates after unsubscribe: %+v", updates)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	s := &fakeSender{}
	c := r.Admit(s)

	r.Remove(c)
	r.Remove(c)

	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
	if s.closed != 1 {
		t.Fatalf("sender closed %d times, want 1", s.closed)
	}
}

func TestOwnersAreDistinct(t *testing.T) {
	r := newTestRegistry()
	authedConn(t, r, "tok-alice")
	authedConn(t, r, "tok-alice")
	authedConn(t, r, "tok-bob")
	r.Admit(&fakeSender{}) // unauthenticated, not an owner

	owners := r.Owners()
	if len(owners) != 2 {
		t.Fatalf("Owners = %v, want 2 distinct", owners)
	}
}

func TestPublishMessageBroadcasts(t *testing.T) {
	r := newTestRegistry()
	_, s := authedConn(t, r, "tok-alice", TopicNotification)

	if err := r.PublishMessage(context.Background(), TopicNotification, "aggregated"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updates := s.byType("update")
	if len(updates) != 1 || updates[0].Topic != TopicNotification {
		t.Fatalf("unexpected updates: %+v", updates)
	}
}
