package realtime

import (
	"context"
	"sync"
	"time"

	domrepo "HostPulse/internal/domain/repository"
	applogger "HostPulse/pkg/logger"
)

// Sender delivers outbound envelopes to one client. The websocket transport
// implements it; tests use in-memory sinks.
type Sender interface {
	Send(msg ServerMessage) error
	Close()
}

// Conn is the registry's view of one live connection. All fields are owned
// by the Registry and mutated only under its lock.
type Conn struct {
	sender        Sender
	authenticated bool
	ownerID       string
	subscriptions map[string]struct{}
	lastActivity  time.Time
}

// OwnerID returns the account bound by the last successful authenticate.
func (c *Conn) OwnerID() string { return c.ownerID }

// Registry is the authoritative set of live connections and their
// subscription state.
type Registry struct {
	mu       sync.Mutex
	conns    map[*Conn]struct{}
	verifier domrepo.TokenVerifier
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	now      func() time.Time
}

func NewRegistry(verifier domrepo.TokenVerifier, metrics domrepo.Metrics, logger *applogger.Logger) *Registry {
	return &Registry{
		conns:    make(map[*Conn]struct{}),
		verifier: verifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Admit registers a new, unauthenticated connection and acknowledges it.
func (r *Registry) Admit(sender Sender) *Conn {
	c := &Conn{
		sender:        sender,
		subscriptions: make(map[string]struct{}),
		lastActivity:  r.now(),
	}
	r.mu.Lock()
	r.conns[c] = struct{}{}
	n := len(r.conns)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordConnections(n)
	}
	if err := sender.Send(ConnectedMessage()); err != nil {
		r.Remove(c)
		return c
	}
	return c
}

// Authenticate verifies the token with the identity service. On failure the
// connection stays open and unauthenticated; only an auth_error goes back to
// this client. A fresh authenticate overwrites the previous owner binding.
func (r *Registry) Authenticate(ctx context.Context, c *Conn, token string) {
	ownerID, err := r.verifier.Verify(ctx, token)

	r.mu.Lock()
	if _, ok := r.conns[c]; !ok {
		r.mu.Unlock()
		return
	}
	c.lastActivity = r.now()
	if err == nil {
		c.authenticated = true
		c.ownerID = ownerID
	}
	r.mu.Unlock()

	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordError("auth")
		}
		r.send(c, AuthErrorMessage("invalid token"))
		return
	}
	r.send(c, AuthenticatedMessage(ownerID))
}

// Subscribe adds topics to an authenticated connection. Duplicates are
// no-ops. Unauthenticated callers get an error envelope and no state change.
func (r *Registry) Subscribe(c *Conn, topics []string) {
	r.mu.Lock()
	if _, ok := r.conns[c]; !ok {
		r.mu.Unlock()
		return
	}
	if !c.authenticated {
		r.mu.Unlock()
		r.send(c, ErrorMessage("authenticate before subscribing"))
		return
	}
	c.lastActivity = r.now()
	for _, t := range topics {
		c.subscriptions[t] = struct{}{}
	}
	r.mu.Unlock()
	r.send(c, SubscribedMessage(topics))
}

// Unsubscribe removes topics; unknown topics are ignored.
func (r *Registry) Unsubscribe(c *Conn, topics []string) {
	r.mu.Lock()
	if _, ok := r.conns[c]; !ok {
		r.mu.Unlock()
		return
	}
	if !c.authenticated {
		r.mu.Unlock()
		r.send(c, ErrorMessage("authenticate before unsubscribing"))
		return
	}
	c.lastActivity = r.now()
	for _, t := range topics {
		delete(c.subscriptions, t)
	}
	r.mu.Unlock()
	r.send(c, UnsubscribedMessage(topics))
}

// Remove purges a connection. Safe to call repeatedly.
func (r *Registry) Remove(c *Conn) {
	r.mu.Lock()
	_, ok := r.conns[c]
	if ok {
		delete(r.conns, c)
	}
	n := len(r.conns)
	r.mu.Unlock()

	if !ok {
		return
	}
	c.sender.Close()
	if r.metrics != nil {
		r.metrics.RecordConnections(n)
	}
}

// Broadcast delivers data to every authenticated connection subscribed to
// topic at call time. A failed send removes that connection only.
func (r *Registry) Broadcast(topic string, data any) {
	msg := UpdateMessage(topic, data, r.now())

	r.mu.Lock()
	targets := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		if !c.authenticated {
			continue
		}
		if _, ok := c.subscriptions[topic]; ok {
			targets = append(targets, c)
		}
	}
	r.mu.Unlock()

	delivered := 0
	for _, c := range targets {
		if err := c.sender.Send(msg); err != nil {
			if r.logger != nil {
				r.logger.Warn("broadcast send failed, removing connection",
					applogger.String("topic", topic),
					applogger.Error(err),
				)
			}
			r.Remove(c)
			continue
		}
		delivered++
	}
	if r.metrics != nil {
		r.metrics.RecordBroadcast(topic, delivered)
	}
}

// BroadcastToOwner delivers data to every authenticated connection of one
// account regardless of subscriptions.
func (r *Registry) BroadcastToOwner(ownerID, topic string, data any) {
	msg := UpdateMessage(topic, data, r.now())

	r.mu.Lock()
	targets := make([]*Conn, 0, 4)
	for c := range r.conns {
		if c.authenticated && c.ownerID == ownerID {
			targets = append(targets, c)
		}
	}
	r.mu.Unlock()

	delivered := 0
	for _, c := range targets {
		if err := c.sender.Send(msg); err != nil {
			r.Remove(c)
			continue
		}
		delivered++
	}
	if r.metrics != nil {
		r.metrics.RecordBroadcast(topic, delivered)
	}
}

// BroadcastToOwnerTopic delivers data to the connections of one account
// that are authenticated and subscribed to topic. Scheduled pushes use it
// so clients opt in per topic; BroadcastToOwner stays unfiltered for
// account-wide notifications.
func (r *Registry) BroadcastToOwnerTopic(ownerID, topic string, data any) {
	msg := UpdateMessage(topic, data, r.now())

	r.mu.Lock()
	targets := make([]*Conn, 0, 4)
	for c := range r.conns {
		if !c.authenticated || c.ownerID != ownerID {
			continue
		}
		if _, ok := c.subscriptions[topic]; ok {
			targets = append(targets, c)
		}
	}
	r.mu.Unlock()

	delivered := 0
	for _, c := range targets {
		if err := c.sender.Send(msg); err != nil {
			r.Remove(c)
			continue
		}
		delivered++
	}
	if r.metrics != nil {
		r.metrics.RecordBroadcast(topic, delivered)
	}
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Owners returns the distinct account IDs with at least one authenticated
// connection.
func (r *Registry) Owners() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	out := make([]string, 0, len(r.conns))
	for c := range r.conns {
		if !c.authenticated {
			continue
		}
		if _, ok := seen[c.ownerID]; ok {
			continue
		}
		seen[c.ownerID] = struct{}{}
		out = append(out, c.ownerID)
	}
	return out
}

// OwnersSubscribed returns the distinct account IDs with at least one
// authenticated connection subscribed to topic.
func (r *Registry) OwnersSubscribed(topic string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	out := make([]string, 0, len(r.conns))
	for c := range r.conns {
		if !c.authenticated {
			continue
		}
		if _, ok := c.subscriptions[topic]; !ok {
			continue
		}
		if _, ok := seen[c.ownerID]; ok {
			continue
		}
		seen[c.ownerID] = struct{}{}
		out = append(out, c.ownerID)
	}
	return out
}

// PublishMessage implements the log collector's Publisher: aggregated error
// logs are pushed to subscribers as regular topic updates.
func (r *Registry) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	r.Broadcast(topic, payload)
	return nil
}

func (r *Registry) send(c *Conn, msg ServerMessage) {
	if err := c.sender.Send(msg); err != nil {
		r.Remove(c)
	}
}
