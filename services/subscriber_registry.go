package services

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/blogem/corpdata-hub/models"
)

// Endpoint is a subscriber's outbound channel. Endpoints are compared by
// identity, so implementations should be pointer types.
type Endpoint interface {
	Send(msg []byte) error
	Close() error
}

// EncodeFunc renders a message for the wire
type EncodeFunc func(v any) ([]byte, error)

// SubscriberRegistry is the set of connected subscribers. A single mutex guards
// membership and is never held while sending.
type SubscriberRegistry struct {
	mu          sync.Mutex
	subscribers map[Endpoint]string // endpoint -> declared client id
	encode      EncodeFunc
	logger      logrus.FieldLogger
}

// NewSubscriberRegistry creates an empty registry. A nil encode uses the wire encoding.
func NewSubscriberRegistry(encode EncodeFunc, logger logrus.FieldLogger) *SubscriberRegistry {
	if encode == nil {
		encode = models.EncodeWire
	}
	return &SubscriberRegistry{
		subscribers: make(map[Endpoint]string),
		encode:      encode,
		logger:      logger,
	}
}

// Subscribe adds ep. Adding an endpoint twice is a no-op; it reports whether ep was added.
func (r *SubscriberRegistry) Subscribe(ep Endpoint, clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subscribers[ep]; exists {
		return false
	}
	r.subscribers[ep] = clientID

	r.logger.WithFields(logrus.Fields{
		"client_id":   clientID,
		"subscribers": len(r.subscribers),
	}).Info("observer: new subscriber registered")
	return true
}

// Unsubscribe removes ep if present. Redundant and concurrent calls are safe.
func (r *SubscriberRegistry) Unsubscribe(ep Endpoint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	clientID, exists := r.subscribers[ep]
	if !exists {
		return false
	}
	delete(r.subscribers, ep)

	r.logger.WithFields(logrus.Fields{
		"client_id":   clientID,
		"subscribers": len(r.subscribers),
	}).Info("observer: subscriber removed")
	return true
}

// Len returns the number of registered subscribers
func (r *SubscriberRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers)
}

// Notify sends one update event carrying item to every subscriber. The message
// is encoded once and the same bytes go to every endpoint. Sends run in
// parallel so a stalled subscriber cannot delay the others; an endpoint whose
// send fails is unsubscribed and closed. It returns the number of successful deliveries.
func (r *SubscriberRegistry) Notify(item models.Item) (int, error) {
	snapshot := r.snapshot()
	if len(snapshot) == 0 {
		return 0, nil
	}

	msg, err := r.encode(models.Notification{Event: models.EventUpdate, Data: item})
	if err != nil {
		return 0, fmt.Errorf("failed to encode notification: %w", err)
	}

	r.logger.WithField("subscribers", len(snapshot)).Info("observer: notifying subscribers")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
		failed    []Endpoint
	)
	for ep, clientID := range snapshot {
		wg.Add(1)
		go func(ep Endpoint, clientID string) {
			defer wg.Done()
			if err := ep.Send(msg); err != nil {
				r.logger.WithError(err).WithField("client_id", clientID).
					Warn("observer: failed to send to subscriber, removing it")
				mu.Lock()
				failed = append(failed, ep)
				mu.Unlock()
				return
			}
			mu.Lock()
			delivered++
			mu.Unlock()
		}(ep, clientID)
	}
	wg.Wait()

	for _, ep := range failed {
		r.Unsubscribe(ep)
		ep.Close()
	}

	return delivered, nil
}

// CloseAll removes and closes every subscriber
func (r *SubscriberRegistry) CloseAll() {
	snapshot := r.snapshot()
	for ep := range snapshot {
		r.Unsubscribe(ep)
		ep.Close()
	}
}

// snapshot copies the membership under the lock
func (r *SubscriberRegistry) snapshot() map[Endpoint]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[Endpoint]string, len(r.subscribers))
	for ep, clientID := range r.subscribers {
		out[ep] = clientID
	}
	return out
}
