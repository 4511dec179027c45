package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blogem/corpdata-hub/models"
)

// ErrSubscriptionRejected is returned when the server does not acknowledge a subscription
var ErrSubscriptionRejected = errors.New("subscription rejected")

// NotificationHandler receives every pushed message as raw JSON
type NotificationHandler func(msg json.RawMessage) error

// Observer keeps a subscription open, reconnecting after failures
type Observer struct {
	Client        *Client
	ClientID      string
	RetryDelay    time.Duration // after a lost connection
	RejectedDelay time.Duration // after a refused subscription
	Handle        NotificationHandler
	Logger        logrus.FieldLogger
}

// NewObserver creates an observer with the default retry delays
func NewObserver(c *Client, clientID string, handle NotificationHandler) *Observer {
	return &Observer{
		Client:        c,
		ClientID:      clientID,
		RetryDelay:    30 * time.Second,
		RejectedDelay: 10 * time.Second,
		Handle:        handle,
		Logger:        c.Logger,
	}
}

// Run subscribes and delivers notifications until ctx is done
func (o *Observer) Run(ctx context.Context) error {
	for {
		err := o.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := o.RetryDelay
		if errors.Is(err, ErrSubscriptionRejected) {
			delay = o.RejectedDelay
		}
		o.Logger.WithError(err).Warnf("lost connection to the server, retrying in %s", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// listen runs one subscription until the connection fails
func (o *Observer) listen(ctx context.Context) error {
	o.Logger.WithField("addr", o.Client.Addr).Debug("connecting")
	conn, err := o.Client.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	request, err := json.Marshal(map[string]string{
		models.FieldAction:   models.ActionSubscribe,
		models.FieldClientID: o.ClientID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode subscription: %w", err)
	}
	if _, err := conn.Write(request); err != nil {
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	dec := json.NewDecoder(conn)
	var ack models.StatusResponse
	if err := dec.Decode(&ack); err != nil {
		return fmt.Errorf("failed to read subscription response: %w", err)
	}
	if ack.Status != "OK" {
		return fmt.Errorf("%w: %s", ErrSubscriptionRejected, ack.Message)
	}
	o.Logger.WithField("client_id", o.ClientID).Info("subscribed, listening for notifications")

	for {
		var msg json.RawMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("connection closed: %w", err)
		}
		if err := o.Handle(msg); err != nil {
			o.Logger.WithError(err).Error("failed to handle notification")
		}
	}
}
