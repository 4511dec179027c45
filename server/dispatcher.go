package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blogem/corpdata-hub/models"
	"github.com/blogem/corpdata-hub/services"
	"github.com/blogem/corpdata-hub/userctx"
)

// Version is reported in the startup banner
const Version = "1.0"

var errNotObject = errors.New("request is not a JSON object")

// Config holds the dispatcher settings
type Config struct {
	Addr            string
	MaxRequestBytes int64
	NotifyTimeout   time.Duration
}

// Stats are the dispatcher counters exposed to operators
type Stats struct {
	ConnectionsAccepted int64 `json:"connections_accepted"`
	ConnectionsActive   int64 `json:"connections_active"`
	Requests            int64 `json:"requests_total"`
	Subscribers         int   `json:"subscribers"`
}

// Dispatcher accepts connections, serves one request on each and keeps
// subscriber connections open for push notifications.
type Dispatcher struct {
	cfg          Config
	proxy        services.DataProxy
	audit        services.AuditLogger
	registry     *services.SubscriberRegistry
	logger       logrus.FieldLogger
	newSessionID func() string

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup

	accepted atomic.Int64
	active   atomic.Int64
	requests atomic.Int64
}

// New creates a dispatcher on top of the services
func New(cfg Config, srvs *services.Services, logger logrus.FieldLogger) *Dispatcher {
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = 64 * 1024
	}
	return &Dispatcher{
		cfg:          cfg,
		proxy:        srvs.Data,
		audit:        srvs.Audit,
		registry:     srvs.Subscribers,
		logger:       logger,
		newSessionID: func() string { return uuid.New().String() },
		conns:        make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on the configured TCP address and serves until ctx is done
func (d *Dispatcher) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.cfg.Addr, err)
	}
	return d.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done. Each connection is handled
// on its own goroutine. On shutdown, open connections and subscribers are closed
// and Serve waits for their handlers to return.
func (d *Dispatcher) Serve(ctx context.Context, ln net.Listener) error {
	d.mu.Lock()
	d.listener = ln
	d.mu.Unlock()

	d.logger.WithField("addr", ln.Addr().String()).Infof("🚀 Server version %s listening", Version)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		ln.Close()
	}()

	var tempDelay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				d.shutdown()
				d.logger.Info("Server stopped")
				return nil
			}

			// Back off on transient accept failures instead of exiting
			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else if tempDelay *= 2; tempDelay > time.Second {
				tempDelay = time.Second
			}
			d.logger.WithError(err).Warnf("accept failed, retrying in %s", tempDelay)
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0

		d.accepted.Add(1)
		d.track(conn)
		d.wg.Add(1)
		go d.handleConnection(ctx, conn)
	}
}

// Addr returns the listening address, or nil before Serve is called
func (d *Dispatcher) Addr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listener == nil {
		return nil
	}
	return d.listener.Addr()
}

// Stats returns a snapshot of the dispatcher counters
func (d *Dispatcher) Stats() Stats {
	return Stats{
		ConnectionsAccepted: d.accepted.Load(),
		ConnectionsActive:   d.active.Load(),
		Requests:            d.requests.Load(),
		Subscribers:         d.registry.Len(),
	}
}

func (d *Dispatcher) handleConnection(ctx context.Context, conn net.Conn) {
	defer d.wg.Done()
	d.active.Add(1)
	defer d.active.Add(-1)

	remote := conn.RemoteAddr().String()
	log := d.logger.WithField("remote", remote)
	ctx = userctx.SetRemoteAddr(ctx, remote)

	var endpoint *connEndpoint
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("unexpected error processing request")
		}
		if endpoint != nil {
			d.registry.Unsubscribe(endpoint)
			endpoint.Close()
		} else {
			conn.Close()
		}
		d.untrack(conn)
		log.Debug("connection closed")
	}()

	req, err := d.readRequest(conn)
	if errors.Is(err, io.EOF) {
		log.Debug("client disconnected without sending data")
		return
	}
	if err != nil {
		log.WithError(err).Info("rejecting invalid JSON request")
		d.respond(conn, log, models.ErrorResponse{
			Error:   models.KindInvalidJSON,
			Message: "the request is not valid JSON",
		}, models.StatusBadRequest)
		return
	}
	d.requests.Add(1)

	clientID := req.ClientID()
	sessionID := d.newSessionID()
	action := req.Action()
	ctx = userctx.SetClientID(ctx, clientID)
	ctx = userctx.SetSessionID(ctx, sessionID)
	log = log.WithFields(logrus.Fields{
		"client_id":  clientID,
		"session_id": sessionID,
		"action":     action,
	})

	if action == models.ActionSubscribe {
		endpoint = d.subscribe(ctx, conn, log, clientID, sessionID)
		if endpoint == nil {
			return
		}
		log.Info("client is now a subscriber, waiting for disconnect")
		// Subscribers send nothing further; reading only detects the close
		io.Copy(io.Discard, conn)
		log.Info("subscriber disconnected")
		return
	}

	payload, status := d.dispatch(ctx, log, req, action, clientID, sessionID)
	d.respond(conn, log, payload, status)
}

// readRequest decodes exactly one JSON object from the connection, however
// the bytes are split across reads.
func (d *Dispatcher) readRequest(conn net.Conn) (models.Request, error) {
	dec := json.NewDecoder(io.LimitReader(conn, d.cfg.MaxRequestBytes))
	dec.UseNumber()

	var req models.Request
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNotObject
	}
	return req, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, log logrus.FieldLogger, req models.Request, action, clientID, sessionID string) (any, int) {
	switch action {
	case models.ActionGet:
		id, ok := req.GetID()
		if !ok {
			return missingID("the 'get' action requires an 'ID'")
		}
		item, err := d.proxy.GetItem(ctx, id, clientID, sessionID)
		return result(item, err)

	case models.ActionSet:
		if !req.HasItemID() {
			return missingID("the 'set' action requires an 'id' in the object")
		}
		item, err := d.proxy.SetItem(ctx, req.Item(), clientID, sessionID)
		if err == nil {
			log.Info("set succeeded, notifying subscribers")
			if _, nerr := d.registry.Notify(item); nerr != nil {
				log.WithError(nerr).Error("failed to notify subscribers")
			}
		}
		return result(item, err)

	case models.ActionList:
		items, err := d.proxy.ListItems(ctx, clientID, sessionID)
		return result(items, err)

	default:
		return models.ErrorResponse{
			Error:   models.KindUnknownAction,
			Message: fmt.Sprintf("action '%s' not recognized", action),
		}, models.StatusBadRequest
	}
}

// subscribe audits the request, registers the connection and acknowledges it.
// The acknowledgement is written before any notification can reach the endpoint.
func (d *Dispatcher) subscribe(ctx context.Context, conn net.Conn, log logrus.FieldLogger, clientID, sessionID string) *connEndpoint {
	d.audit.Record(ctx, clientID, sessionID, models.ActionSubscribe, "subscription requested")

	ack, err := models.EncodeWire(models.StatusResponse{
		Status:  "OK",
		Message: fmt.Sprintf("client %s subscribed", clientID),
	})
	if err != nil {
		log.WithError(err).Error("failed to encode subscription acknowledgement")
		return nil
	}

	endpoint := newConnEndpoint(conn, d.cfg.NotifyTimeout)
	err = endpoint.registerAndAck(func() { d.registry.Subscribe(endpoint, clientID) }, ack)
	if err != nil {
		log.WithError(err).Warn("failed to send subscription acknowledgement")
		// The deferred cleanup still unsubscribes and closes the endpoint
		return endpoint
	}
	log.WithField("status", models.StatusOK).Info("response sent")
	return endpoint
}

func (d *Dispatcher) respond(conn net.Conn, log logrus.FieldLogger, payload any, status int) {
	data, err := models.EncodeWire(payload)
	if err != nil {
		log.WithError(err).Error("failed to encode response")
		status = models.StatusServerErr
		data, _ = models.EncodeWire(models.ErrorResponse{
			Error:   models.KindDataError,
			Message: "the response could not be encoded",
		})
	}

	if _, err := conn.Write(data); err != nil {
		log.WithError(err).Warn("failed to send response")
		return
	}
	log.WithField("status", status).Info("response sent")
}

func (d *Dispatcher) track(conn net.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns[conn] = struct{}{}
}

func (d *Dispatcher) untrack(conn net.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.conns, conn)
}

func (d *Dispatcher) shutdown() {
	d.registry.CloseAll()

	d.mu.Lock()
	for conn := range d.conns {
		conn.Close()
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// result converts a proxy outcome into a response body and status
func result(payload any, err error) (any, int) {
	if err == nil {
		return payload, models.StatusOK
	}
	var actionErr *models.ActionError
	if errors.As(err, &actionErr) {
		return actionErr.Response(), actionErr.Status
	}
	return models.ErrorResponse{Error: models.KindDBError, Message: err.Error()}, models.StatusServerErr
}

func missingID(message string) (any, int) {
	return models.ErrorResponse{Error: models.KindMissingID, Message: message}, models.StatusBadRequest
}
