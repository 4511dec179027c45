package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blogem/corpdata-hub/models"
)

// Version is reported by the client CLIs
const Version = "1.0"

const defaultDialTimeout = 10 * time.Second

// Client sends one request per connection to the data hub
type Client struct {
	Addr        string
	DialTimeout time.Duration
	Logger      logrus.FieldLogger
}

// New creates a client for the server at addr
func New(addr string, logger logrus.FieldLogger) *Client {
	return &Client{
		Addr:        addr,
		DialTimeout: defaultDialTimeout,
		Logger:      logger,
	}
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.Addr, err)
	}
	return conn, nil
}

// Do sends request and returns the raw response, read until the server
// closes the connection.
func (c *Client) Do(ctx context.Context, request map[string]any) ([]byte, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c.Logger.WithField("request", string(payload)).Debug("sending request")
	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	response, err := io.ReadAll(conn)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return response, nil
}

// EnsureClientID sets the UUID field when the request has none.
// It reports whether the field was added.
func EnsureClientID(request map[string]any, clientID string) bool {
	if _, ok := request[models.FieldClientID]; ok {
		return false
	}
	request[models.FieldClientID] = clientID
	return true
}

// Pretty re-indents a JSON document with four spaces. Numbers keep their
// exact text. It returns false when raw is not JSON.
func Pretty(raw []byte) ([]byte, bool) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "    "); err != nil {
		return raw, false
	}
	return buf.Bytes(), true
}

// MachineID identifies this host: the first non-loopback hardware address as
// a 48-bit integer, or a random uuid when there is none.
func MachineID() string {
	ifaces, err := net.Interfaces()
	if err == nil {
		for _, iface := range ifaces {
			if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) < 6 {
				continue
			}
			var node uint64
			for _, b := range iface.HardwareAddr[:6] {
				node = node<<8 | uint64(b)
			}
			if node != 0 {
				return strconv.FormatUint(node, 10)
			}
		}
	}
	return uuid.NewString()
}
