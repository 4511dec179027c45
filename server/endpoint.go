package server

import (
	"net"
	"sync"
	"time"
)

// connEndpoint delivers notifications to a subscribed connection
type connEndpoint struct {
	conn         net.Conn
	writeTimeout time.Duration

	mu        sync.Mutex // serializes writes
	closeOnce sync.Once
	closeErr  error
}

func newConnEndpoint(conn net.Conn, writeTimeout time.Duration) *connEndpoint {
	return &connEndpoint{conn: conn, writeTimeout: writeTimeout}
}

// Send writes msg in full, bounded by the write timeout when one is set
func (e *connEndpoint) Send(msg []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.write(msg)
}

// registerAndAck runs register and writes ack while holding the write lock, so
// a notification triggered by the registration cannot overtake the ack.
func (e *connEndpoint) registerAndAck(register func(), ack []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	register()
	return e.write(ack)
}

func (e *connEndpoint) write(msg []byte) error {
	if e.writeTimeout > 0 {
		if err := e.conn.SetWriteDeadline(time.Now().Add(e.writeTimeout)); err != nil {
			return err
		}
		defer e.conn.SetWriteDeadline(time.Time{})
	}

	_, err := e.conn.Write(msg)
	return err
}

// Close closes the underlying connection once
func (e *connEndpoint) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.conn.Close()
	})
	return e.closeErr
}
