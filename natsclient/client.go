// Package natsclient manages the NATS connection behind the JetStream KV
// store backend, with a small circuit breaker around connection attempts.
package natsclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/navith/genreguide/errors"
)

// ConnectionStatus represents the state of the NATS connection
type ConnectionStatus int

// Possible connection statuses
const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
	StatusCircuitOpen
)

// String returns the string representation of ConnectionStatus
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusCircuitOpen:
		return "circuit_open"
	default:
		return "unknown"
	}
}

// Error messages
var (
	ErrNotConnected = stderrors.New("not connected to NATS")
	ErrCircuitOpen  = stderrors.New("circuit breaker is open")
)

// Client manages a NATS connection and its JetStream context
type Client struct {
	url    string
	status atomic.Value // stores ConnectionStatus
	logger *slog.Logger

	conn *nats.Conn
	js   jetstream.JetStream

	// Circuit breaker
	failures         atomic.Int32
	backoff          atomic.Int64 // time.Duration
	circuitThreshold int32
	maxBackoff       time.Duration

	// Connection options
	maxReconnects int
	reconnectWait time.Duration
	pingInterval  time.Duration
	timeout       time.Duration
	username      string
	password      string
	token         string
	clientName    string

	mu     sync.RWMutex
	closed atomic.Bool
}

// NewClient creates a new NATS client with optional configuration
func NewClient(url string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		url:              url,
		logger:           slog.Default(),
		maxReconnects:    -1,
		reconnectWait:    2 * time.Second,
		pingInterval:     30 * time.Second,
		circuitThreshold: 5,
		maxBackoff:       time.Minute,
		timeout:          5 * time.Second,
		clientName:       "genreguide",
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapInvalid(err, "Client", "NewClient", "apply option")
		}
	}
	c.logger = c.logger.With("component", "natsclient")

	c.status.Store(StatusDisconnected)
	c.backoff.Store(int64(time.Second))

	return c, nil
}

// URL returns the NATS server URL
func (c *Client) URL() string {
	return c.url
}

// Status returns the current connection status
func (c *Client) Status() ConnectionStatus {
	return c.status.Load().(ConnectionStatus)
}

func (c *Client) setStatus(status ConnectionStatus) {
	c.status.Store(status)
}

// IsHealthy reports whether the connection is up
func (c *Client) IsHealthy() bool {
	return c.Status() == StatusConnected
}

// GetConnection returns the current NATS connection
func (c *Client) GetConnection() *nats.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// recordFailure counts a failed attempt and opens the circuit past the threshold.
func (c *Client) recordFailure() {
	if c.failures.Add(1) < c.circuitThreshold {
		return
	}
	current := c.Status()
	if current == StatusCircuitOpen || !c.status.CompareAndSwap(current, StatusCircuitOpen) {
		return
	}

	wait := time.Duration(c.backoff.Load())
	next := wait * 2
	if next > c.maxBackoff {
		next = c.maxBackoff
	}
	c.backoff.Store(int64(next))
	c.failures.Store(0)

	c.logger.Warn("circuit breaker opened", "backoff", wait)
	time.AfterFunc(wait, func() {
		c.status.CompareAndSwap(StatusCircuitOpen, StatusDisconnected)
	})
}

func (c *Client) resetCircuit() {
	c.failures.Store(0)
	c.backoff.Store(int64(time.Second))
}

func (c *Client) connectionOptions() []nats.Option {
	opts := []nats.Option{
		nats.Name(c.clientName),
		nats.MaxReconnects(c.maxReconnects),
		nats.ReconnectWait(c.reconnectWait),
		nats.PingInterval(c.pingInterval),
		nats.Timeout(c.timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if c.closed.Load() {
				return
			}
			c.setStatus(StatusReconnecting)
			c.logger.Warn("disconnected from NATS", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			c.setStatus(StatusConnected)
			c.logger.Info("reconnected to NATS")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.setStatus(StatusDisconnected)
		}),
	}

	if c.username != "" {
		opts = append(opts, nats.UserInfo(c.username, c.password))
	}
	if c.token != "" {
		opts = append(opts, nats.Token(c.token))
	}
	return opts
}

// Connect establishes connection to NATS server
func (c *Client) Connect(ctx context.Context) error {
	if c.Status() == StatusCircuitOpen {
		return ErrCircuitOpen
	}

	c.setStatus(StatusConnecting)
	c.logger.Info("connecting to NATS", "url", c.url)

	type result struct {
		conn *nats.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := nats.Connect(c.url, c.connectionOptions()...)
		done <- result{conn, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			c.recordFailure()
			c.status.CompareAndSwap(StatusConnecting, StatusDisconnected)
			return errors.WrapTransient(r.err, "Client", "Connect", "establish connection")
		}
		js, err := jetstream.New(r.conn)
		if err != nil {
			r.conn.Close()
			c.setStatus(StatusDisconnected)
			return errors.WrapFatal(err, "Client", "Connect", "initialize jetstream")
		}
		c.mu.Lock()
		c.conn = r.conn
		c.js = js
		c.mu.Unlock()
	case <-ctx.Done():
		c.recordFailure()
		c.status.CompareAndSwap(StatusConnecting, StatusDisconnected)
		go func() {
			if r := <-done; r.conn != nil {
				r.conn.Close()
			}
		}()
		return errors.WrapTransient(ctx.Err(), "Client", "Connect", "connection cancelled")
	}

	c.setStatus(StatusConnected)
	c.resetCircuit()
	c.logger.Info("connected to NATS", "url", c.url)
	return nil
}

// Close drains and closes the connection
func (c *Client) Close(_ context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.password = ""
	c.token = ""

	if c.conn == nil {
		return nil
	}
	err := c.conn.Drain()
	c.conn = nil
	c.js = nil
	c.setStatus(StatusDisconnected)
	if err != nil {
		return errors.WrapTransient(err, "Client", "Close", "drain connection")
	}
	return nil
}

// Ping round-trips to the server; used as the store health check.
func (c *Client) Ping(ctx context.Context) error {
	conn := c.GetConnection()
	if conn == nil || !conn.IsConnected() {
		return ErrNotConnected
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := conn.FlushTimeout(timeout); err != nil {
		return errors.WrapTransient(err, "Client", "Ping", "flush")
	}
	return nil
}

// JetStream returns the JetStream context
func (c *Client) JetStream() (jetstream.JetStream, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.js == nil {
		return nil, ErrNotConnected
	}
	return c.js, nil
}

// CreateKeyValueBucket creates or gets a KV bucket with configuration
func (c *Client) CreateKeyValueBucket(ctx context.Context, cfg jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	js, err := c.JetStream()
	if err != nil {
		return nil, err
	}

	if bucket, err := js.KeyValue(ctx, cfg.Bucket); err == nil {
		return bucket, nil
	}

	bucket, err := js.CreateKeyValue(ctx, cfg)
	if stderrors.Is(err, jetstream.ErrBucketExists) {
		bucket, err = js.KeyValue(ctx, cfg.Bucket)
	}
	if err != nil {
		return nil, errors.WrapTransient(err, "Client", "CreateKeyValueBucket",
			fmt.Sprintf("create bucket %s", cfg.Bucket))
	}
	c.logger.Info("KV bucket ready", "bucket", cfg.Bucket)
	return bucket, nil
}

// GetKeyValueBucket gets an existing KV bucket
func (c *Client) GetKeyValueBucket(ctx context.Context, name string) (jetstream.KeyValue, error) {
	js, err := c.JetStream()
	if err != nil {
		return nil, err
	}

	bucket, err := js.KeyValue(ctx, name)
	if stderrors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, errors.WrapFatal(errors.ErrBucketNotFound, "Client", "GetKeyValueBucket",
			fmt.Sprintf("open bucket %s", name))
	}
	if err != nil {
		return nil, errors.WrapTransient(err, "Client", "GetKeyValueBucket", fmt.Sprintf("open bucket %s", name))
	}
	return bucket, nil
}
