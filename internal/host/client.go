package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/deck/internal/models"
)

// ErrNotConnected is returned when pushing while no host connection is open.
var ErrNotConnected = errors.New("not connected to host")

const (
	eventWillAppear    = "willAppear"
	eventWillDisappear = "willDisappear"
	eventSetTitle      = "setTitle"

	// targetBoth renders the title on hardware and software displays.
	targetBoth = 0
)

// Options holds transport settings.
type Options struct {
	// Address is the host interface the websocket listens on.
	Address string
	// WriteTimeout bounds each outbound message.
	WriteTimeout time.Duration
}

// AppearHook runs when an instance of an action becomes visible.
type AppearHook func(ctx context.Context, inst Instance)

type registration struct {
	Event string `json:"event"`
	UUID  string `json:"uuid"`
}

type inboundEvent struct {
	Action  string          `json:"action"`
	Event   string          `json:"event"`
	Context string          `json:"context"`
	Device  string          `json:"device"`
	Payload json.RawMessage `json:"payload"`
}

type titlePayload struct {
	Title  string `json:"title"`
	Target int    `json:"target"`
}

type outboundEvent struct {
	Event   string       `json:"event"`
	Context string       `json:"context"`
	Payload titlePayload `json:"payload"`
}

// Client is the plugin side of the host websocket protocol.
type Client struct {
	args   Args
	opts   Options
	dir    *Directory
	dialer *websocket.Dialer
	logger *zap.Logger

	connMu sync.RWMutex
	conn   *websocket.Conn

	// writeMu serializes writers; gorilla connections allow one at a time.
	writeMu sync.Mutex

	hooksMu sync.RWMutex
	hooks   map[string][]AppearHook
}

// NewClient creates a client that records instance visibility in dir.
func NewClient(args Args, dir *Directory, opts Options, logger *zap.Logger) *Client {
	if opts.Address == "" {
		opts.Address = "127.0.0.1"
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Client{
		args: args,
		opts: opts,
		dir:  dir,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger.Named("host"),
		hooks:  make(map[string][]AppearHook),
	}
}

// RegisterAction declares an action identifier. Instances of unregistered
// actions are ignored.
func (c *Client) RegisterAction(actionID string) error {
	if err := c.dir.Register(actionID); err != nil {
		return err
	}
	c.logger.Info("Registered action", zap.String("action", actionID))
	return nil
}

// OnAppear adds a hook run, in its own goroutine, whenever an instance of
// actionID appears.
func (c *Client) OnAppear(actionID string, hook AppearHook) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks[actionID] = append(c.hooks[actionID], hook)
}

// Run connects to the host, registers the plugin and processes events until
// the connection closes or ctx is cancelled. Cancellation returns nil.
func (c *Client) Run(ctx context.Context) error {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(c.opts.Address, strconv.Itoa(c.args.Port)),
	}

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial host %s: %w", u.String(), err)
	}
	c.setConn(conn)
	defer func() {
		c.setConn(nil)
		conn.Close()
		c.dir.Reset()
	}()

	if err := c.write(ctx, registration{Event: c.args.RegisterEvent, UUID: c.args.PluginUUID}); err != nil {
		return fmt.Errorf("register plugin: %w", err)
	}
	c.logger.Info("Connected to host", zap.String("url", u.String()))

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("host connection closed: %w", err)
		}
		c.handle(ctx, data)
	}
}

func (c *Client) handle(ctx context.Context, data []byte) {
	var ev inboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		c.logger.Warn("Malformed host event", zap.Error(err))
		return
	}

	switch ev.Event {
	case eventWillAppear:
		inst := &instance{client: c, action: ev.Action, context: ev.Context}
		if !c.dir.Appear(ev.Action, inst) {
			c.logger.Debug("Ignoring instance of unregistered action",
				zap.String("action", ev.Action))
			return
		}
		c.logger.Debug("Instance appeared",
			zap.String("action", ev.Action),
			zap.String("context", ev.Context))

		c.hooksMu.RLock()
		hooks := c.hooks[ev.Action]
		c.hooksMu.RUnlock()
		for _, hook := range hooks {
			go hook(ctx, inst)
		}

	case eventWillDisappear:
		c.dir.Disappear(ev.Action, ev.Context)
		c.logger.Debug("Instance disappeared",
			zap.String("action", ev.Action),
			zap.String("context", ev.Context))

	default:
		c.logger.Debug("Unhandled host event", zap.String("event", ev.Event))
	}
}

// SetTitle pushes text to the instance identified by action and context ID.
func (c *Client) SetTitle(ctx context.Context, action, contextID string, text models.DisplayText) error {
	if !c.dir.Visible(action, contextID) {
		return ErrInstanceGone
	}
	return c.write(ctx, outboundEvent{
		Event:   eventSetTitle,
		Context: contextID,
		Payload: titlePayload{Title: text.Title(), Target: targetBoth},
	})
}

func (c *Client) write(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn := c.getConn()
	if conn == nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(c.opts.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

func (c *Client) getConn() *websocket.Conn {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn
}

// instance is an Instance backed by the client connection.
type instance struct {
	client  *Client
	action  string
	context string
}

func (i *instance) Context() string { return i.context }

func (i *instance) SetTitle(ctx context.Context, text models.DisplayText) error {
	return i.client.SetTitle(ctx, i.action, i.context, text)
}
