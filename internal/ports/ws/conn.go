// Package ws carries the agent wire protocol over a WebSocket connection.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/prasantadh/callbreak-np/internal/agent"
)

const (
	pingInterval = 15 * time.Second
	writeTimeout = 10 * time.Second
	readLimit    = 1 << 16
)

// Conn is an agent.Transport over one WebSocket. A reader and a writer
// goroutine own the socket; Send and Receive only touch channels.
type Conn struct {
	conn   *websocket.Conn
	out    chan agent.ServerMessage
	in     *agent.ReplySlot
	done   chan struct{}
	logger logrus.FieldLogger

	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ agent.Transport = (*Conn)(nil)

// Accept upgrades the request and starts the connection goroutines.
func Accept(w http.ResponseWriter, r *http.Request, opts *websocket.AcceptOptions, logger logrus.FieldLogger) (*Conn, error) {
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		return nil, err
	}
	return NewConn(c, logger), nil
}

// NewConn takes ownership of c.
func NewConn(c *websocket.Conn, logger logrus.FieldLogger) *Conn {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c.SetReadLimit(readLimit)
	conn := &Conn{
		conn:   c,
		out:    make(chan agent.ServerMessage, 1),
		in:     agent.NewReplySlot(),
		done:   make(chan struct{}),
		logger: logger,
	}
	conn.wg.Add(2)
	go conn.writer()
	go conn.reader()
	return conn
}

func (c *Conn) writer() {
	defer c.wg.Done()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case msg := <-c.out:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := wsjson.Write(ctx, c.conn, msg)
			cancel()
			if err != nil {
				c.logger.WithError(err).Warn("websocket write failed")
				c.shutdown(websocket.StatusInternalError, "write failed")
				return
			}
		case <-ping.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.logger.WithError(err).Debug("websocket ping failed")
				c.shutdown(websocket.StatusGoingAway, "ping failed")
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Conn) reader() {
	defer c.wg.Done()
	for {
		_, data, err := c.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == -1 {
				c.logger.WithError(err).Debug("websocket read failed")
			}
			c.shutdown(websocket.StatusNormalClosure, "")
			return
		}
		msg, err := agent.DecodeClientMessage(data)
		if err != nil {
			// An empty message fails its kind check, so the pending request
			// falls back at once instead of waiting out the timeout.
			c.logger.WithError(err).Warn("undecodable client message")
			msg = agent.ClientMessage{}
		}
		if !c.in.Offer(msg) {
			c.logger.Warn("unsolicited client message dropped")
		}
	}
}

// Send queues msg for the writer goroutine. Frames read before it are
// discarded.
func (c *Conn) Send(ctx context.Context, msg agent.ServerMessage) error {
	c.in.Expect()
	select {
	case c.out <- msg:
		return nil
	case <-c.done:
		c.in.Settle()
		return agent.ErrTransportClosed
	case <-ctx.Done():
		c.in.Settle()
		return ctx.Err()
	}
}

// Receive returns the reply to the last request sent. Frames arriving after
// it returns are dropped.
func (c *Conn) Receive(ctx context.Context) (agent.ClientMessage, error) {
	defer c.in.Settle()
	select {
	case m := <-c.in.Replies():
		return m, nil
	case <-c.done:
		return agent.ClientMessage{}, agent.ErrTransportClosed
	case <-ctx.Done():
		return agent.ClientMessage{}, ctx.Err()
	}
}

// Done is closed once the connection is gone.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Close ends the connection with a normal closure and waits for both goroutines.
func (c *Conn) Close() error {
	c.shutdown(websocket.StatusNormalClosure, "game over")
	c.wg.Wait()
	return nil
}

func (c *Conn) shutdown(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.conn.Close(code, reason); err != nil {
			c.logger.WithError(err).Debug("websocket close")
		}
	})
}
