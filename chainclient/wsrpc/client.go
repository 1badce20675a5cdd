// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package wsrpc implements a minimal JSON-RPC 2.0 client over a websocket
// connection. The exporter is the only caller and issues requests one at a
// time, so responses are matched to requests in order without a dispatch loop.
package wsrpc

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	pingInterval = 20 * time.Second
	pingTimeout  = 20 * time.Second
	callTimeout  = 30 * time.Second
)

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Client is a JSON-RPC client bound to a single websocket connection.
// Call serializes request/response exchanges; Close may be called from
// another goroutine to abandon an in-flight call.
type Client struct {
	conn   *websocket.Conn
	mu     sync.Mutex // serializes Call exchanges
	nextID atomic.Uint64
	done   chan struct{}
	closed sync.Once
}

// Dial connects to the node's websocket endpoint. Accepted schemes are
// ws/wss, and http/https as aliases.
func Dial(rawURL string) (*Client, error) {
	endpoint, err := wsEndpoint(rawURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial [%v]", endpoint)
	}

	c := &Client{
		conn: conn,
		done: make(chan struct{}),
	}
	go c.keepAlive()
	return c, nil
}

func wsEndpoint(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(rawURL, "/"))
	if err != nil {
		return "", errors.Wrap(err, "parse node url")
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}

// Call performs one request/response exchange. Responses carrying an
// unexpected id (stale replies from an abandoned call) are skipped.
func (c *Client) Call(method string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID.Add(1)
	req := request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}

	c.conn.SetWriteDeadline(time.Now().Add(callTimeout))
	if err := c.conn.WriteJSON(&req); err != nil {
		return nil, errors.Wrapf(err, "write request [%v]", method)
	}

	c.conn.SetReadDeadline(time.Now().Add(callTimeout))
	for {
		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			return nil, errors.Wrapf(err, "read response [%v]", method)
		}
		if resp.ID != id {
			continue
		}
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	}
}

// keepAlive pings the node periodically, mirroring the websocket options the
// node expects for long-lived connections.
func (c *Client) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			// WriteControl is safe for concurrent use with WriteJSON.
			c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingTimeout))
		}
	}
}

// Close tears the connection down. In-flight calls fail with a read error.
func (c *Client) Close() {
	c.closed.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
