// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wsrpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handle func(conn *websocket.Conn, req request)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for {
			var req request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			handle(conn, req)
		}
	}))
}

func TestClient_Call(t *testing.T) {
	ts := newTestServer(t, func(conn *websocket.Conn, req request) {
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "state_queryStorage", req.Method)

		conn.WriteJSON(&response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  json.RawMessage(`{"index":812}`),
		})
	})
	defer ts.Close()

	client, err := Dial(ts.URL)
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Call("state_queryStorage", []any{"Staking", "ActiveEra", []any{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":812}`, string(result))
}

func TestClient_CallError(t *testing.T) {
	ts := newTestServer(t, func(conn *websocket.Conn, req request) {
		conn.WriteJSON(&response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: -32601, Message: "method not found"},
		})
	})
	defer ts.Close()

	client, err := Dial(ts.URL)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Call("state_bogus", nil)
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
}

func TestClient_SkipsStaleResponses(t *testing.T) {
	ts := newTestServer(t, func(conn *websocket.Conn, req request) {
		// a stale reply from an earlier abandoned call arrives first
		conn.WriteJSON(&response{JSONRPC: "2.0", ID: req.ID + 100, Result: json.RawMessage(`"stale"`)})
		conn.WriteJSON(&response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`"fresh"`)})
	})
	defer ts.Close()

	client, err := Dial(ts.URL)
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Call("system_chain", nil)
	require.NoError(t, err)
	assert.Equal(t, `"fresh"`, string(result))
}

func TestDialRejectsUnknownScheme(t *testing.T) {
	_, err := Dial("ftp://mainnet.ternoa.network")
	require.Error(t, err)
}

func TestWSEndpointSchemes(t *testing.T) {
	for in, want := range map[string]string{
		"wss://mainnet.ternoa.network":   "wss://mainnet.ternoa.network",
		"https://mainnet.ternoa.network": "wss://mainnet.ternoa.network",
		"http://127.0.0.1:9944":          "ws://127.0.0.1:9944",
		"ws://127.0.0.1:9944/":           "ws://127.0.0.1:9944",
	} {
		got, err := wsEndpoint(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
