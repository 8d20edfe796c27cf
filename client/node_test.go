package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// method handles a single JSON-RPC method of a fake node. Returning a non
// nil error sends back an error response.
type method func(params []json.RawMessage) (interface{}, *jsonResponseError)

// fakeNode is an HTTP server answering JSON-RPC 2.0 requests with the
// registered methods.
type fakeNode struct {
	t       testing.TB
	srv     *httptest.Server
	mu      sync.Mutex
	methods map[string]method
	calls   []string
}

func newFakeNode(t testing.TB) *fakeNode {
	n := &fakeNode{t: t, methods: make(map[string]method)}
	n.srv = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.srv.Close)
	return n
}

func (n *fakeNode) handle(name string, m method) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.methods[name] = m
}

func (n *fakeNode) called() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func (n *fakeNode) rpc() *JSONRPC {
	return NewJSONRPC(n.srv.URL)
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Version string            `json:"jsonrpc"`
		ID      uint64            `json:"id"`
		Method  string            `json:"method"`
		Params  []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Version != "2.0" || r.Method != "POST" {
		http.Error(w, "not a json-rpc 2.0 request", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	m, ok := n.methods[req.Method]
	n.calls = append(n.calls, req.Method)
	n.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		resp["error"] = &jsonResponseError{Code: -32601, Message: "Method not found"}
	} else if result, rerr := m(req.Params); rerr != nil {
		resp["error"] = rerr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		n.t.Errorf("cannot write response: %s", err)
	}
}

// param decodes the parameter at the given position. It is called by
// method handlers, outside of the test goroutine, so it must not stop the
// test.
func param(t testing.TB, params []json.RawMessage, pos int, dest interface{}) {
	t.Helper()
	if pos >= len(params) {
		t.Errorf("missing parameter %d", pos)
		return
	}
	if err := json.Unmarshal(params[pos], dest); err != nil {
		t.Errorf("parameter %d: %s", pos, err)
	}
}
