package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"finax/internal/models"
	"finax/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, Options{})

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 5 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_at_max", "/ws?interval=60s", 60 * time.Second},
		{"interval_too_large", "/ws?interval=2m", 5 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=60001", 5 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 5 * time.Second},
		{"interval_negative", "/ws?interval=-1s", 5 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 5 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

func TestCheckOrigin(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, Options{AllowedOrigins: []string{"https://app.finax.test"}})

	cases := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://app.finax.test", true},
		{"https://evil.test", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		if got := h.checkOrigin(req); got != tc.want {
			t.Errorf("origin %q: got %v, want %v", tc.origin, got, tc.want)
		}
	}
}

// --- websocket integration tests ---

func dashboardURL(t *testing.T, srv *httptest.Server, query url.Values) string {
	t.Helper()
	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/transactions/dashboard/ws"
	u.RawQuery = query.Encode()
	return u.String()
}

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func TestWebSocket_DashboardStream_InitialAndPeriodic(t *testing.T) {
	txs := &mockTransaction{dashboard: models.Dashboard{
		Balance: models.Balance{
			Balance: decimal.RequireFromString("150"),
			Income:  decimal.RequireFromString("200"),
			Outcome: decimal.RequireFromString("50"),
		},
		Transactions: []models.Transaction{{ID: "t-1"}},
	}}
	auth := &mockAuth{parseID: "u-1"}
	srv := httptest.NewServer(newTestRouter(&service.Service{Authorization: auth, Transaction: txs}))
	defer srv.Close()

	q := url.Values{}
	q.Set("interval_ms", "20") // fast ticks for the test
	q.Set("token", "qtok")

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(dashboardURL(t, srv, q), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	// Read initial dashboard
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != wsTypeDashboard || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var d map[string]any
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("unmarshal dashboard: %v", err)
	}
	if d["balance"] != 150.0 || d["income"] != 200.0 {
		t.Fatalf("unexpected dashboard: %v", d)
	}

	// Read a subsequent tick
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != wsTypeDashboard {
		t.Fatalf("expected type=dashboard, got %+v", env)
	}
}

func TestWebSocket_RequiresToken(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(&service.Service{Authorization: &mockAuth{parseErr: errors.New("bad")}}))
	defer srv.Close()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}

	_, resp, err := dialer.Dial(dashboardURL(t, srv, url.Values{}), nil)
	if err == nil {
		t.Fatal("expected handshake failure without token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}

	q := url.Values{}
	q.Set("token", "bad")
	_, resp, err = dialer.Dial(dashboardURL(t, srv, q), nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %v", err)
	}
}

func TestWebSocket_InitialDashboardError_Closes(t *testing.T) {
	txs := &mockTransaction{err: errors.New("boom")}
	srv := httptest.NewServer(newTestRouter(&service.Service{Authorization: &mockAuth{parseID: "u-1"}, Transaction: txs}))
	defer srv.Close()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(dashboardURL(t, srv, url.Values{}), authHeader("tok"))
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("expected error envelope, got %v", err)
	}
	if env.Type != wsTypeError || env.Error != errInternal {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	// The server closes right after reporting the failure
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
