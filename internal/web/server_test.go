package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sweeney/countdown-timer/internal/fsm"
	"github.com/sweeney/countdown-timer/internal/gpio"
	"github.com/sweeney/countdown-timer/internal/logger"
	"github.com/sweeney/countdown-timer/internal/logic"
	"github.com/sweeney/countdown-timer/internal/status"
)

func newTestServer(t *testing.T, panel Panel) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PWMTickUs:   1000,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, panel, logger.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func countdownStatus() fsm.Status {
	return fsm.Status{
		State:     logic.StateCountdown,
		SessionID: "s-1",
		Remaining: logic.Duration{Minutes: 1, Seconds: 30},
		Display:   logic.DefaultDisplayMode(),
		ADC:       1023,
		Duty:      5,
		Counts:    logic.SessionCounts{Started: 1},
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(countdownStatus())
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.State != "COUNTDOWN" || sj.Status.Remaining != "01:30" {
		t.Errorf("got state=%q remaining=%q", sj.Status.State, sj.Status.Remaining)
	}
	if sj.Status.Indicator.Mode != "BLINK" || sj.Status.Indicator.DutyTicks != 5 {
		t.Errorf("indicator: got %+v", sj.Status.Indicator)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("MQTT should be connected")
	}
}

func TestHTMLEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(countdownStatus())

	for _, path := range []string{"/", "/index.html"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status: got %d", path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s Content-Type: got %q", path, ct)
		}
		for _, want := range []string{"Countdown Timer", "COUNTDOWN", "01:30", "BLINK", "s-1"} {
			if !strings.Contains(string(body), want) {
				t.Errorf("%s: body missing %q", path, want)
			}
		}
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestPanelRoutesAbsentWithoutPanel(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/api/buttons/pb1?pressed=true", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestPanelButton(t *testing.T) {
	panel := gpio.NewPanel(0)
	ts, _ := newTestServer(t, panel)

	resp, err := http.Post(ts.URL+"/api/buttons/pb3?pressed=true", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status: got %d, want 204", resp.StatusCode)
	}
	if s, _ := panel.Read(); !s.PB3 || s.PB1 || s.PB2 {
		t.Errorf("panel: got %+v", s)
	}

	resp, err = http.Post(ts.URL+"/api/buttons/pb3?pressed=false", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if s, _ := panel.Read(); s.PB3 {
		t.Error("PB3 should be released")
	}
}

func TestPanelButtonErrors(t *testing.T) {
	ts, _ := newTestServer(t, gpio.NewPanel(0))

	tests := []struct {
		path string
		want int
	}{
		{"/api/buttons/pb7", http.StatusNotFound},
		{"/api/buttons/pb1?pressed=maybe", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, err := http.Post(ts.URL+tt.path, "", nil)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s: got %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestPanelADC(t *testing.T) {
	panel := gpio.NewPanel(0)
	ts, _ := newTestServer(t, panel)

	put := func(body string) int {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/adc", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := put(`{"value": 700}`); code != http.StatusNoContent {
		t.Fatalf("status: got %d, want 204", code)
	}
	if v, _ := panel.ReadAnalog(); v != 700 {
		t.Errorf("adc: got %d, want 700", v)
	}

	for _, body := range []string{`{"value": 4000}`, `{}`, `not json`} {
		if code := put(body); code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", body, code)
		}
	}
	if v, _ := panel.ReadAnalog(); v != 700 {
		t.Errorf("rejected requests must not change the value, got %d", v)
	}
}

func TestParseInterval(t *testing.T) {
	cases := []struct {
		u    string
		want time.Duration
	}{
		{"/ws", time.Second},
		{"/ws?interval=200ms", 200 * time.Millisecond},
		{"/ws?interval_ms=150", 150 * time.Millisecond},
		{"/ws?interval=20s", time.Second},
		{"/ws?interval=1ms", time.Second},
		{"/ws?interval_ms=NaN", time.Second},
		{"/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, tc.u, nil)
		if got := parseInterval(c); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.u, got, tc.want)
		}
	}
}

func TestWebSocketStream(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(countdownStatus())

	u, _ := url.Parse(ts.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = "interval=100ms"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() status.StatusJSON {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var env struct {
			Type string            `json:"type"`
			Data status.StatusJSON `json:"data"`
		}
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("read: %v", err)
		}
		if env.Type != "status" {
			t.Fatalf("type: got %q", env.Type)
		}
		return env.Data
	}

	if got := read(); got.Status.Remaining != "01:30" {
		t.Errorf("initial: got %q", got.Status.Remaining)
	}

	st := countdownStatus()
	st.Remaining = logic.Duration{Minutes: 1, Seconds: 29}
	tr.Update(st)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if read().Status.Remaining == "01:29" {
			return
		}
	}
	t.Error("update was not streamed")
}
