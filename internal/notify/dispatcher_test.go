package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type webhookRecorder struct {
	mu       sync.Mutex
	payloads []Payload
	queries  []string
}

func (w *webhookRecorder) handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var p Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			rw.WriteHeader(http.StatusBadRequest)
			return
		}
		w.mu.Lock()
		w.payloads = append(w.payloads, p)
		w.queries = append(w.queries, r.URL.RawQuery)
		w.mu.Unlock()
	}
}

func (w *webhookRecorder) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.payloads)
}

func TestPriceAlert_DeliversPayload(t *testing.T) {
	t.Parallel()

	rec := &webhookRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	d := NewDispatcher(NewClient(srv.URL, "", 0), Config{}, nil)
	d.PriceAlert("AK-47 | Redline (Field-Tested)", 24.5, 25)

	require.Eventually(t, func() bool { return rec.count() == 1 },
		2*time.Second, 10*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	got := rec.payloads[0]
	require.Equal(t, "AK-47 | Redline (Field-Tested)", got.Skin)
	require.InDelta(t, 24.5, got.Price, 1e-9)
	require.InDelta(t, 25.0, got.Threshold, 1e-9)
	require.NotEmpty(t, got.Timestamp)
	require.Empty(t, rec.queries[0], "no secret, no signature")
}

func TestPriceAlert_SignsWhenSecretConfigured(t *testing.T) {
	t.Parallel()

	rec := &webhookRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	d := NewDispatcher(NewClient(srv.URL, "hunter2", 0), Config{}, nil)
	d.PriceAlert("skin", 1, 2)

	require.Eventually(t, func() bool { return rec.count() == 1 },
		2*time.Second, 10*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Contains(t, rec.queries[0], "timestamp=")
	require.Contains(t, rec.queries[0], "sign=")
}

func TestPriceAlert_DedupWindowSuppressesRepeats(t *testing.T) {
	t.Parallel()

	rec := &webhookRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	d := NewDispatcher(NewClient(srv.URL, "", 0), Config{DedupWindow: time.Hour}, nil)
	d.PriceAlert("same skin", 24.5, 25)
	d.PriceAlert("same skin", 24.0, 25)
	d.PriceAlert("another skin", 5, 6)

	require.Eventually(t, func() bool { return rec.count() == 2 },
		2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 2, rec.count(), "repeat inside the window stays suppressed")
}

func TestPriceAlert_RateLimitDropsExcess(t *testing.T) {
	t.Parallel()

	rec := &webhookRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	d := NewDispatcher(NewClient(srv.URL, "", 0), Config{PerMinute: 1, Burst: 2}, nil)
	for i := 0; i < 5; i++ {
		d.PriceAlert(string(rune('a'+i)), 1, 2)
	}

	require.Eventually(t, func() bool { return rec.count() == 2 },
		2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 2, rec.count())
}

func TestClient_SendRequiresWebhook(t *testing.T) {
	t.Parallel()

	c := NewClient("", "", 0)
	require.Error(t, c.Send(t.Context(), Payload{Skin: "x"}))
}

func TestClient_SendSurfacesErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	err := c.Send(t.Context(), Payload{Skin: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}
