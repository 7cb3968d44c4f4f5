package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mockHTTPRecorder はHTTPMetricsRecorderのモック実装。
type mockHTTPRecorder struct {
	statuses  []int
	latencies []time.Duration
}

func (m *mockHTTPRecorder) RecordHTTPStatus(statusCode int) {
	m.statuses = append(m.statuses, statusCode)
}

func (m *mockHTTPRecorder) RecordRequestLatency(d time.Duration) {
	m.latencies = append(m.latencies, d)
}

// TestMetricsMiddleware_RecordsStatusAndLatency はステータスコードとレイテンシが記録されることを検証する。
func TestMetricsMiddleware_RecordsStatusAndLatency(t *testing.T) {
	recorder := &mockHTTPRecorder{}

	handler := NewMetricsMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/activities/unknown/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusNotFound {
		t.Errorf("statuses = %v, want [404]", recorder.statuses)
	}
	if len(recorder.latencies) != 1 {
		t.Fatalf("latencies = %v, want 1 entry", recorder.latencies)
	}
	if recorder.latencies[0] < 0 {
		t.Errorf("latency = %v, want non-negative", recorder.latencies[0])
	}
}

// TestMetricsMiddleware_DefaultStatus200 はWriteHeader未呼び出し時に200が記録されることを検証する。
func TestMetricsMiddleware_DefaultStatus200(t *testing.T) {
	recorder := &mockHTTPRecorder{}

	handler := NewMetricsMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusOK {
		t.Errorf("statuses = %v, want [200]", recorder.statuses)
	}
}
