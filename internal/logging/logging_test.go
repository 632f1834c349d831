package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	var buf bytes.Buffer
	slog.SetDefault(New(&buf, true))
	return &buf
}

func TestNewDevMode(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Debug("test debug")
	logger.Info("test info")

	if !bytes.Contains(buf.Bytes(), []byte("test debug")) {
		t.Error("expected debug message visible in dev mode")
	}
	if !bytes.Contains(buf.Bytes(), []byte("test info")) {
		t.Error("expected info message visible in dev mode")
	}
}

func TestNewProdMode(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug("hidden")
	logger.Info("shown")

	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Error("debug message logged in prod mode")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"msg":"shown"`)) {
		t.Errorf("expected JSON output, got %s", buf.String())
	}
}

func TestSetupProdMode(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	Setup(false)
	slog.Info("prod test")
}

func TestContextHandlerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false).With("component", "test")

	logger.InfoContext(WithRequestID(context.Background(), "req-123"), "hello")

	if !bytes.Contains(buf.Bytes(), []byte(`"request_id":"req-123"`)) {
		t.Errorf("expected request id in %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"component":"test"`)) {
		t.Errorf("expected attrs kept in %s", buf.String())
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ping", nil))
	if seen == "" {
		t.Fatal("expected generated request id")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}

	req := httptest.NewRequest("GET", "/api/ping", nil)
	req.Header.Set(RequestIDHeader, "from-caller")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "from-caller" {
		t.Errorf("request id = %q, want caller's", seen)
	}
}

func TestRequestLogger(t *testing.T) {
	buf := captureLogs(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := RequestID(RequestLogger(inner))

	req := httptest.NewRequest("GET", "/api/properties", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	output := buf.Bytes()
	if len(output) == 0 {
		t.Fatal("expected log output")
	}
	if !bytes.Contains(output, []byte("GET")) {
		t.Error("expected method in log")
	}
	if !bytes.Contains(output, []byte("/api/properties")) {
		t.Error("expected path in log")
	}
	if !bytes.Contains(output, []byte("request_id=abc")) {
		t.Error("expected request id in log")
	}
}

func TestRequestLoggerSkipsNoisyPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			buf := captureLogs(t)

			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			RequestLogger(inner).ServeHTTP(rec, httptest.NewRequest("GET", path, nil))

			if buf.Len() > 0 {
				t.Errorf("expected no log for %s", path)
			}
		})
	}
}

func TestStatusWriterCapturesStatus(t *testing.T) {
	buf := captureLogs(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	handler := RequestLogger(inner)

	req := httptest.NewRequest("GET", "/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !bytes.Contains(buf.Bytes(), []byte("404")) {
		t.Error("expected 404 status in log")
	}
	if !bytes.Contains(buf.Bytes(), []byte("level=WARN")) {
		t.Error("expected 4xx logged at warn")
	}
}

func TestRequestLoggerRecordsBytes(t *testing.T) {
	buf := captureLogs(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
		_, _ = w.Write([]byte(" world"))
	})
	RequestLogger(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/ping", nil))

	if !bytes.Contains(buf.Bytes(), []byte("bytes=11")) {
		t.Errorf("expected bytes=11 in %s", buf.String())
	}
}

func TestRemoteIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		fwd    string
		want   string
	}{
		{"remote addr", "10.0.0.5:4321", "", "10.0.0.5"},
		{"forwarded", "10.0.0.5:4321", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"no port", "unix", "", "unix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.fwd != "" {
				req.Header.Set("X-Forwarded-For", tt.fwd)
			}
			if got := remoteIP(req); got != tt.want {
				t.Errorf("remoteIP = %q, want %q", got, tt.want)
			}
		})
	}
}
