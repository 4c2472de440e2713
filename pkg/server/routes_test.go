package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-sinkform/pkg/i18n"
	"github.com/goliatone/go-sinkform/pkg/testsupport"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath("/admin"); got != "/admin/sinks" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("admin"); got != "/admin/sinks" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("/admin/", WithRoutePath("api/sinks")); got != "/admin/api/sinks" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_MountsUnderBasePath(t *testing.T) {
	catalog, err := i18n.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	mux := http.NewServeMux()
	pattern, err := RegisterRoutes(mux, "/admin", WithSinks(testsupport.Registry(t), catalog))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pattern != "/admin/sinks" {
		t.Fatalf("unexpected registered pattern: %q", pattern)
	}

	for _, target := range []string{pattern, pattern + "/TDSQLPOSTGRESQL/schema"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", target, rec.Code)
		}
	}
}

func TestRegisterRoutes_RequiresSinks(t *testing.T) {
	if _, err := RegisterRoutes(http.NewServeMux(), ""); err == nil {
		t.Fatalf("expected an error without a sink registry")
	}
	if _, err := RegisterRoutes(nil, ""); err == nil {
		t.Fatalf("expected an error without a mux")
	}
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	catalog, err := i18n.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := New(ln.Addr().String(), WithSinks(testsupport.Registry(t), catalog))
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	client := &http.Client{Timeout: 5 * time.Second}
	res, err := client.Get("http://" + ln.Addr().String() + "/sinks")
	if err != nil {
		cancel()
		t.Fatalf("request: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("server did not stop")
	}
}
