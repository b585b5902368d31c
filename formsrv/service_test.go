package formsrv

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// testConfig returns a configuration with a fresh database in a temporary
// directory.
func testConfig(t *testing.T, port uint16) *Config {
	cfg := &Config{
		Port:       port,
		CookieName: "test-cookie",
		DB:         DBConfig{Path: filepath.Join(t.TempDir(), "formsrv.db")},
		Auth:       AuthConfig{Secret: "test-secret"},
	}
	cfg.SetDefaults(nil)
	return cfg
}

func TestServiceFailInit(t *testing.T) {
	cfg := testConfig(t, 4250)
	cfg.DB.Driver = "postgres"
	if _, err := NewService(cfg, nil); err == nil {
		t.Fatal("Service init succeeded with unsupported driver; should have failed")
	}
}

func TestServiceStartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	core, logs := observer.New(zap.InfoLevel)
	srv, err := NewService(testConfig(t, 4251), zap.New(core))
	if err != nil {
		t.Fatalf("Failed to initialise service: %v", err)
	}
	srv.Start()

	var resp *http.Response
	for idx := 0; idx < 50; idx++ {
		if resp, err = http.Get("http://localhost:4251/"); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Service did not answer: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Unexpected status for home page: %d", resp.StatusCode)
	}
	http.DefaultClient.CloseIdleConnections()

	srv.Stop()

	for _, msg := range []string{
		"Initialising database",
		"Starting mail worker",
		"Starting web service",
		"Stopping web service",
		"Stopping mail worker",
		"Closing database connection",
		"Service stopped",
	} {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Errorf("Missing log message %q", msg)
		}
	}
}

func TestServiceSetLogger(t *testing.T) {
	cfg := testConfig(t, 4253)
	cfg.DB.ShowSQL = true
	srv, err := NewService(cfg, nil)
	if err != nil {
		t.Fatalf("Failed to initialise service: %v", err)
	}
	core, logs := observer.New(zap.InfoLevel)
	srv.SetLogger(zap.New(core))
	srv.Start()

	rr := request(srv, "POST", "/auth/signup", url.Values{
		"email":    {"nina@example.com"},
		"password": {testPassword},
		"role":     {"client"},
	}, nil)
	if rr.Code != http.StatusFound {
		t.Fatalf("Sign up failed with status %d", rr.Code)
	}
	srv.Stop()

	if logs.FilterMessage("Confirmation link").FilterField(zap.String("email", "nina@example.com")).Len() != 1 {
		t.Error("Confirmation link not logged to replaced logger")
	}
	if logs.FilterMessage("Service stopped").Len() != 1 {
		t.Error("Lifecycle not logged to replaced logger")
	}
	var sql bool
	for _, e := range logs.All() {
		if strings.Contains(e.Message, "INSERT INTO") {
			sql = true
		}
	}
	if !sql {
		t.Error("Statements not logged to replaced logger")
	}
}

func TestServiceRun(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, err := NewService(testConfig(t, 4252), nil)
	if err != nil {
		t.Fatalf("Failed to initialise service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	addr := fmt.Sprintf("http://localhost:%d/auth/login", srv.Config.Port)
	for idx := 0; idx < 50; idx++ {
		if resp, err := http.Get(addr); err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	http.DefaultClient.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
