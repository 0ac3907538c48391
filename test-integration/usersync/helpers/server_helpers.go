package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/onsi/gomega"

	syncapp "github.com/stacklok/usersync/internal/app"
	"github.com/stacklok/usersync/internal/config"
	"github.com/stacklok/usersync/internal/status"
)

// ServerTestHelper manages the usersync server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	baseURL    string
	address    string
	httpClient *http.Client
	app        *syncapp.SyncApp
}

// NewServerTestHelper creates a new server test helper listening on a free local port
func NewServerTestHelper(ctx context.Context, configPath string) (*ServerTestHelper, error) {
	port, err := freePort()
	if err != nil {
		return nil, err
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)

	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		address:    address,
		baseURL:    "http://" + address,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// BuildApp loads the configuration and builds the application without starting it
func (s *ServerTestHelper) BuildApp() (*syncapp.SyncApp, error) {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app, err := syncapp.NewSyncApp(s.ctx,
		syncapp.WithConfig(cfg),
		syncapp.WithAddress(s.address),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build app: %w", err)
	}
	return app, nil
}

// StartServer starts the usersync server programmatically
func (s *ServerTestHelper) StartServer() error {
	app, err := s.BuildApp()
	if err != nil {
		return err
	}
	s.app = app

	// Start the server in a goroutine (non-blocking)
	go func() {
		if err := app.Start(); err != nil {
			// The test will fail when it tries to connect
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()

	return nil
}

// StopServer gracefully stops the usersync server
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits for the server to be ready to accept requests
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 200*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// GetStatus fetches /status. It returns nil while no pass has been recorded.
func (s *ServerTestHelper) GetStatus() (*status.SyncStatus, error) {
	resp, err := s.httpClient.Get(s.baseURL + "/status")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, nil
	case http.StatusOK:
		var syncStatus status.SyncStatus
		if err := json.NewDecoder(resp.Body).Decode(&syncStatus); err != nil {
			return nil, err
		}
		return &syncStatus, nil
	default:
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}
}

// WaitForPhase waits until /status reports the given phase
func (s *ServerTestHelper) WaitForPhase(phase status.SyncPhase, timeout time.Duration) *status.SyncStatus {
	var last *status.SyncStatus
	gomega.Eventually(func() (status.SyncPhase, error) {
		syncStatus, err := s.GetStatus()
		if err != nil || syncStatus == nil {
			return "", err
		}
		last = syncStatus
		return syncStatus.Phase, nil
	}, timeout, 200*time.Millisecond).Should(gomega.Equal(phase))
	return last
}

// GetMetrics fetches the Prometheus exposition
func (s *ServerTestHelper) GetMetrics() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/metrics")
}

// GetBaseURL returns the base URL of the server
func (s *ServerTestHelper) GetBaseURL() string {
	return s.baseURL
}

// WriteConfigYAML writes a YAML configuration file for testing
func WriteConfigYAML(dir string, db DatabaseSettings, upstreamURL string, maxRetries int) string {
	configContent := fmt.Sprintf(`database:
  host: %s
  port: %d
  user: %s
  password: %s
  database: %s
  sslMode: disable

sources:
  directoryURL: %s
  creditCardURL: %s
  timeout: 5s

sync:
  interval: 1h
  retryCooldown: 10ms
  maxRetries: %d

telemetry:
  enabled: true
  metrics:
    enabled: true
`, db.Host, db.Port, db.User, db.Password, db.Database, upstreamURL, upstreamURL, maxRetries)

	configPath := filepath.Join(dir, "config.yaml")
	gomega.Expect(os.WriteFile(configPath, []byte(configContent), 0600)).To(gomega.Succeed())
	return configPath
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find a free port: %w", err)
	}
	defer func() {
		_ = l.Close()
	}()
	return l.Addr().(*net.TCPAddr).Port, nil
}
