// docprocwait starts the docproc server (optionally) and polls /health
// until it reports healthy, for use in launch scripts and CI.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"time"
)

const (
	pollInterval = 2 * time.Second
	maxAttempts  = 30
)

func main() {
	var (
		binary = flag.String("start", "", "server binary to spawn before polling (empty: poll only)")
		port   = flag.String("port", env("DOCPROC_PORT", "8001"), "port the service listens on")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *binary != "" {
		cmd := exec.Command(*binary)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = append(os.Environ(), "DOCPROC_PORT="+*port)
		if err := cmd.Start(); err != nil {
			logger.Error("start server", "binary", *binary, "error", err)
			os.Exit(1)
		}
		logger.Info("server started", "binary", *binary, "pid", cmd.Process.Pid)
	}

	url := fmt.Sprintf("http://localhost:%s/health", *port)
	client := &http.Client{Timeout: 5 * time.Second}

	for i := 1; i <= maxAttempts; i++ {
		health, err := checkHealth(client, url)
		if err == nil {
			logger.Info("service healthy",
				"port", *port,
				"service", health["service"],
				"version", health["version"],
				"integration", health["integration"])
			return
		}
		logger.Info("waiting for service", "attempt", i, "max", maxAttempts)
		if i < maxAttempts {
			time.Sleep(pollInterval)
		}
	}

	logger.Error("service failed to start",
		"url", url,
		"waited", maxAttempts*int(pollInterval.Seconds()))
	os.Exit(1)
}

func checkHealth(client *http.Client, url string) (map[string]string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, err
	}
	return health, nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
