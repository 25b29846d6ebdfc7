package main

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	contents := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q
tool_cache_dir = %q
api_bind = "127.0.0.1:7591"
api_token = "test-token"

[aws]
region = "us-east-1"
bucket = "test-bucket"
table = "test-table"
`,
		filepath.Join(base, "work"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "tools"),
	)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func runAgainstServer(t *testing.T, server *httptest.Server, args ...string) (string, error) {
	t.Helper()
	cfgPath := writeTestConfig(t)
	full := append([]string{
		"--config", cfgPath,
		"--address", server.Listener.Addr().String(),
		"--token", "test-token",
	}, args...)
	return runCommand(t, full...)
}
