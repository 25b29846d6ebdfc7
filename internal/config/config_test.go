package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
[paths]
api_token = "secret"

[aws]
region = "us-east-1"
bucket = "clips"
table = "media"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if cfg.Paths.APIBind != defaultAPIBind {
		t.Fatalf("expected default api bind, got %q", cfg.Paths.APIBind)
	}
	if cfg.Tool.DownloadURL != defaultToolDownloadURL {
		t.Fatalf("expected default tool download url, got %q", cfg.Tool.DownloadURL)
	}
	if cfg.Logging.Format != "text" || cfg.Logging.Level != "info" {
		t.Fatalf("expected default logging settings, got %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("expected work dir to be expanded, got %q", cfg.Paths.WorkDir)
	}
}

func TestLoadRequiresAPIToken(t *testing.T) {
	_, _, _, err := Load(writeConfig(t, `
[aws]
region = "us-east-1"
bucket = "clips"
table = "media"
`))
	if err == nil {
		t.Fatal("expected error for missing api token")
	}
	if !strings.Contains(err.Error(), "api_token") {
		t.Fatalf("expected api_token in error, got %v", err)
	}
}

func TestLoadRequiresBucketAndTable(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing bucket",
			body: "[paths]\napi_token = \"x\"\n[aws]\nregion = \"us-east-1\"\ntable = \"media\"\n",
			want: "bucket",
		},
		{
			name: "missing table",
			body: "[paths]\napi_token = \"x\"\n[aws]\nregion = \"us-east-1\"\nbucket = \"clips\"\n",
			want: "table",
		},
		{
			name: "missing region",
			body: "[paths]\napi_token = \"x\"\n[aws]\nbucket = \"clips\"\ntable = \"media\"\n",
			want: "region",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsLoneCredential(t *testing.T) {
	_, _, _, err := Load(writeConfig(t, minimalConfig+"\n"))
	if err != nil {
		t.Fatalf("baseline config should load: %v", err)
	}
	_, _, _, err = Load(writeConfig(t, strings.Replace(minimalConfig, `region = "us-east-1"`, "region = \"us-east-1\"\naccess_key_id = \"AKIA\"", 1)))
	if err == nil || !strings.Contains(err.Error(), "together") {
		t.Fatalf("expected paired-credential error, got %v", err)
	}
}

func TestLoadEnvTokenFallback(t *testing.T) {
	t.Setenv("MEDIAVAULT_API_TOKEN", "from-env")
	cfg, _, _, err := Load(writeConfig(t, `
[aws]
region = "us-east-1"
bucket = "clips"
table = "media"
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "from-env" {
		t.Fatalf("expected token from environment, got %q", cfg.Paths.APIToken)
	}
}

func TestLoadRejectsBadLoggingFormat(t *testing.T) {
	_, _, _, err := Load(writeConfig(t, minimalConfig+"\n[logging]\nformat = \"yaml\"\n"))
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging format error, got %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ToolCacheDir = filepath.Join(base, "tools")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir, cfg.Paths.ToolCacheDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s to exist: %v", dir, err)
		}
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("first WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := expandPath("~/vault")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, "vault") {
		t.Fatalf("expected home-joined path, got %q", got)
	}
}
