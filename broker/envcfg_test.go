package broker

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvConfig_GetChecksLowercase(t *testing.T) {
	cfg := EnvConfig{"http_proxy": "http://lower:1", "HTTPS_PROXY": "http://upper:1"}

	if got := cfg.Get("HTTP_PROXY"); got != "http://lower:1" {
		t.Errorf("Get(HTTP_PROXY) = %q, want lowercase fallback", got)
	}
	if got := cfg.Get("HTTPS_PROXY"); got != "http://upper:1" {
		t.Errorf("Get(HTTPS_PROXY) = %q, want literal hit", got)
	}
	if got := cfg.Get("NO_SUCH_KEY"); got != "" {
		t.Errorf("Get(NO_SUCH_KEY) = %q, want empty", got)
	}
}

func TestLoadEnvConfig_Disabled(t *testing.T) {
	t.Setenv("PYAPIARY_TEST_KEY", "value")

	cfg, err := LoadEnvConfig(false)
	if err != nil {
		t.Fatalf("LoadEnvConfig: %v", err)
	}
	if len(cfg) != 0 {
		t.Fatalf("expected empty config, got %d entries", len(cfg))
	}
}

func TestLoadEnvConfig_MergesProcessEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PYAPIARY_TEST_KEY", "from-env")

	cfg, err := LoadEnvConfig(true)
	if err != nil {
		t.Fatalf("LoadEnvConfig: %v", err)
	}
	if got := cfg.Get("PYAPIARY_TEST_KEY"); got != "from-env" {
		t.Errorf("Get = %q, want from-env", got)
	}
}

func TestLoadEnvConfig_FileOverridesEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("DOMAINTOOLS_API_KEY", "from-env")

	content := "domaintools_api_key: from-file\nextra_setting: hello\n"
	if err := os.WriteFile(filepath.Join(dir, "pyapiary.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write settings file: %v", err)
	}

	cfg, err := LoadEnvConfig(true)
	if err != nil {
		t.Fatalf("LoadEnvConfig: %v", err)
	}
	if got := cfg.Get("DOMAINTOOLS_API_KEY"); got != "from-file" {
		t.Errorf("Get(DOMAINTOOLS_API_KEY) = %q, want from-file", got)
	}
	if got := cfg.Get("EXTRA_SETTING"); got != "hello" {
		t.Errorf("Get(EXTRA_SETTING) = %q, want hello", got)
	}
}

func TestLoadEnvConfig_MissingFileIsNotAnError(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadEnvConfig(true)
	if err != nil {
		t.Fatalf("LoadEnvConfig: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
}

// chdirTemp moves the working directory to a fresh temp dir so settings-file
// lookup is hermetic, restoring the original on cleanup.
func chdirTemp(t *testing.T) string {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return dir
}
