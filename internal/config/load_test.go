package config

import (
	"os"
	"strings"
	"testing"
)

const validJSON = `{"service":{"http_addr":":8080","admin_addr":":9100"},"auth":{"username":"test-user","password":"test-password","token":"test-access-token"},"artifact":{"content":"test-config-file-content VNOI ICPC"}}`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	file := t.TempDir() + "/" + name
	if err := os.WriteFile(file, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return file
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "cfg.json", validJSON))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cfg.Service.AdminAddr != ":9100" || cfg.Auth.Token != "test-access-token" {
		t.Fatalf("cfg: %#v", cfg)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	data := "service:\n  http_addr: \":8080\"\nauth:\n  username: test-user\n  password: test-password\n  token: test-access-token\nartifact:\n  content: |\n    [Interface]\n    Address = 10.0.0.2/32\n"
	cfg, err := LoadConfig(writeFile(t, "cfg.yaml", data))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cfg.Artifact.Content != "[Interface]\nAddress = 10.0.0.2/32\n" {
		t.Fatalf("content: %q", cfg.Artifact.Content)
	}
}

func TestLoadConfigBadJSON(t *testing.T) {
	if _, err := LoadConfig(writeFile(t, "cfg.json", "{")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	if _, err := LoadConfig(writeFile(t, "cfg.yml", "service: [")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/no/such/file.json"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadConfigInvalidContent(t *testing.T) {
	if _, err := LoadConfig(writeFile(t, "cfg.json", `{"service":{"http_addr":":8080"}}`)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadConfigSchemaUnknownField(t *testing.T) {
	data := `{"service":{"http_addr":":8080"},"auth":{"username":"u","password":"p","token":"t","ttl":5},"artifact":{"content":"x"}}`
	_, err := LoadConfig(writeFile(t, "cfg.json", data))
	if err == nil || !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("err: %v", err)
	}
}

func TestLoadConfigSchemaWrongType(t *testing.T) {
	data := `{"service":{"http_addr":8080},"auth":{"username":"u","password":"p","token":"t"},"artifact":{"content":"x"}}`
	_, err := LoadConfig(writeFile(t, "cfg.json", data))
	if err == nil || !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("err: %v", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv(EnvHTTPAddr, "127.0.0.1:9999")
	t.Setenv(EnvToken, "env-token")
	cfg, err := LoadConfig(writeFile(t, "cfg.json", validJSON))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cfg.Service.HTTPAddr != "127.0.0.1:9999" || cfg.Auth.Token != "env-token" {
		t.Fatalf("cfg: %#v", cfg)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvAdminAddr:    ":9100",
		EnvUsername:     "env-user",
		EnvPassword:     "env-pass",
		EnvArtifactPath: "/etc/wg/client.conf",
	}
	cfg := baseValidConfig()
	applyEnvOverrides(&cfg, func(k string) string { return env[k] })
	if cfg.Service.AdminAddr != ":9100" || cfg.Auth.Username != "env-user" || cfg.Auth.Password != "env-pass" {
		t.Fatalf("cfg: %#v", cfg)
	}
	if cfg.Artifact.Path != "/etc/wg/client.conf" || cfg.Artifact.Content != "" {
		t.Fatalf("artifact: %#v", cfg.Artifact)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("err: %v", err)
	}
}

func TestApplyEnvNoop(t *testing.T) {
	cfg := baseValidConfig()
	applyEnvOverrides(&cfg, func(string) string { return "" })
	if cfg != baseValidConfig() {
		t.Fatalf("cfg changed: %#v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	file := writeFile(t, ".env", "CONFIGGATE_TEST_DOTENV=from-file\n")
	t.Setenv("CONFIGGATE_TEST_DOTENV", "")
	os.Unsetenv("CONFIGGATE_TEST_DOTENV")
	if err := LoadDotEnv(file); err != nil {
		t.Fatalf("err: %v", err)
	}
	if got := os.Getenv("CONFIGGATE_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("env: %q", got)
	}
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	file := writeFile(t, ".env", "CONFIGGATE_TEST_DOTENV=from-file\n")
	t.Setenv("CONFIGGATE_TEST_DOTENV", "from-env")
	if err := LoadDotEnv(file); err != nil {
		t.Fatalf("err: %v", err)
	}
	if got := os.Getenv("CONFIGGATE_TEST_DOTENV"); got != "from-env" {
		t.Fatalf("env: %q", got)
	}
}

func TestLoadDotEnvMissing(t *testing.T) {
	if err := LoadDotEnv(""); err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if err := LoadDotEnv("/no/such/.env"); err == nil {
		t.Fatalf("expected error")
	}
}
