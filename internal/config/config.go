package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"configgate/internal/auth"
)

const (
	DefaultHTTPAddr = "localhost:8080"

	defaultUsername = "test-user"
	defaultPassword = "test-password"
	defaultToken    = "test-access-token"
	defaultArtifact = "test-config-file-content VNOI ICPC"
)

type Config struct {
	Service  ServiceConfig  `json:"service" yaml:"service"`
	Auth     AuthConfig     `json:"auth" yaml:"auth"`
	Artifact ArtifactConfig `json:"artifact" yaml:"artifact"`
}

type ServiceConfig struct {
	HTTPAddr  string `json:"http_addr" yaml:"http_addr"`
	AdminAddr string `json:"admin_addr" yaml:"admin_addr"`
}

type AuthConfig struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Token    string `json:"token" yaml:"token"`
}

// ArtifactConfig names the payload served on /config. Exactly one of
// Content and Path is set.
type ArtifactConfig struct {
	Content string `json:"content" yaml:"content"`
	Path    string `json:"path" yaml:"path"`
}

// Default returns the reference configuration used when no file is given.
func Default() Config {
	return Config{
		Service:  ServiceConfig{HTTPAddr: DefaultHTTPAddr},
		Auth:     AuthConfig{Username: defaultUsername, Password: defaultPassword, Token: defaultToken},
		Artifact: ArtifactConfig{Content: defaultArtifact},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Service.HTTPAddr) == "" {
		return errors.New("service.http_addr required")
	}
	if c.Auth.Username == "" {
		return errors.New("auth.username required")
	}
	if c.Auth.Password == "" {
		return errors.New("auth.password required")
	}
	if c.Auth.Token == "" {
		return errors.New("auth.token required")
	}
	if strings.ContainsAny(c.Auth.Token, " \t\r\n") {
		return errors.New("auth.token must not contain whitespace")
	}
	hasContent := c.Artifact.Content != ""
	hasPath := c.Artifact.Path != ""
	if hasPath && strings.TrimSpace(c.Artifact.Path) == "" {
		return errors.New("artifact.path must not be blank")
	}
	if hasContent && hasPath {
		return errors.New("artifact.content and artifact.path are mutually exclusive")
	}
	if !hasContent && !hasPath {
		return errors.New("artifact.content or artifact.path required")
	}
	return nil
}

var readFile = os.ReadFile

// Settings resolves the artifact and returns the immutable values the
// service runs with.
func (c Config) Settings() (Settings, error) {
	if err := c.Validate(); err != nil {
		return Settings{}, err
	}
	artifact := []byte(c.Artifact.Content)
	if c.Artifact.Path != "" {
		data, err := readFile(c.Artifact.Path)
		if err != nil {
			return Settings{}, fmt.Errorf("read artifact: %w", err)
		}
		artifact = data
	}
	cred := auth.Credential{Username: c.Auth.Username, Password: c.Auth.Password}
	return NewSettings(cred, c.Auth.Token, artifact), nil
}
