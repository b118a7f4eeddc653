package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// LoadConfig reads a JSON or YAML settings file, checks it against the
// embedded schema, applies CONFIGGATE_* environment overrides and
// validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := decode(path, data)
	if err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg, os.Getenv)
	return cfg, cfg.Validate()
}

func decode(path string, data []byte) (Config, error) {
	var cfg Config
	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := validateSchema(doc); err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := validateSchema(doc); err != nil {
			return Config{}, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

func validateSchema(doc any) error {
	if doc == nil {
		doc = map[string]any{}
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if result.Valid() {
		return nil
	}
	if len(result.Errors()) == 0 {
		return errors.New("schema validation failed")
	}
	return fmt.Errorf("schema validation failed: %s", result.Errors()[0].String())
}

const (
	EnvHTTPAddr     = "CONFIGGATE_HTTP_ADDR"
	EnvAdminAddr    = "CONFIGGATE_ADMIN_ADDR"
	EnvUsername     = "CONFIGGATE_USERNAME"
	EnvPassword     = "CONFIGGATE_PASSWORD"
	EnvToken        = "CONFIGGATE_TOKEN"
	EnvArtifactPath = "CONFIGGATE_ARTIFACT_PATH"
)

// ApplyEnv overlays CONFIGGATE_* variables from the process environment.
func ApplyEnv(cfg *Config) {
	applyEnvOverrides(cfg, os.Getenv)
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvHTTPAddr); v != "" {
		cfg.Service.HTTPAddr = v
	}
	if v := getenv(EnvAdminAddr); v != "" {
		cfg.Service.AdminAddr = v
	}
	if v := getenv(EnvUsername); v != "" {
		cfg.Auth.Username = v
	}
	if v := getenv(EnvPassword); v != "" {
		cfg.Auth.Password = v
	}
	if v := getenv(EnvToken); v != "" {
		cfg.Auth.Token = v
	}
	// An artifact path from the environment replaces inline content.
	if v := getenv(EnvArtifactPath); v != "" {
		cfg.Artifact.Path = v
		cfg.Artifact.Content = ""
	}
}

// LoadDotEnv populates unset environment variables from a dotenv file.
// Variables already present in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
