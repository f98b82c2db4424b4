package update

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type RuntimeConfig struct {
	StatePath             string
	Model                 string
	RequestTimeoutSeconds int
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		StatePath:             defaultStatePath(),
		Model:                 "openrouter/free",
		RequestTimeoutSeconds: 60,
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("EISEND_STATE_FILE"); ok {
		cfg.StatePath = v
	}
	if v, ok := getEnvString("EISEND_MODEL"); ok {
		cfg.Model = v
	}
	if v, ok := getEnvInt("EISEND_REQUEST_TIMEOUT_SECONDS"); ok && v > 0 {
		cfg.RequestTimeoutSeconds = v
	}
	return cfg
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".eisend_state.json"
	}
	return filepath.Join(dir, "eisend", "state.json")
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
