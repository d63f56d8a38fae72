package config

import (
	"os"
	"strconv"
)

// ApplyEnv overlays environment variables onto cfg.
// Falls back to the existing values if variables are not set.
func ApplyEnv(cfg *Config) *Config {
	if v := os.Getenv("BLESSEDMIND_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BLESSEDMIND_DATA_DIR"); v != "" {
		cfg.Server.DataDir = v
	}
	if v := getEnvInt("BLESSEDMIND_BATCH_SIZE"); v > 0 {
		cfg.Focus.BatchSize = v
	}
	if v := getEnvInt("BLESSEDMIND_MAX_GRINDS"); v > 0 {
		cfg.Grinds.MaxTotal = v
	}
	if v := getEnvInt("BLESSEDMIND_MAX_ACTIVE_GRINDS"); v > 0 {
		cfg.Grinds.MaxActive = v
	}
	if v := os.Getenv("BLESSEDMIND_REFRESH_SCHEDULE"); v != "" {
		cfg.Refresh.Schedule = v
	}
	if v := os.Getenv("BLESSEDMIND_REFRESH_DISABLED"); v == "1" || v == "true" {
		cfg.Refresh.Enabled = false
	}
	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
