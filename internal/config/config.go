// Package config resolves tool settings from defaults, an optional config
// file, a .env file and SNAPCRAFT_SBOM_* environment variables.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (SNAPCRAFT_SBOM_VENDOR).
const EnvPrefix = "SNAPCRAFT_SBOM"

const (
	keyToolName        = "tool-name"
	keyVendor          = "vendor"
	keySupplier        = "supplier"
	keySourceDateEpoch = "source-date-epoch"
)

// Config holds the SBOM metadata settings.
type Config struct {
	ToolName string
	Vendor   string
	Supplier string

	// BuildTime is set from SOURCE_DATE_EPOCH; when non-nil the SBOM is
	// generated reproducibly.
	BuildTime *time.Time
}

// Load resolves the configuration. configFile may be empty.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault(keyToolName, "snapcraft-sbom")
	v.SetDefault(keyVendor, "sbomify")
	v.SetDefault(keySupplier, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(keySourceDateEpoch, "SOURCE_DATE_EPOCH"); err != nil {
		return nil, fmt.Errorf("cannot bind SOURCE_DATE_EPOCH: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file %q: %w", configFile, err)
		}
	}

	cfg := &Config{
		ToolName: strings.TrimSpace(v.GetString(keyToolName)),
		Vendor:   strings.TrimSpace(v.GetString(keyVendor)),
		Supplier: strings.TrimSpace(v.GetString(keySupplier)),
	}
	if cfg.Supplier == "" {
		cfg.Supplier = cfg.Vendor
	}

	if raw := strings.TrimSpace(v.GetString(keySourceDateEpoch)); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SOURCE_DATE_EPOCH %q: %w", raw, err)
		}
		t := time.Unix(secs, 0).UTC()
		cfg.BuildTime = &t
	}

	return cfg, nil
}
