package pulse

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Config holds adapter configuration resolved from environment variables
// during application startup.
type Config struct {
	// CaptureEnabled gates whether Attach establishes any subscription.
	CaptureEnabled bool `env:"PULSE_CAPTURE_ENABLED" envDefault:"true"`
	Debug          bool `env:"PULSE_DEBUG" envDefault:"false"`

	InfluxAddr      string `env:"PULSE_INFLUX_ADDR" envDefault:"http://localhost:8086"`
	InfluxOrg       string `env:"PULSE_INFLUX_ORG" envDefault:"pulse"`
	InfluxBucket    string `env:"PULSE_INFLUX_BUCKET" envDefault:"requests"`
	InfluxTokenPath string `env:"PULSE_INFLUX_TOKEN_PATH" envDefault:"/var/lib/pulse/influx.token"`

	// AsyncBuffer > 0 wraps the default client in an AsyncClient of that size.
	AsyncBuffer int `env:"PULSE_ASYNC_BUFFER" envDefault:"0"`

	// AuditPath enables the bbolt audit journal when non-empty.
	AuditPath string `env:"PULSE_AUDIT_PATH"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not parse configuration: %w", err)
	}
	return cfg, nil
}
