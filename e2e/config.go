package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// NOTIFY_ADDR points the smoke tests at a running deployment; tests
	// are skipped when it is unset.
	Addr      string `envconfig:"NOTIFY_ADDR"`
	JWTSecret string `envconfig:"NOTIFY_JWT_SECRET"`
	UserID    int64  `envconfig:"NOTIFY_USER_ID" default:"1"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
