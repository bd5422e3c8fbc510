package main

import "time"

type Config struct {
	DatabaseURL        string        `env:"DATABASE_URL,required=true" validate:"required"`
	JWTSecret          string        `env:"JWT_SECRET,required=true" validate:"required,min=32"`
	AuthTokenDuration  time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	BufferSize         int           `env:"BUFFER_SIZE,default=256" validate:"gt=0"`
	ReceiverBufferSize int           `env:"RECEIVER_BUFFER_SIZE,default=64" validate:"gt=0"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=3s"`
	MetricInterval     time.Duration `env:"METRIC_INTERVAL,default=15s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	LogLevel           string        `env:"LOG_LEVEL,default=info"`
	Host               string        `env:"HOST,default=localhost"`
	Port               int           `env:"PORT,default=8080" validate:"gt=0,lte=65535"`
}
