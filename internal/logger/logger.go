package logger

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// New returns a development logger for local and dev environments and a
// production logger for prod
func New(env string) (*zap.Logger, error) {
	switch env {
	case EnvLocal, EnvDev:
		return zap.NewDevelopment()
	case EnvProd:
		return zap.NewProduction()
	default:
		return nil, fmt.Errorf("unknown environment: %q", env)
	}
}

// Secret masks all but the first five characters of a sensitive value
func Secret(key, some string) zap.Field {
	r := "***"
	if len(some) > 5 {
		r = some[0:5] + "***"
	}
	if some == "" {
		r = "?"
	}
	return zap.String(key, r)
}
