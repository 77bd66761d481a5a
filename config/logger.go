package config

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide zap logger. Development mode (GO_ENV
// other than "production") gets the human-readable console encoder.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("GO_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
