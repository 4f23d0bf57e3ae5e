package bootstrap

import (
	"go.uber.org/zap"

	"go-hrms/internal/config"
)

// NewLogger builds the process logger and installs it as the zap global.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
