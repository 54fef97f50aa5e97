package services

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

type ServiceIdentifier interface {
	ID() string
}

type ServiceLogger struct {
	logger zerolog.Logger
}

func NewServiceLogger(svc ServiceIdentifier) *ServiceLogger {
	return &ServiceLogger{
		logger: log.With().Str("service", svc.ID()).Logger(),
	}
}

func (l *ServiceLogger) Info() *zerolog.Event {
	return l.logger.Info()
}

func (l *ServiceLogger) Error() *zerolog.Event {
	return l.logger.Error()
}

func (l *ServiceLogger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

func (l *ServiceLogger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Failure logs a rejected calculation. Engine rejections are expected input
// errors and go to debug; anything outside the taxonomy is logged as an error.
func (l *ServiceLogger) Failure(method string, err error) {
	kind := stableswap.Kind(err)
	if kind == nil {
		l.logger.Error().Str("method", method).Err(err).Msg("calculation failed")
		return
	}
	l.logger.Debug().Str("method", method).Str("kind", kind.Error()).Err(err).Msg("calculation rejected")
}
