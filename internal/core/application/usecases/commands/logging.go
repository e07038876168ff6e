package commands

import (
	"marketplace/internal/pkg/errs"

	"go.uber.org/zap"
)

// logOutcome logs a failed command at a severity that matches who is at fault:
// caller misuse at warn, infrastructure failures at error, business refusals at info.
func logOutcome(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	kind := errs.KindOf(err)
	fields = append(fields, zap.Error(err), zap.String("kind", string(kind)))
	switch {
	case errs.IsCallerMisuse(err):
		logger.Warn(msg, fields...)
	case kind == errs.KindInternal:
		logger.Error(msg, fields...)
	default:
		logger.Info(msg, fields...)
	}
}
