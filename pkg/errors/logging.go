package errors

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogError logs err with its code and client details. Errors the caller caused
// (4xx codes) are logged at warn, everything else at error.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	code := CodeOf(err)
	all := append([]zap.Field{zap.Error(err), zap.String("error_code", code)}, fields...)

	var appErr *AppError
	if As(err, &appErr) && appErr.Details() != "" {
		all = append(all, zap.String("error_details", appErr.Details()))
	}

	level := zapcore.ErrorLevel
	if status := ToHTTPStatus(code); status >= 400 && status < 500 {
		level = zapcore.WarnLevel
	}
	if ce := logger.Check(level, msg); ce != nil {
		ce.Write(all...)
	}
}
