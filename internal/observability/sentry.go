package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry - DSN이 비어 있으면 아무것도 하지 않음 (CaptureError도 no-op)
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// CaptureError - 요청 경로 태그와 함께 예외 전송
func CaptureError(err error, route string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if route != "" {
			scope.SetTag("route", route)
		}
		sentry.CaptureException(err)
	})
}

// RecoverPanic - gin.CustomRecovery 콜백에서 사용
func RecoverPanic(rec any, route string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("route", route)
		scope.SetExtra("panic", rec)
		sentry.CaptureMessage("panic in bridge request")
	})
}
