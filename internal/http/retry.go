package http

import (
	nethttp "net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// retryLogger implements the retryablehttp.LeveledLogger interface on top of zerolog.
// It resolves the global logger per call so redirected CLI output is honored.
type retryLogger struct{}

func (l *retryLogger) logger() *zerolog.Logger {
	zlog := log.Logger.With().Str("component", "http").Logger()
	return &zlog
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger().Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger().Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger().Trace().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger().Warn().Fields(keysAndValues).Msg(msg)
}

// WithRetries wraps client with retryablehttp. retryMax 0 means every request is tried once
// and a failure is returned to the caller as-is.
func WithRetries(client *nethttp.Client, retryMax int) *nethttp.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = client
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 30 * time.Second
	retryClient.Logger = &retryLogger{}
	// hand the final response back instead of retryablehttp's "giving up" error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return retryClient.StandardClient()
}
