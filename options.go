package tomd

import (
	"log/slog"
	"net/http"
)

// Option configures an Engine.
type Option func(*Engine)

// WithKeepDataURIs configures whether to keep full data URIs in output
// (default: false, which truncates them to data:mime/type;base64...).
func WithKeepDataURIs(keep bool) Option {
	return func(e *Engine) {
		e.keepDataURIs = keep
	}
}

// WithExtendedConverters registers the CSV, notebook, feed, spreadsheet and
// ZIP converters on top of the built-in set.
func WithExtendedConverters() Option {
	return func(e *Engine) {
		e.extended = true
	}
}

// WithHTTPClient sets the client used by ConvertURL.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		e.client = c
	}
}

// WithUserAgent overrides the User-Agent sent by ConvertURL.
func WithUserAgent(ua string) Option {
	return func(e *Engine) {
		e.userAgent = ua
	}
}

// WithLogger sets the logger used for dispatch tracing. Nil keeps the default,
// which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
