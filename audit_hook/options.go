package audithook

import "log/slog"

// Option configures an Extension.
type Option func(*Extension)

// WithActions limits the extension to the listed actions. All actions
// are recorded by default; unknown names are ignored.
func WithActions(actions ...string) Option {
	return func(e *Extension) {
		e.enabled = make(map[string]bool, len(actions))
		for _, a := range actions {
			e.enabled[a] = true
		}
	}
}

// WithLogger sets the logger used to report recorder errors.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) { e.logger = l }
}
