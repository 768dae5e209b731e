package audithook

import "log/slog"

// Option configures an Extension.
type Option func(*Extension)

// WithLogger sets the logger for the extension.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extension) {
		e.logger = logger
	}
}

// WithEnabledActions sets which actions to audit.
// If not called, every action except number.peeked is audited.
func WithEnabledActions(actions ...string) Option {
	return func(e *Extension) {
		e.enabled = make(map[string]bool)
		for _, action := range actions {
			e.enabled[action] = true
		}
	}
}

// WithDisabledActions sets which actions to skip.
func WithDisabledActions(actions ...string) Option {
	return func(e *Extension) {
		if e.enabled == nil {
			e.enabled = defaultActions()
		}
		for _, action := range actions {
			delete(e.enabled, action)
		}
	}
}

// defaultActions returns the actions audited when no option narrows them.
// Peeks are UI previews and too chatty for an audit trail.
func defaultActions() map[string]bool {
	return map[string]bool{
		ActionNumberIssued:      true,
		ActionNumberIssueFailed: true,
		ActionCounterSeeded:     true,
	}
}
