package relayhook

// Option configures an Extension.
type Option func(*Extension)

// PayloadFunc builds a custom payload from the default one. The returned
// value becomes event.Event.Data.
type PayloadFunc func(defaultPayload any) (any, error)

// WithEvents limits the extension to the listed event types.
func WithEvents(events ...string) Option {
	return func(h *Extension) {
		h.enabled = make(map[string]bool, len(events))
		for _, e := range events {
			h.enabled[e] = true
		}
	}
}

// WithPayloadFunc replaces the payload for one event type.
func WithPayloadFunc(eventType string, fn PayloadFunc) Option {
	return func(h *Extension) {
		if h.payloads == nil {
			h.payloads = make(map[string]PayloadFunc)
		}
		h.payloads[eventType] = fn
	}
}
