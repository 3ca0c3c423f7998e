package heap

import (
	"io"
	"log/slog"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetLogger installs the *slog.Logger used for the heap's opt-in
// diagnostics: heap-extension and coalescing events at Debug, and checker
// violations at Warn. Passing nil restores silent operation, which is also
// the default after New.
func (h *Heap) SetLogger(l *slog.Logger) {
	if l == nil {
		l = discardLogger
	}
	h.logger = l
}
