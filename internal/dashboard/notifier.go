package dashboard

import (
	"log/slog"

	"solifin/internal/logging"
	"solifin/internal/models"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a non-blocking message about the outcome of an operation.
type Notice struct {
	Level         Level
	Type          models.PublicationType
	PublicationID string
	Message       string
	Err           error
}

type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type logNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logger.With("component", "notifier")}
}

func (l *logNotifier) Notify(n Notice) {
	attrs := []any{"type", n.Type, "id", n.PublicationID}
	if n.Err != nil {
		attrs = append(attrs, logging.Err(n.Err))
		l.logger.Warn(n.Message, attrs...)
		return
	}
	l.logger.Info(n.Message, attrs...)
}
