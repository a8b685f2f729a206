// Package notify holds Notifier implementations. The log notifier is the
// default sink; real channel integrations (slack, email, sms) plug in behind
// the same interface.
package notify

import (
	"context"
	"log"
	"strings"
	"time"

	"riskrouter/internal/usecase"
)

type logNotifier struct {
	logger *log.Logger
}

func NewLog(logger *log.Logger) usecase.Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(_ context.Context, msg usecase.Notification) error {
	due := ""
	if msg.DueAt != nil {
		due = " due=" + msg.DueAt.Format(time.RFC3339)
	}
	n.logger.Printf("notify kind=%s channels=%s template=%s ticket=%s workflow=%s%s msg=%q",
		msg.Kind, strings.Join(msg.Channels, ","), msg.Template, msg.TicketID, msg.WorkflowID, due, msg.Message)
	return nil
}
