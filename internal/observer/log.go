package observer

import (
	"context"
	"log"

	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/service"
)

var _ service.Observer = (*LogObserver)(nil)

// LogObserver пишет события реестра в лог
type LogObserver struct {
	logger *log.Logger
}

func NewLogObserver(logger *log.Logger) *LogObserver {
	if logger == nil {
		logger = log.Default()
	}
	return &LogObserver{logger: logger}
}

// CreateAttempt is too chatty for the log; collisions are reported instead.
func (o *LogObserver) CreateAttempt(context.Context, int, string) {}

func (o *LogObserver) CollisionRetry(_ context.Context, attempt int, shortCode string) {
	o.logger.Printf("Short code collision on attempt %d: %s", attempt, shortCode)
}

func (o *LogObserver) Created(_ context.Context, link *model.Link) {
	o.logger.Printf("Created short link %s -> %s", link.ShortCode, link.LongURL)
}

func (o *LogObserver) Resolved(_ context.Context, shortCode, longURL string) {
	o.logger.Printf("Resolved %s -> %s", shortCode, longURL)
}

func (o *LogObserver) Failed(_ context.Context, op string, err error) {
	o.logger.Printf("Failed to %s: %v", op, err)
}
