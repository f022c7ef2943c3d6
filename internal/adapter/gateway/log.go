package gateway

import (
	"context"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/hasher"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

// LogChannel only writes the job to the log. Used for local runs.
type LogChannel struct {
	l logger.Logger
}

func NewLogChannel(l logger.Logger) *LogChannel {
	return &LogChannel{l: l}
}

func (c *LogChannel) Deliver(ctx context.Context, job models.DeliveryJob) error {
	c.l.Info(ctx, "notification delivered to log",
		"dedup_key", job.DedupKey,
		"contact", job.Contact.Name,
		"phone", hasher.Fingerprint(job.Contact.Phone),
		"message", job.Payload.Message,
	)
	return nil
}
