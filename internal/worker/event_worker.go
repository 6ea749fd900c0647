package worker

import (
	"context"

	"github.com/tyagiab3/user-service/internal/events"
)

// StartEventConsumer launches the event consumer loops when one is configured.
func StartEventConsumer(ctx context.Context, consumer *events.Consumer) {
	if consumer == nil {
		return
	}
	consumer.Start(ctx)
}
