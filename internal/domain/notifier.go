package domain

import "context"

// Notifier delivers a best-effort, one-line run summary. Delivery failures
// never influence the run outcome.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
