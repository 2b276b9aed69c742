package bot

import "context"

// Transport delivers outbound notifications to the chat platform. Delivery
// failures are logged by the engine, never retried.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendVideo(ctx context.Context, chatID int64, url, caption string) error
}
