package telegram

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"videobot/internal/infra"
)

// Handler consumes conversational events extracted from updates. Calls for a
// given chat arrive in update order.
type Handler interface {
	HandleStart(ctx context.Context, chatID int64, locale string)
	HandleImage(ctx context.Context, chatID int64, image []byte, locale string)
	HandleText(ctx context.Context, chatID int64, text string, locale string)
}

// PollerOptions configures the update loop.
type PollerOptions struct {
	Client        *Client
	Handler       Handler
	UpdateTimeout time.Duration
	DefaultLocale string
	Logger        *infra.Logger
}

// Poller drives the bot: a single goroutine long-polls getUpdates and feeds
// each update through the handler sequentially.
type Poller struct {
	client        *Client
	handler       Handler
	updateTimeout time.Duration
	defaultLocale string
	logger        *infra.Logger
}

// NewPoller constructs the update loop.
func NewPoller(opts PollerOptions) *Poller {
	updateTimeout := opts.UpdateTimeout
	if updateTimeout <= 0 {
		updateTimeout = 30 * time.Second
	}
	defaultLocale := opts.DefaultLocale
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Poller{
		client:        opts.Client,
		handler:       opts.Handler,
		updateTimeout: updateTimeout,
		defaultLocale: defaultLocale,
		logger:        logger,
	}
}

// Run long-polls until ctx is cancelled. Transient getUpdates failures are
// logged and retried after a short pause.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return nil
		}
		updates, err := p.client.GetUpdates(ctx, offset, p.updateTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Warn().Err(err).Msg("get updates")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.dispatch(ctx, update)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, update Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID
	locale := p.defaultLocale
	if msg.From != nil && msg.From.LanguageCode != "" {
		locale = msg.From.LanguageCode
	}

	switch {
	case len(msg.Photo) > 0:
		photo := largestPhoto(msg.Photo)
		data, err := p.client.DownloadFile(ctx, photo.FileID)
		if err != nil {
			p.logger.Error().Err(err).
				Int64("chat_id", chatID).
				Str("file_id", photo.FileID).
				Msg("download photo")
			return
		}
		p.handler.HandleImage(ctx, chatID, data, locale)
	case strings.HasPrefix(msg.Text, "/start"):
		p.handler.HandleStart(ctx, chatID, locale)
	case msg.Text != "" && !strings.HasPrefix(msg.Text, "/"):
		p.handler.HandleText(ctx, chatID, msg.Text, locale)
	}
}

// largestPhoto picks the highest-resolution variant Telegram offers.
func largestPhoto(photos []PhotoSize) PhotoSize {
	best := photos[0]
	for _, photo := range photos[1:] {
		if photo.Width*photo.Height > best.Width*best.Height {
			best = photo
		}
	}
	return best
}
