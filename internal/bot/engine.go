package bot

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"videobot/internal/infra"
	"videobot/internal/kling"
)

// Submitter creates one remote rendering task from an image and a prompt.
type Submitter interface {
	CreateTask(ctx context.Context, image []byte, prompt string, cred kling.Credential) (string, error)
}

// Awaiter watches one submitted task to a terminal outcome.
type Awaiter interface {
	Await(ctx context.Context, taskID string) (kling.Outcome, error)
}

// EngineOptions configures the conversation engine.
type EngineOptions struct {
	Transport Transport
	Submitter Submitter
	Awaiter   Awaiter
	Tokens    kling.TokenSource
	Messages  *Catalog
	Logger    *infra.Logger
}

// jobHandle tracks one in-flight watcher so jobs stay countable per chat and
// shutdown can wait for pending deliveries. There is no cancellation path
// back from a session to its job; users cannot abort an in-flight render.
type jobHandle struct {
	id     string
	taskID string
	done   chan struct{}
}

// Engine is the per-chat conversation state machine. Inbound events for one
// chat arrive in order from the transport's single update loop; each
// successful submission spawns an independent watcher goroutine that delivers
// exactly one notification and never blocks event handling.
type Engine struct {
	store     *Store
	transport Transport
	submitter Submitter
	awaiter   Awaiter
	tokens    kling.TokenSource
	messages  *Catalog
	logger    *infra.Logger

	mu       sync.Mutex
	inflight map[int64]map[string]*jobHandle
	wg       sync.WaitGroup
}

// NewEngine wires the conversation engine.
func NewEngine(opts EngineOptions) *Engine {
	messages := opts.Messages
	if messages == nil {
		messages = NewCatalog()
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Engine{
		store:     NewStore(),
		transport: opts.Transport,
		submitter: opts.Submitter,
		awaiter:   opts.Awaiter,
		tokens:    opts.Tokens,
		messages:  messages,
		logger:    logger,
		inflight:  make(map[int64]map[string]*jobHandle),
	}
}

// Store exposes the session store, mainly for tests and ops introspection.
func (e *Engine) Store() *Store { return e.store }

// HandleStart greets a user who issued the start command.
func (e *Engine) HandleStart(ctx context.Context, chatID int64, locale string) {
	e.reply(ctx, chatID, e.messages.Text(locale, MsgWelcome))
}

// HandleImage buffers the image for the chat and asks for a prompt. A second
// image before any prompt replaces the first.
func (e *Engine) HandleImage(ctx context.Context, chatID int64, image []byte, locale string) {
	if len(image) == 0 {
		e.logger.Warn().Int64("chat_id", chatID).Msg("ignoring empty image payload")
		return
	}
	e.store.PutImage(chatID, image)
	e.reply(ctx, chatID, e.messages.Text(locale, MsgImageReceived))
}

// HandleText attempts a submission with the buffered image and the given
// prompt. The buffered image is consumed on every attempt, success or not, so
// a failed submission returns the session to its initial state.
func (e *Engine) HandleText(ctx context.Context, chatID int64, text string, locale string) {
	image, ok := e.store.TakeImage(chatID)
	if !ok {
		e.reply(ctx, chatID, e.messages.Text(locale, MsgNeedImage))
		return
	}

	prompt := strings.TrimSpace(text)
	if prompt == "" {
		e.reply(ctx, chatID, e.messages.Text(locale, MsgNeedPrompt))
		return
	}

	e.reply(ctx, chatID, e.messages.Text(locale, MsgCreating))

	cred, err := e.tokens.Issue()
	if err != nil {
		e.logger.Error().Err(err).Int64("chat_id", chatID).Msg("issue credential")
		e.reply(ctx, chatID, e.messages.RenderError(locale, err))
		return
	}

	taskID, err := e.submitter.CreateTask(ctx, image, prompt, cred)
	if err != nil {
		e.logger.Error().Err(err).Int64("chat_id", chatID).Msg("create task")
		e.reply(ctx, chatID, e.messages.RenderError(locale, err))
		return
	}

	e.reply(ctx, chatID, e.messages.Text(locale, MsgSubmitted))
	e.spawnWatcher(chatID, taskID, locale)
}

// spawnWatcher starts the background polling task for one submitted job and
// attaches the result dispatch as its continuation. The watcher owns its own
// deadline, so it runs on a background context rather than the event context.
func (e *Engine) spawnWatcher(chatID int64, taskID, locale string) {
	handle := &jobHandle{
		id:     uuid.NewString(),
		taskID: taskID,
		done:   make(chan struct{}),
	}
	e.register(chatID, handle)
	e.wg.Add(1)

	logger := e.logger.With().
		Int64("chat_id", chatID).
		Str("task_id", taskID).
		Str("job_id", handle.id).
		Logger()

	go func() {
		defer func() {
			e.unregister(chatID, handle)
			close(handle.done)
			e.wg.Done()
		}()

		outcome, err := e.awaiter.Await(context.Background(), taskID)
		e.dispatch(chatID, locale, outcome, err, &logger)
	}()
}

// dispatch delivers exactly one notification per job. Delivery failures are
// logged, not retried.
func (e *Engine) dispatch(chatID int64, locale string, outcome kling.Outcome, err error, logger *infra.Logger) {
	ctx := context.Background()
	switch {
	case err != nil:
		if kling.IsTerminalError(err) {
			logger.Warn().Err(err).Msg("job did not produce a video")
		} else {
			logger.Error().Err(err).Msg("job watcher aborted")
		}
		if sendErr := e.transport.SendText(ctx, chatID, e.messages.RenderError(locale, err)); sendErr != nil {
			logger.Error().Err(sendErr).Msg("deliver failure notification")
		}
	case outcome.URL != "":
		logger.Info().Str("url", outcome.URL).Msg("job succeeded")
		if sendErr := e.transport.SendVideo(ctx, chatID, outcome.URL, e.messages.Text(locale, MsgVideoCaption)); sendErr != nil {
			logger.Error().Err(sendErr).Msg("deliver video")
		}
	default:
		logger.Warn().Msg("job succeeded without a result url")
		if sendErr := e.transport.SendText(ctx, chatID, e.messages.Text(locale, MsgReadyNoURL)); sendErr != nil {
			logger.Error().Err(sendErr).Msg("deliver no-url notification")
		}
	}
}

func (e *Engine) register(chatID int64, handle *jobHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	jobs, ok := e.inflight[chatID]
	if !ok {
		jobs = make(map[string]*jobHandle)
		e.inflight[chatID] = jobs
	}
	jobs[handle.id] = handle
}

func (e *Engine) unregister(chatID int64, handle *jobHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	jobs := e.inflight[chatID]
	delete(jobs, handle.id)
	if len(jobs) == 0 {
		delete(e.inflight, chatID)
	}
}

// InFlight reports how many jobs are currently being watched for chatID.
func (e *Engine) InFlight(chatID int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inflight[chatID])
}

// Drain waits for all in-flight watchers to deliver, or for ctx to expire.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) reply(ctx context.Context, chatID int64, text string) {
	if err := e.transport.SendText(ctx, chatID, text); err != nil {
		e.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("send reply")
	}
}
