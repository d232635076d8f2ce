// Package session implements the chat session state machine: the active
// conversation, the archive of finished conversations and the transitions
// between them.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/capitalize-ai/travelers-buddy/internal/llm"
	"github.com/capitalize-ai/travelers-buddy/internal/model"
	"github.com/capitalize-ai/travelers-buddy/pkg/logger"
	"github.com/capitalize-ai/travelers-buddy/pkg/metrics"
)

// TokenSize is the completion budget sent with every request.
const TokenSize = 1024

// ExitWord ends the active conversation when submitted as input.
const ExitWord = "exit"

const tracerName = "github.com/capitalize-ai/travelers-buddy/internal/session"

// State is either Empty or Active.
type State int

const (
	StateEmpty State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "empty"
}

// Origin tells whether the active conversation is already in the archive.
type Origin struct {
	resumed bool
	index   int
}

// OriginNew marks a conversation that has not been archived yet.
var OriginNew = Origin{}

// Resumed marks a conversation that lives in the archive at index.
func Resumed(index int) Origin {
	return Origin{resumed: true, index: index}
}

// IsNew reports whether the conversation has not been archived.
func (o Origin) IsNew() bool {
	return !o.resumed
}

// Index returns the archive index of a resumed conversation.
func (o Origin) Index() (int, bool) {
	return o.index, o.resumed
}

func (o Origin) String() string {
	if o.resumed {
		return fmt.Sprintf("resumed(%d)", o.index)
	}
	return "new"
}

// EventPublisher receives session lifecycle events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *model.SessionEvent) error
}

type nopPublisher struct{}

func (nopPublisher) PublishEvent(context.Context, *model.SessionEvent) error { return nil }

// Option configures a Controller.
type Option func(*Controller)

// WithSessionID tags logs and events with the owning session.
func WithSessionID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// WithLogger sets the controller logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Controller) { c.logger = log }
}

// WithEvents sets the lifecycle event publisher.
func WithEvents(p EventPublisher) Option {
	return func(c *Controller) { c.events = p }
}

// WithModel overrides the provider's default model.
func WithModel(name string) Option {
	return func(c *Controller) { c.model = name }
}

// Controller owns one chat session. It is the only code that changes the
// session state and the only caller of the completion client.
//
// A Controller is not safe for concurrent use; callers run one operation
// at a time per session (see Registry).
type Controller struct {
	id     string
	store  *Store
	client llm.Client
	model  string
	events EventPublisher
	logger *logger.Logger
	now    func() time.Time

	state  State
	active model.Conversation
	origin Origin
	notice string
}

// NewController creates a controller in the Empty state.
func NewController(store *Store, client llm.Client, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		client: client,
		events: nopPublisher{},
		logger: logger.NewNop(),
		now:    time.Now,
		state:  StateEmpty,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id != "" {
		c.logger = c.logger.WithSession(c.id)
	}
	return c
}

// State returns the current session state.
func (c *Controller) State() State {
	return c.state
}

// Origin returns the origin of the active conversation.
func (c *Controller) Origin() Origin {
	return c.origin
}

// Active returns a copy of the active conversation, empty when Empty.
func (c *Controller) Active() model.Conversation {
	return c.active.Clone()
}

// Store returns the archive owned by this session.
func (c *Controller) Store() *Store {
	return c.store
}

// StartNew drops the active conversation without archiving it.
func (c *Controller) StartNew(ctx context.Context) {
	c.notice = ""
	discarded := c.active.Len()
	c.reset()

	c.logger.Debug("started new conversation", zap.Int("discarded_turns", discarded))
	c.publish(ctx, model.EventTypeStartedNew, nil, discarded, "")
}

// Resume makes a copy of the archived conversation at index active.
// Edits made after resuming are never written back to the archive.
func (c *Controller) Resume(ctx context.Context, index int) error {
	c.notice = ""
	conv, err := c.store.Get(index)
	if err != nil {
		c.logger.Error("resume with invalid index", zap.Int("index", index), zap.Error(err))
		return err
	}

	c.state = StateActive
	c.active = conv
	c.origin = Resumed(index)

	c.logger.Debug("resumed conversation", zap.Int("index", index), zap.Int("turns", conv.Len()))
	c.publish(ctx, model.EventTypeResumed, &index, conv.Len(), "")
	return nil
}

// Submit appends a user turn, asks the completion client for a reply and
// appends it. The first completed exchange of a new conversation archives
// it. A failed completion leaves the user turn in place and returns a
// *CompletionError whose message is also kept as the view notice.
func (c *Controller) Submit(ctx context.Context, text string) error {
	c.notice = ""
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	if isExit(text) {
		return ErrReservedInput
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "session.Submit")
	defer span.End()

	if c.state == StateEmpty {
		c.state = StateActive
		c.active = model.Conversation{}
		c.origin = OriginNew
	}

	c.active = append(c.active, model.UserTurn(text))
	metrics.RecordTurn(model.RoleUser.String())

	reply, err := c.complete(ctx)
	if err != nil {
		cerr := &CompletionError{Err: err}
		c.notice = cerr.Message()

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.CompletionFailures.Inc()
		c.logger.Warn("completion failed",
			zap.Int("turns", c.active.Len()),
			zap.String("origin", c.origin.String()),
			zap.Error(err),
		)
		c.publish(ctx, model.EventTypeCompletionFailed, nil, c.active.Len(), err.Error())
		return cerr
	}

	c.active = append(c.active, model.AssistantTurn(reply))
	metrics.RecordTurn(model.RoleAssistant.String())

	if c.active.Len() == 2 && c.origin.IsNew() {
		index := c.archive(ctx, "first_exchange")
		c.origin = Resumed(index)
	}

	span.SetAttributes(
		attribute.Int("session.turns", c.active.Len()),
		attribute.String("session.origin", c.origin.String()),
	)
	return nil
}

// EndConversation archives a non-empty new conversation and returns the
// session to Empty. Resumed conversations are not archived again.
func (c *Controller) EndConversation(ctx context.Context) {
	c.notice = ""
	turns := c.active.Len()
	if c.state == StateActive && turns > 0 && c.origin.IsNew() {
		c.archive(ctx, "exit")
	}
	c.reset()

	c.logger.Debug("ended conversation", zap.Int("turns", turns))
	c.publish(ctx, model.EventTypeEnded, nil, turns, "")
}

// HandleInput applies raw presenter input: blank input is ignored, the
// exit word ends the conversation and anything else is submitted.
// Completion failures are absorbed into the view notice.
func (c *Controller) HandleInput(ctx context.Context, raw string) {
	text := strings.TrimSpace(raw)
	switch {
	case text == "":
		c.notice = ""
	case isExit(text):
		c.EndConversation(ctx)
	default:
		// Submit only fails with a recovered CompletionError here.
		_ = c.Submit(ctx, text)
	}
}

// View returns the state a presenter renders.
func (c *Controller) View() model.View {
	v := model.View{
		Turns:   c.active.Clone(),
		Archive: c.store.Titles(),
		Active:  c.state == StateActive,
		Notice:  c.notice,
	}
	if v.Active {
		if index, ok := c.origin.Index(); ok {
			v.Origin = "resumed"
			v.ResumedFrom = &index
		} else {
			v.Origin = "new"
		}
	}
	return v
}

func (c *Controller) complete(ctx context.Context) (string, error) {
	if c.client == nil {
		return "", ErrNoCompletionClient
	}

	resp, err := c.client.Complete(ctx, &llm.CompletionRequest{
		Turns:     c.active.Clone(),
		TokenSize: TokenSize,
		Model:     c.model,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Answer == "" {
		return "", llm.ErrEmptyAnswer
	}
	return resp.Answer, nil
}

func (c *Controller) archive(ctx context.Context, trigger string) int {
	index := c.store.Append(c.active)
	metrics.RecordArchive(trigger)

	c.logger.Info("conversation archived",
		zap.Int("index", index),
		zap.Int("turns", c.active.Len()),
		zap.String("trigger", trigger),
	)
	c.publish(ctx, model.EventTypeArchived, &index, c.active.Len(), trigger)
	return index
}

func (c *Controller) reset() {
	c.state = StateEmpty
	c.active = nil
	c.origin = OriginNew
}

func (c *Controller) publish(ctx context.Context, typ model.EventType, index *int, turns int, reason string) {
	event := &model.SessionEvent{
		ID:           uuid.NewString(),
		SessionID:    c.id,
		Type:         typ,
		ArchiveIndex: index,
		TurnCount:    turns,
		Reason:       reason,
		CreatedAt:    c.now(),
	}
	if err := c.events.PublishEvent(ctx, event); err != nil {
		c.logger.Warn("failed to publish session event", zap.String("type", string(typ)), zap.Error(err))
	}
}

func isExit(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), ExitWord)
}
