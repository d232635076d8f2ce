package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/travelers-buddy/internal/llm"
	"github.com/capitalize-ai/travelers-buddy/internal/model"
)

type recordingPublisher struct {
	events []*model.SessionEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, e *model.SessionEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []model.EventType {
	out := make([]model.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func newTestController(client llm.Client, opts ...Option) *Controller {
	return NewController(NewStore(), client, opts...)
}

func TestSubmitFirstExchangeArchives(t *testing.T) {
	ctx := context.Background()
	client := llm.NewMockClient("Hi there")
	c := newTestController(client)

	require.NoError(t, c.Submit(ctx, "Hello"))

	want := model.Conversation{model.UserTurn("Hello"), model.AssistantTurn("Hi there")}
	assert.Equal(t, want, c.Active())
	assert.Equal(t, StateActive, c.State())
	assert.Equal(t, Resumed(0), c.Origin())

	require.Equal(t, 1, c.Store().Len())
	stored, err := c.Store().Get(0)
	require.NoError(t, err)
	assert.Equal(t, want, stored)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, TokenSize, reqs[0].TokenSize)
	assert.Equal(t, []model.Turn{model.UserTurn("Hello")}, reqs[0].Turns)
}

func TestSubmitFailureKeepsDanglingUserTurn(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("service unavailable")
	c := newTestController(llm.NewMockClient().Fail(boom))

	err := c.Submit(ctx, "Hello")

	var cerr *CompletionError
	require.ErrorAs(t, err, &cerr)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, model.Conversation{model.UserTurn("Hello")}, c.Active())
	assert.Equal(t, 0, c.Store().Len())
	assert.Equal(t, StateActive, c.State())
	assert.True(t, c.Origin().IsNew())
	assert.Equal(t, "An error occurred: service unavailable", c.View().Notice)
}

func TestSubmitEmptyAnswerIsFailure(t *testing.T) {
	c := newTestController(llm.NewMockClient(""))

	err := c.Submit(context.Background(), "Hello")
	require.ErrorIs(t, err, llm.ErrEmptyAnswer)
	assert.Equal(t, 0, c.Store().Len())
}

func TestSubmitWithoutClientFails(t *testing.T) {
	c := newTestController(nil)

	err := c.Submit(context.Background(), "Hello")
	require.ErrorIs(t, err, ErrNoCompletionClient)
	assert.Equal(t, 1, c.Active().Len())
}

func TestSubmitRejectsBlankAndExit(t *testing.T) {
	ctx := context.Background()
	client := llm.NewMockClient()
	c := newTestController(client)

	require.ErrorIs(t, c.Submit(ctx, "   \t\n"), ErrEmptyInput)
	require.ErrorIs(t, c.Submit(ctx, " ExIt "), ErrReservedInput)

	assert.Equal(t, StateEmpty, c.State())
	assert.Empty(t, client.Requests())
}

func TestSuccessfulSubmitsAlternate(t *testing.T) {
	ctx := context.Background()
	c := newTestController(llm.NewMockClient("r1", "r2", "r3", "r4"))

	for i, q := range []string{"q1", "q2", "q3", "q4"} {
		require.NoError(t, c.Submit(ctx, q))
		active := c.Active()
		require.Equal(t, 2*(i+1), active.Len())
		for j, turn := range active {
			if j%2 == 0 {
				assert.Equal(t, model.RoleUser, turn.Role)
			} else {
				assert.Equal(t, model.RoleAssistant, turn.Role)
			}
		}
	}
	assert.Equal(t, 1, c.Store().Len(), "only the first exchange archives")

	c.EndConversation(ctx)
	require.NoError(t, c.Submit(ctx, "again"))
	assert.Equal(t, 2, c.Active().Len(), "count restarts after Empty")
}

func TestSendsWholeConversation(t *testing.T) {
	ctx := context.Background()
	client := llm.NewMockClient("a1", "a2")
	c := newTestController(client)

	require.NoError(t, c.Submit(ctx, "q1"))
	require.NoError(t, c.Submit(ctx, "q2"))

	reqs := client.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []model.Turn{
		model.UserTurn("q1"),
		model.AssistantTurn("a1"),
		model.UserTurn("q2"),
	}, reqs[1].Turns)
}

func TestExitAfterArchivedExchangeDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	c := newTestController(llm.NewMockClient("B"))

	require.NoError(t, c.Submit(ctx, "A"))
	require.Equal(t, 1, c.Store().Len())

	c.HandleInput(ctx, "exit")

	assert.Equal(t, 1, c.Store().Len())
	assert.Equal(t, StateEmpty, c.State())
	assert.Empty(t, c.View().Turns)
}

func TestExitArchivesConversationThatNeverCompleted(t *testing.T) {
	ctx := context.Background()
	c := newTestController(llm.NewMockClient().Fail(errors.New("down")).Reply("ok"))

	require.Error(t, c.Submit(ctx, "first"))
	require.NoError(t, c.Submit(ctx, "second"))

	// Three turns: the first exchange rule does not apply.
	assert.Equal(t, 3, c.Active().Len())
	assert.Equal(t, 0, c.Store().Len())

	c.EndConversation(ctx)
	require.Equal(t, 1, c.Store().Len())
	stored, err := c.Store().Get(0)
	require.NoError(t, err)
	assert.Equal(t, model.Conversation{
		model.UserTurn("first"),
		model.UserTurn("second"),
		model.AssistantTurn("ok"),
	}, stored)
}

func TestExitOnEmptySessionDoesNothing(t *testing.T) {
	c := newTestController(llm.NewMockClient())
	c.EndConversation(context.Background())
	assert.Equal(t, 0, c.Store().Len())
	assert.Equal(t, StateEmpty, c.State())
}

func TestResumeThenExitDoesNotArchive(t *testing.T) {
	ctx := context.Background()
	c := newTestController(llm.NewMockClient("Hi", "more"))

	require.NoError(t, c.Submit(ctx, "Hello"))
	c.EndConversation(ctx)
	require.Equal(t, 1, c.Store().Len())

	require.NoError(t, c.Resume(ctx, 0))
	c.EndConversation(ctx)
	assert.Equal(t, 1, c.Store().Len())

	require.NoError(t, c.Resume(ctx, 0))
	require.NoError(t, c.Submit(ctx, "follow up"))
	c.EndConversation(ctx)
	assert.Equal(t, 1, c.Store().Len())

	stored, err := c.Store().Get(0)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Len(), "edits after resuming are not written back")
}

func TestResumeCopiesArchivedConversation(t *testing.T) {
	ctx := context.Background()
	c := newTestController(llm.NewMockClient("Hi", "Sure"))

	require.NoError(t, c.Submit(ctx, "Hello"))
	c.StartNew(ctx)

	require.NoError(t, c.Resume(ctx, 0))
	assert.Equal(t, Resumed(0), c.Origin())
	require.NoError(t, c.Submit(ctx, "Tell me more"))
	assert.Equal(t, 4, c.Active().Len())

	stored, err := c.Store().Get(0)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Len())
}

func TestResumeInvalidIndex(t *testing.T) {
	ctx := context.Background()
	c := newTestController(llm.NewMockClient("Hi"))
	require.NoError(t, c.Submit(ctx, "Hello"))
	before := c.Active()

	err := c.Resume(ctx, 3)
	require.ErrorIs(t, err, ErrInvalidResumeIndex)
	assert.Equal(t, before, c.Active())
	assert.Equal(t, Resumed(0), c.Origin())
}

func TestStartNewDiscardsUnsavedConversation(t *testing.T) {
	ctx := context.Background()
	c := newTestController(llm.NewMockClient().Fail(errors.New("down")))

	require.Error(t, c.Submit(ctx, "Hello"))
	require.Equal(t, StateActive, c.State())

	c.StartNew(ctx)

	assert.Equal(t, 0, c.Store().Len())
	assert.Equal(t, StateEmpty, c.State())
	assert.Equal(t, 0, c.Active().Len())
}

func TestHandleInputIgnoresBlank(t *testing.T) {
	ctx := context.Background()
	client := llm.NewMockClient()
	c := newTestController(client)

	c.HandleInput(ctx, "    ")

	assert.Equal(t, StateEmpty, c.State())
	assert.Empty(t, client.Requests())
}

func TestHandleInputAbsorbsFailure(t *testing.T) {
	ctx := context.Background()
	c := newTestController(llm.NewMockClient().Fail(errors.New("timeout")).Reply("back"))

	c.HandleInput(ctx, "  Hello  ")
	v := c.View()
	assert.Equal(t, "An error occurred: timeout", v.Notice)
	assert.Equal(t, []model.Turn{model.UserTurn("Hello")}, v.Turns)

	c.HandleInput(ctx, "Hello again")
	v = c.View()
	assert.Empty(t, v.Notice, "notice is cleared by the next operation")
	assert.Equal(t, []model.Turn{
		model.UserTurn("Hello"),
		model.UserTurn("Hello again"),
		model.AssistantTurn("back"),
	}, v.Turns)
}

func TestViewReflectsState(t *testing.T) {
	ctx := context.Background()
	c := newTestController(llm.NewMockClient("Try Jaisalmer"))

	v := c.View()
	assert.False(t, v.Active)
	assert.Empty(t, v.Origin)
	assert.NotNil(t, v.Turns)

	c.HandleInput(ctx, "What are the best places to visit in Rajasthan?")
	v = c.View()
	assert.True(t, v.Active)
	assert.Equal(t, "resumed", v.Origin)
	require.NotNil(t, v.ResumedFrom)
	assert.Equal(t, 0, *v.ResumedFrom)
	assert.Equal(t, []model.ArchiveEntry{{Index: 0, Title: "What are the best places to vi..."}}, v.Archive)
}

func TestLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	c := newTestController(
		llm.NewMockClient("Hi").Fail(errors.New("down")),
		WithEvents(pub),
		WithSessionID("sess-1"),
	)

	require.NoError(t, c.Submit(ctx, "Hello"))
	require.Error(t, c.Submit(ctx, "again"))
	c.EndConversation(ctx)
	require.NoError(t, c.Resume(ctx, 0))
	c.StartNew(ctx)

	assert.Equal(t, []model.EventType{
		model.EventTypeArchived,
		model.EventTypeCompletionFailed,
		model.EventTypeEnded,
		model.EventTypeResumed,
		model.EventTypeStartedNew,
	}, pub.types())

	archived := pub.events[0]
	assert.Equal(t, "sess-1", archived.SessionID)
	require.NotNil(t, archived.ArchiveIndex)
	assert.Equal(t, 0, *archived.ArchiveIndex)
	assert.Equal(t, "first_exchange", archived.Reason)
}

func TestPublishFailureDoesNotAffectState(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("nats down")}
	c := newTestController(llm.NewMockClient("Hi"), WithEvents(pub))

	require.NoError(t, c.Submit(ctx, "Hello"))
	assert.Equal(t, 1, c.Store().Len())
}

func TestWithModelIsForwarded(t *testing.T) {
	client := llm.NewMockClient("ok")
	c := newTestController(client, WithModel("gpt-4o"))

	require.NoError(t, c.Submit(context.Background(), "Hello"))
	assert.Equal(t, "gpt-4o", client.Requests()[0].Model)
}
