package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/travelers-buddy/internal/config"
	"github.com/capitalize-ai/travelers-buddy/internal/llm"
	"github.com/capitalize-ai/travelers-buddy/internal/session"
)

func runScript(t *testing.T, client llm.Client, input string) (string, *session.Controller) {
	t.Helper()
	var out bytes.Buffer
	ctrl := session.NewController(session.NewStore(), client)
	r := &repl{ctrl: ctrl, out: &out, plain: true}
	require.NoError(t, r.loop(context.Background(), config.DefaultPersona(), strings.NewReader(input)))
	return out.String(), ctrl
}

func TestReplConversation(t *testing.T) {
	client := llm.NewMockClient("Chole bhature in Old Delhi.", "Try Paharganj too.")
	out, ctrl := runScript(t, client, "Street food in Delhi?\nAnything else?\nexit\n/list\n/quit\n")

	assert.Contains(t, out, "Traveler's Buddy")
	assert.Contains(t, out, "buddy> Chole bhature in Old Delhi.")
	assert.Contains(t, out, "buddy> Try Paharganj too.")
	assert.Contains(t, out, "Conversation ended.")
	assert.Contains(t, out, "  1. Street food in Delhi?...")
	assert.Equal(t, 1, ctrl.Store().Len())
	assert.Equal(t, session.StateEmpty, ctrl.State())
}

func TestReplResumeAndErrors(t *testing.T) {
	client := llm.NewMockClient("Warm layers.").Fail(errors.New("rate limited"))
	out, ctrl := runScript(t, client, "Packing for Ladakh?\n/new\n/resume 7\n/resume 1\nAnd shoes?\n")

	assert.Contains(t, out, "Started a new chat.")
	assert.Contains(t, out, "Usage: /resume N")
	assert.Contains(t, out, "you> Packing for Ladakh?")
	assert.Contains(t, out, "you> And shoes?")
	assert.Contains(t, out, "An error occurred: rate limited")
	assert.Equal(t, 3, ctrl.Active().Len())
	assert.Equal(t, 1, ctrl.Store().Len())
}

func TestReplEmptyArchive(t *testing.T) {
	out, _ := runScript(t, llm.NewMockClient(), "/list\n\n")
	assert.Contains(t, out, "No previous chats.")
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"provider", "model", "no-color", "persona"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
