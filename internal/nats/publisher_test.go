package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/capitalize-ai/travelers-buddy/internal/model"
)

func TestEventSubject(t *testing.T) {
	assert.Equal(t,
		"buddy.session.0b7c.event.archived",
		EventSubject("0b7c", model.EventTypeArchived),
	)
	assert.Equal(t,
		"buddy.session.anonymous.event.ended",
		EventSubject("", model.EventTypeEnded),
	)
	assert.Equal(t, "buddy.session.0b7c.>", SessionFilter("0b7c"))
}

func TestClientNilConnection(t *testing.T) {
	c := &Client{}
	assert.False(t, c.IsConnected())
	c.Close()
}
