package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasantadh/callbreak-np/internal/agent"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

func TestParseReply_Call(t *testing.T) {
	msg, err := parseReply(agent.ActionCall, " 4 ")
	require.NoError(t, err)
	require.NotNil(t, msg.Call)
	assert.Equal(t, 4, msg.Call.Int())

	_, err = parseReply(agent.ActionCall, "0")
	assert.ErrorIs(t, err, domain.ErrCallValueTooSmall)
	_, err = parseReply(agent.ActionCall, "four")
	assert.Error(t, err)
}

func TestParseReply_Break(t *testing.T) {
	msg, err := parseReply(agent.ActionBreak, "10s")
	require.NoError(t, err)
	require.NotNil(t, msg.Break)
	assert.Equal(t, domain.NewCard(domain.Ten, domain.Spades), *msg.Break)

	_, err = parseReply(agent.ActionBreak, "1x")
	assert.ErrorIs(t, err, domain.ErrInvalidCard)
}

func TestPrompt_RetriesUntilValid(t *testing.T) {
	in := bufio.NewScanner(strings.NewReader("zero\n14\n2\n"))
	var out bytes.Buffer
	msg, err := prompt(in, &out, agent.ServerMessage{Action: agent.ActionCall})
	require.NoError(t, err)
	require.NotNil(t, msg.Call)
	assert.Equal(t, 2, msg.Call.Int())
	assert.Equal(t, 3, strings.Count(out.String(), "call (1-13)"))
}
