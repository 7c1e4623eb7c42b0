package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedMessage(n int) Message {
	return Message{ID: fmt.Sprintf("id-%d", n), Username: "alice", Text: fmt.Sprintf("message %d", n)}
}

func TestHistoryAppendEvictsOldest(t *testing.T) {
	req := require.New(t)
	h := NewHistory(100)

	for n := 1; n <= 101; n++ {
		h.Append(numberedMessage(n))
	}

	req.Equal(100, h.Len())

	all := h.Recent(100)
	req.Len(all, 100)
	req.Equal("message 2", all[0].Text)
	req.Equal("message 101", all[99].Text)
	for i, msg := range all {
		req.Equal(fmt.Sprintf("message %d", i+2), msg.Text)
	}
}

func TestHistoryRecentChronologicalOrder(t *testing.T) {
	req := require.New(t)
	h := NewHistory(100)

	for n := 1; n <= 60; n++ {
		h.Append(numberedMessage(n))
	}

	recent := h.Recent(50)
	req.Len(recent, 50)
	req.Equal("message 11", recent[0].Text)
	req.Equal("message 60", recent[49].Text)
}

func TestHistoryRecentWithFewerMessages(t *testing.T) {
	h := NewHistory(100)
	h.Append(numberedMessage(1))
	h.Append(numberedMessage(2))

	recent := h.Recent(50)
	assert.Len(t, recent, 2)
	assert.Equal(t, "message 1", recent[0].Text)
}

func TestHistoryRecentEmptyIsNotNil(t *testing.T) {
	h := NewHistory(100)

	recent := h.Recent(50)
	require.NotNil(t, recent)
	require.Empty(t, recent)
}

func TestHistoryDefaultLimit(t *testing.T) {
	h := NewHistory(0)

	for n := 1; n <= 150; n++ {
		h.Append(numberedMessage(n))
	}

	assert.Equal(t, DefaultHistoryLimit, h.Len())
}
