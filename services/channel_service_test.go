package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_AddListRemove(t *testing.T) {
	db := newTestDB(t)
	channels := NewChannelService(db)

	first, err := channels.AddChannel("https://t.me/rewards_news")
	require.NoError(t, err)
	second, err := channels.AddChannel("https://t.me/rewards_drops")
	require.NoError(t, err)

	listed, err := channels.ListChannels()
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Oldest first
	assert.Equal(t, first.Link, listed[0].Link)
	assert.Equal(t, second.Link, listed[1].Link)

	require.NoError(t, channels.RemoveChannel(first.ID))

	listed, err = channels.ListChannels()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.Link, listed[0].Link)
}

func TestChannel_RemoveMissing(t *testing.T) {
	db := newTestDB(t)
	channels := NewChannelService(db)

	assert.ErrorIs(t, channels.RemoveChannel(999), ErrChannelNotFound)
}
