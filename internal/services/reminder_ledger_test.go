package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventrio/internal/domain"
)

func TestReminderLedger_DayBoundaries(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	repo := &fakeReminderRepo{}
	ledger := NewReminderLedger(repo, ny)
	ctx := context.Background()

	// 23:30 in New York on the 9th.
	late := time.Date(2025, 6, 10, 3, 30, 0, 0, time.UTC)
	_, err = ledger.Record(ctx, "att-1", "m", domain.ChannelEmail, late)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-09", repo.days[0])

	sent, err := ledger.HasSentToday(ctx, "att-1", late.Add(20*time.Minute))
	require.NoError(t, err)
	assert.True(t, sent, "same New York day")

	sent, err = ledger.HasSentToday(ctx, "att-1", late.Add(40*time.Minute))
	require.NoError(t, err)
	assert.False(t, sent, "next New York day")

	channels, err := ledger.ChannelsSentToday(ctx, "att-1", late)
	require.NoError(t, err)
	assert.Equal(t, []domain.Channel{domain.ChannelEmail}, channels)
}

func TestReminderLedger_Errors(t *testing.T) {
	ctx := context.Background()
	repo := &fakeReminderRepo{readErr: errors.New("down"), createErr: errors.New("down")}
	ledger := NewReminderLedger(repo, nil)

	var pe *domain.PersistenceError
	_, err := ledger.HasSentToday(ctx, "att-1", runNow)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "has_sent_today", pe.Op)

	_, err = ledger.Record(ctx, "att-1", "m", domain.ChannelEmail, runNow)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "record", pe.Op)

	_, err = ledger.Record(ctx, "att-1", "m", domain.Channel("SMS"), runNow)
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReminderLedger_SecondEntrySameChannelSameDay(t *testing.T) {
	ledger := NewReminderLedger(&fakeReminderRepo{}, time.UTC)
	ctx := context.Background()

	_, err := ledger.Record(ctx, "att-1", "m", domain.ChannelEmail, runNow)
	require.NoError(t, err)
	_, err = ledger.Record(ctx, "att-1", "m", domain.ChannelEmail, runNow.Add(time.Hour))
	require.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = ledger.Record(ctx, "att-1", "m", domain.ChannelWhatsApp, runNow.Add(time.Hour))
	require.NoError(t, err)
}
