package inmemdb_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/timeac/core/bell"
	"github.com/trezcool/timeac/core/schedule"
	. "github.com/trezcool/timeac/storage/database/inmem"
	"github.com/trezcool/timeac/tests"
)

func TestScheduleRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewScheduleRepository(Open())

	_, err := repo.GetSettings(ctx)
	assert.ErrorIs(t, err, schedule.ErrNotFound)

	collection := testutil.Collection()
	require.NoError(t, repo.Replace(ctx, schedule.Snapshot{Schedules: collection, Settings: schedule.DefaultSettings()}))

	// stored copies are isolated from the caller
	collection[0].Blocks[0].Name = "changed"
	got, err := repo.QueryAllSchedules(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutil.Collection(), got)
	got[0].Blocks[0].Name = "changed"
	got, err = repo.QueryAllSchedules(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Block 1", got[0].Blocks[0].Name)

	special := schedule.DefaultSettings().With(schedule.Morning, schedule.Special)
	require.NoError(t, repo.SaveSettings(ctx, special))
	settings, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, special, settings)
}

func TestBellStore(t *testing.T) {
	ctx := context.Background()
	store := NewBellStore(Open())

	_, err := store.CurrentAlias(ctx)
	assert.ErrorIs(t, err, bell.ErrNotFound)
	require.NoError(t, store.SetCurrentAlias(ctx, "3"))
	alias, err := store.CurrentAlias(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3", alias)

	no := false
	require.NoError(t, store.UpdateControls(ctx, bell.ControlsPatch{AutoRingEnabled: &no}))
	_, err = store.IncrManualRing(ctx)
	require.NoError(t, err)
	require.NoError(t, store.SetRinging(ctx, true))

	c, err := store.GetControls(ctx)
	require.NoError(t, err)
	assert.Equal(t, bell.Controls{ManualRing: 1, IsRinging: true}, c)
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()
	n := NewNotifier()

	var a, b int32
	payloads := make(chan string, 1)
	unsubA, err := n.Subscribe("topic", func(payload string) {
		atomic.AddInt32(&a, 1)
		payloads <- payload
	})
	require.NoError(t, err)
	_, err = n.Subscribe("other", func(string) { atomic.AddInt32(&b, 1) })
	require.NoError(t, err)

	require.NoError(t, n.Publish(ctx, "topic", "origin-1"))
	select {
	case payload := <-payloads:
		assert.Equal(t, "origin-1", payload)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	unsubA()
	unsubA()
	require.NoError(t, n.Publish(ctx, "topic", "origin-1"))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&a))
	assert.Zero(t, atomic.LoadInt32(&b))
}
