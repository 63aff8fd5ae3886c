package display_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/timeac/core/display"
	"github.com/trezcool/timeac/core/schedule"
	"github.com/trezcool/timeac/tests"
)

type fakeSource struct {
	mu   sync.Mutex
	snap schedule.Snapshot
	subs []func(schedule.Snapshot)
}

func (s *fakeSource) Snapshot() schedule.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

func (s *fakeSource) Subscribe(fn func(schedule.Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	return func() {}
}

func (s *fakeSource) set(snap schedule.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	subs := append([]func(schedule.Snapshot){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

type fakeBell struct {
	mu      sync.Mutex
	aliases []string
	err     error
}

func (b *fakeBell) PublishAlias(_ context.Context, alias string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.aliases = append(b.aliases, alias)
	return b.err
}

func (b *fakeBell) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.aliases...)
}

func mockNow(t *testing.T, hh, mm int) {
	orig := NowFunc
	NowFunc = func() time.Time { return testutil.At(hh, mm) }
	t.Cleanup(func() { NowFunc = orig })
}

func newSource() *fakeSource {
	return &fakeSource{snap: schedule.Snapshot{Schedules: testutil.Collection(), Settings: schedule.DefaultSettings()}}
}

func TestMonitor_Step(t *testing.T) {
	ctx := context.Background()
	bell := &fakeBell{}
	m := NewMonitor(newSource(), bell, &testutil.Logger{}, Options{})

	var notified []schedule.Resolution
	m.Subscribe(func(res schedule.Resolution) { notified = append(notified, res) })

	mockNow(t, 8, 5)
	res := m.Step(ctx, false)
	assert.Equal(t, schedule.StatusInBlock, res.Status)
	assert.Equal(t, 0, res.BlockIndex)

	// same block: no notification
	mockNow(t, 8, 9)
	m.Step(ctx, false)
	// next block
	mockNow(t, 8, 10)
	m.Step(ctx, false)
	// forced
	m.Step(ctx, true)

	require.Len(t, notified, 3)
	assert.Equal(t, 1, notified[1].BlockIndex)
	assert.Equal(t, []string{"1", "1", "2", "2"}, bell.published())
	assert.Equal(t, 1, m.Current().BlockIndex)
}

func TestMonitor_Step_PublishErrorIsLogged(t *testing.T) {
	logger := &testutil.Logger{}
	m := NewMonitor(newSource(), &fakeBell{err: errors.New("down")}, logger, Options{})

	mockNow(t, 11, 0)
	res := m.Step(context.Background(), false)
	assert.Equal(t, schedule.StatusElapsed, res.Status)
	assert.Equal(t, []string{"error: publishing alias"}, logger.Messages())
}

func TestMonitor_Current_BeforeFirstStep(t *testing.T) {
	m := NewMonitor(newSource(), nil, &testutil.Logger{}, Options{})
	mockNow(t, 7, 30)
	res := m.Current()
	assert.Equal(t, schedule.StatusPending, res.Status)
	assert.Equal(t, schedule.FreeAlias, res.Alias())
}

func TestMonitor_HourFormat(t *testing.T) {
	source := newSource()
	source.snap.Schedules = []schedule.Schedule{testutil.Schedule(1, schedule.Afternoon, schedule.Normal, "23:00", 30, 60)}
	mockNow(t, 23, 45)

	elapsed := NewMonitor(source, nil, &testutil.Logger{}, Options{}).Step(context.Background(), false)
	block, ok := elapsed.CurrentBlock()
	require.True(t, ok)
	assert.Equal(t, "24:30", block.End)

	wrapped := NewMonitor(source, nil, &testutil.Logger{}, Options{HourFormat: schedule.Wrap24}).Step(context.Background(), false)
	block, ok = wrapped.CurrentBlock()
	require.True(t, ok)
	assert.Equal(t, "00:30", block.End)
}

func TestMonitor_Run(t *testing.T) {
	mockNow(t, 8, 5)
	source := newSource()
	bell := &fakeBell{}
	m := NewMonitor(source, bell, &testutil.Logger{}, Options{TickInterval: 5 * time.Millisecond})

	changed := make(chan schedule.Resolution, 10)
	m.Subscribe(func(res schedule.Resolution) {
		select {
		case changed <- res:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case res := <-changed:
		assert.Equal(t, 1, res.Schedule.ID)
	case <-time.After(time.Second):
		t.Fatal("no initial resolution")
	}

	// switching the morning to Special is picked up without waiting for a state change
	source.set(schedule.Snapshot{
		Schedules: testutil.Collection(),
		Settings:  schedule.DefaultSettings().With(schedule.Morning, schedule.Special),
	})
	select {
	case res := <-changed:
		assert.Equal(t, schedule.StatusPending, res.Status)
		assert.Equal(t, 2, res.Schedule.ID)
	case <-time.After(time.Second):
		t.Fatal("no resolution after change")
	}

	assert.Eventually(t, func() bool {
		aliases := bell.published()
		return len(aliases) > 2 && aliases[len(aliases)-1] == "F"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
