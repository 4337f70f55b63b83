package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelens/lifelens/internal/confront"
)

func TestIsJournalWrite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")

	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"journal.db", fsnotify.Write, true},
		{"journal.db-wal", fsnotify.Write, true},
		{"journal.db-wal", fsnotify.Create, true},
		{"journal.db-shm", fsnotify.Write, false},
		{"journal.db", fsnotify.Chmod, false},
		{"journal.db", fsnotify.Remove, false},
		{"config.toml", fsnotify.Write, false},
	}

	for _, tt := range tests {
		ev := fsnotify.Event{Name: filepath.Join(dir, tt.name), Op: tt.op}
		if got := isJournalWrite(dbPath, ev); got != tt.want {
			t.Errorf("isJournalWrite(%s %s) = %v, want %v", tt.name, tt.op, got, tt.want)
		}
	}

	other := fsnotify.Event{Name: filepath.Join(t.TempDir(), "journal.db"), Op: fsnotify.Write}
	if isJournalWrite(dbPath, other) {
		t.Error("a journal.db in another directory should be ignored")
	}
}

type fakeJournal struct {
	mu     sync.Mutex
	fp     string
	fpErr  error
	calls  atomic.Int32
	scopes []confront.Period
}

func (f *fakeJournal) fingerprint(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fp, f.fpErr
}

func (f *fakeJournal) setFingerprint(fp string) {
	f.mu.Lock()
	f.fp = fp
	f.mu.Unlock()
}

func (f *fakeJournal) generate(_ context.Context, p confront.Period) (confront.Result, error) {
	f.mu.Lock()
	f.scopes = append(f.scopes, p)
	f.mu.Unlock()
	f.calls.Add(1)
	return confront.Result{Generated: 1}, nil
}

func TestJournalWatcher_Refresh(t *testing.T) {
	fake := &fakeJournal{fp: "1"}
	var out bytes.Buffer
	w := &journalWatcher{fingerprint: fake.fingerprint, generate: fake.generate, out: &out}
	ctx := context.Background()

	require.True(t, w.refresh(ctx))
	assert.Equal(t, []confront.Period{confront.Weekly, confront.Monthly}, fake.scopes)
	assert.Contains(t, out.String(), "weekly 1 monthly 1")

	assert.False(t, w.refresh(ctx), "unchanged events must not regenerate")

	fake.setFingerprint("2")
	assert.True(t, w.refresh(ctx))
	assert.Equal(t, int32(4), fake.calls.Load())

	fake.fpErr = errors.New("locked")
	fake.setFingerprint("3")
	assert.False(t, w.refresh(ctx))
}

func TestJournalWatcher_RunDebounces(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")
	fake := &fakeJournal{fp: "1"}
	var out bytes.Buffer
	w := &journalWatcher{dbPath: dbPath, fingerprint: fake.fingerprint, generate: fake.generate, out: &out}

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx, events, errs, 20*time.Millisecond) }()

	for i := 0; i < 5; i++ {
		events <- fsnotify.Event{Name: dbPath + "-wal", Op: fsnotify.Write}
	}
	events <- fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}
	errs <- errors.New("transient")

	// One burst, one regeneration of both periods.
	assert.Eventually(t, func() bool { return fake.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	// Our own confrontation writes leave the fingerprint alone.
	events <- fsnotify.Event{Name: dbPath + "-wal", Op: fsnotify.Write}
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(2), fake.calls.Load())

	fake.setFingerprint("2")
	events <- fsnotify.Event{Name: dbPath, Op: fsnotify.Write}
	assert.Eventually(t, func() bool { return fake.calls.Load() == 4 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "Stopping watcher.")
}

func TestJournalWatcher_RunStopsOnClosedChannel(t *testing.T) {
	w := &journalWatcher{out: &bytes.Buffer{}}
	events := make(chan fsnotify.Event)
	close(events)
	assert.NoError(t, w.run(context.Background(), events, make(chan error), time.Millisecond))
}
