package cloudsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/nestcue/internal/ledger"
	"github.com/dukerupert/nestcue/internal/model"
)

type fakeUploader struct {
	mu       sync.Mutex
	session  bool
	err      error
	calls    int
	last     []model.UpcomingItem
	lastFlag bool
	flags    []bool
	block    chan struct{}
}

func (f *fakeUploader) HasSession() bool { return f.session }

func (f *fakeUploader) PutReminders(_ context.Context, items []model.UpcomingItem, notifEnabled bool) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = items
	f.lastFlag = notifEnabled
	f.flags = append(f.flags, notifEnabled)
	return f.err
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var t0 = time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC)

func schedule(title string) []model.UpcomingItem {
	return []model.UpcomingItem{{Type: "supp", Tag: "supp-2024-03-06-2000", FireAt: t0.Add(12 * time.Hour), NotificationTitle: title}}
}

func TestMaybeSyncRequiresSession(t *testing.T) {
	up := &fakeUploader{}
	s := NewSyncer(up, ledger.NewMemoryStorage(), nil, nil)

	if s.MaybeSync(context.Background(), schedule("a"), t0) {
		t.Error("expected no sync without a session")
	}
}

func TestMaybeSyncHashAndRateLimit(t *testing.T) {
	up := &fakeUploader{session: true}
	store := ledger.NewMemoryStorage()
	s := NewSyncer(up, store, nil, nil)
	ctx := context.Background()

	if !s.MaybeSync(ctx, schedule("a"), t0) {
		t.Fatal("expected first sync")
	}
	s.Wait()

	if s.MaybeSync(ctx, schedule("a"), t0.Add(5*time.Minute)) {
		t.Error("expected unchanged schedule to skip")
	}
	if s.MaybeSync(ctx, schedule("b"), t0.Add(time.Minute)) {
		t.Error("expected rate limit inside two minutes")
	}
	if !s.MaybeSync(ctx, schedule("b"), t0.Add(2*time.Minute)) {
		t.Error("expected changed schedule to sync after two minutes")
	}
	s.Wait()

	if up.count() != 2 {
		t.Errorf("uploads = %d, want 2", up.count())
	}
	raw, _ := store.Get(HashKey)
	if string(raw) != s.LastHash() || len(raw) == 0 {
		t.Errorf("persisted hash = %q, last = %q", raw, s.LastHash())
	}

	// A new syncer over the same storage does not resend.
	restarted := NewSyncer(up, store, nil, nil)
	if restarted.MaybeSync(ctx, schedule("b"), t0.Add(time.Hour)) {
		t.Error("expected persisted hash to suppress resync")
	}
}

func TestMaybeSyncFailureKeepsHash(t *testing.T) {
	up := &fakeUploader{session: true, err: errors.New("offline")}
	s := NewSyncer(up, ledger.NewMemoryStorage(), nil, nil)
	ctx := context.Background()

	s.MaybeSync(ctx, schedule("a"), t0)
	s.Wait()
	if s.LastHash() != "" {
		t.Error("hash committed after failed upload")
	}

	up.mu.Lock()
	up.err = nil
	up.mu.Unlock()
	if !s.MaybeSync(ctx, schedule("a"), t0.Add(2*time.Minute)) {
		t.Error("expected retry on the next eligible tick")
	}
	s.Wait()
	if s.LastHash() == "" {
		t.Error("hash not committed after success")
	}
}

func TestMaybeSyncSkipsWhileBusy(t *testing.T) {
	up := &fakeUploader{session: true, block: make(chan struct{})}
	s := NewSyncer(up, ledger.NewMemoryStorage(), nil, nil)
	ctx := context.Background()

	if !s.MaybeSync(ctx, schedule("a"), t0) {
		t.Fatal("expected first sync")
	}
	if !s.Busy() {
		t.Error("expected busy while uploading")
	}
	if s.MaybeSync(ctx, schedule("b"), t0.Add(10*time.Minute)) {
		t.Error("expected in-flight sync to block another")
	}
	close(up.block)
	s.Wait()
	if s.Busy() {
		t.Error("expected idle after upload")
	}
}

func TestDisableClearsHash(t *testing.T) {
	up := &fakeUploader{session: true}
	s := NewSyncer(up, ledger.NewMemoryStorage(), nil, nil)
	ctx := context.Background()

	s.MaybeSync(ctx, schedule("a"), t0)
	s.Wait()

	if err := s.Disable(ctx); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if up.lastFlag || len(up.last) != 0 {
		t.Errorf("disable uploaded %d items with notif_enabled=%v", len(up.last), up.lastFlag)
	}
	if !s.MaybeSync(ctx, schedule("a"), t0.Add(time.Minute)) {
		t.Error("expected resync after disable")
	}
	s.Wait()
}

func (f *fakeUploader) sentFlags() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.flags...)
}

func (s *Syncer) gen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func TestDisableWhileUploadInFlight(t *testing.T) {
	up := &fakeUploader{session: true, block: make(chan struct{})}
	store := ledger.NewMemoryStorage()
	s := NewSyncer(up, store, nil, nil)
	ctx := context.Background()

	if !s.MaybeSync(ctx, schedule("a"), t0) {
		t.Fatal("expected sync to start")
	}
	if !s.Busy() {
		t.Fatal("expected upload in flight")
	}

	done := make(chan error, 1)
	go func() { done <- s.Disable(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for s.gen() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("disable never started")
		}
		time.Sleep(time.Millisecond)
	}
	close(up.block)

	if err := <-done; err != nil {
		t.Fatalf("disable: %v", err)
	}
	s.Wait()

	flags := up.sentFlags()
	if len(flags) != 2 || flags[len(flags)-1] {
		t.Errorf("relay writes (notif_enabled) = %v, want the disable last", flags)
	}
	if h := s.LastHash(); h != "" {
		t.Errorf("last hash = %q, want empty after disable", h)
	}
	if raw, _ := store.Get(HashKey); raw != nil {
		t.Errorf("persisted hash = %q, want none", raw)
	}
	if !s.MaybeSync(ctx, schedule("a"), t0.Add(time.Minute)) {
		t.Error("expected the same schedule to upload again after disable")
	}
	s.Wait()
}

func TestUploadSkippedAfterDisable(t *testing.T) {
	up := &fakeUploader{session: true}
	s := NewSyncer(up, ledger.NewMemoryStorage(), nil, nil)
	ctx := context.Background()

	if err := s.Disable(ctx); err != nil {
		t.Fatalf("disable: %v", err)
	}
	// An upload captured before the disable never reaches the relay.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.upload(ctx, schedule("a"), "stale", 0)
	}()
	s.Wait()

	if flags := up.sentFlags(); len(flags) != 1 || flags[0] {
		t.Errorf("relay writes (notif_enabled) = %v, want only the disable", flags)
	}
	if s.LastHash() != "" {
		t.Error("stale upload committed its hash")
	}
}
