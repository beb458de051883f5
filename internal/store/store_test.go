package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/drivetheory.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.PutBlob("k", 1, []byte("v")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	v, _, err := s2.GetBlob("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "v" {
		t.Fatalf("expected blob to survive reopen, got %q", v)
	}
}

func TestDefaultDBPathEnvOverride(t *testing.T) {
	t.Setenv("DRIVETHEORY_DB", "/tmp/custom.db")
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/custom.db" {
		t.Fatalf("expected env override, got %q", path)
	}
}

func TestDefaultDBPathXDG(t *testing.T) {
	t.Setenv("DRIVETHEORY_DB", "")
	t.Setenv("XDG_DATA_HOME", "/data")
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/data/drivetheory/drivetheory.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// KV blobs
// ============================================================

func TestGetBlobMissing(t *testing.T) {
	s := newTestStore(t)
	v, version, err := s.GetBlob("nope")
	if err != nil {
		t.Fatal(err)
	}
	if v != nil || version != 0 {
		t.Fatalf("expected nil blob, got %q v%d", v, version)
	}
}

func TestPutBlobOverwrites(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutBlob("user-storage", 2, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.PutBlob("user-storage", 3, []byte(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	v, version, err := s.GetBlob("user-storage")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != `{"a":2}` || version != 3 {
		t.Fatalf("got %q v%d", v, version)
	}
}

func TestDeleteBlob(t *testing.T) {
	s := newTestStore(t)
	s.PutBlob("k", 1, []byte("x"))
	if err := s.DeleteBlob("k"); err != nil {
		t.Fatal(err)
	}
	v, _, _ := s.GetBlob("k")
	if v != nil {
		t.Fatal("expected blob to be deleted")
	}
}

func TestBackupBlob(t *testing.T) {
	s := newTestStore(t)
	s.PutBlob("user-storage", 3, []byte("garbage"))

	name, err := s.BackupBlob("user-storage")
	if err != nil {
		t.Fatal(err)
	}
	if name == "" {
		t.Fatal("expected backup key")
	}
	v, version, _ := s.GetBlob(name)
	if string(v) != "garbage" || version != 3 {
		t.Fatalf("backup mismatch: %q v%d", v, version)
	}
}

func TestBackupBlobMissing(t *testing.T) {
	s := newTestStore(t)
	name, err := s.BackupBlob("user-storage")
	if err != nil {
		t.Fatal(err)
	}
	if name != "" {
		t.Fatalf("expected no backup, got %q", name)
	}
}

// ============================================================
// Settings
// ============================================================

func TestDefaultSettings(t *testing.T) {
	s := newTestStore(t)
	want := map[string]string{
		"theme_mode":    "system",
		"sound_effects": "on",
		"notifications": "on",
		"daily_goal_xp": "50",
	}
	for k, v := range want {
		got, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("get %s: %v", k, err)
		}
		if got != v {
			t.Fatalf("%s: expected %q, got %q", k, v, got)
		}
	}
}

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting("theme_mode", "dark"); err != nil {
		t.Fatal(err)
	}
	if got := s.SettingOr("theme_mode", ""); got != "dark" {
		t.Fatalf("expected dark, got %q", got)
	}
}

func TestSettingFallbacks(t *testing.T) {
	s := newTestStore(t)
	if got := s.SettingOr("missing", "x"); got != "x" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := s.IntSetting("daily_goal_xp", 0); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
	s.SetSetting("daily_goal_xp", "lots")
	if got := s.IntSetting("daily_goal_xp", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 4 {
		t.Fatalf("expected 4 settings, got %d", len(settings))
	}
	if settings[0].Key != "daily_goal_xp" {
		t.Fatalf("expected sorted keys, first was %q", settings[0].Key)
	}
}

// ============================================================
// Practice sessions
// ============================================================

func TestStartAndFinishSession(t *testing.T) {
	s := newTestStore(t)
	p, err := s.StartSession("s1", "road-signs")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != SessionActive || p.CompletedAt != nil {
		t.Fatalf("unexpected new session: %+v", p)
	}
	if p.StartedAt.IsZero() {
		t.Fatal("StartedAt should be set")
	}

	p, err = s.FinishSession("s1", SessionCompleted, 5, 4, 40)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != SessionCompleted || p.Answered != 5 || p.Correct != 4 || p.XPEarned != 40 {
		t.Fatalf("unexpected finished session: %+v", p)
	}
	if p.CompletedAt == nil {
		t.Fatal("CompletedAt should be set")
	}
}

func TestFinishSessionTwice(t *testing.T) {
	s := newTestStore(t)
	s.StartSession("s1", "road-signs")
	if _, err := s.FinishSession("s1", SessionCompleted, 1, 1, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FinishSession("s1", SessionCompleted, 2, 2, 20); err == nil {
		t.Fatal("expected error finishing an already finished session")
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSession("missing"); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestAbandonStaleSessions(t *testing.T) {
	s := newTestStore(t)
	s.StartSession("a", "road-signs")
	s.StartSession("b", "highway-code")
	s.StartSession("c", "highway-code")
	s.FinishSession("c", SessionCompleted, 1, 1, 10)

	n, err := s.AbandonStaleSessions()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 abandoned, got %d", n)
	}
	active, _ := s.ListSessions(SessionFilter{Status: SessionActive})
	if len(active) != 0 {
		t.Fatalf("expected no active sessions, got %d", len(active))
	}
}

func TestListSessionsFilter(t *testing.T) {
	s := newTestStore(t)
	s.StartSession("a", "road-signs")
	s.StartSession("b", "highway-code")
	s.StartSession("c", "road-signs")

	all, err := s.ListSessions(SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if all[0].ID != "c" {
		t.Fatalf("expected newest first, got %s", all[0].ID)
	}

	signs, _ := s.ListSessions(SessionFilter{CategoryID: "road-signs"})
	if len(signs) != 2 {
		t.Fatalf("expected 2 road-signs sessions, got %d", len(signs))
	}

	limited, _ := s.ListSessions(SessionFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("expected 1 session, got %d", len(limited))
	}

	future := time.Now().Add(time.Hour)
	none, _ := s.ListSessions(SessionFilter{From: &future})
	if len(none) != 0 {
		t.Fatalf("expected no sessions after now, got %d", len(none))
	}
}

func TestDailySessionSummary(t *testing.T) {
	s := newTestStore(t)
	s.StartSession("a", "road-signs")
	s.FinishSession("a", SessionCompleted, 5, 4, 40)
	s.StartSession("b", "road-signs")
	s.FinishSession("b", SessionOutOfHearts, 6, 1, 10)
	s.StartSession("c", "road-signs") // still active, excluded

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	sums, err := s.GetDailySessionSummary(from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 {
		t.Fatalf("expected 1 summary row, got %d", len(sums))
	}
	got := sums[0]
	if got.SessionCount != 2 || got.Answered != 11 || got.Correct != 5 || got.XPEarned != 50 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

// ============================================================
// Persister
// ============================================================

type flakyBlobs struct {
	mu       sync.Mutex
	failures int
	calls    int
	value    []byte
}

func (f *flakyBlobs) GetBlob(string) ([]byte, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, 0, nil
}

func (f *flakyBlobs) PutBlob(_ string, _ int, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("database is locked")
	}
	f.value = value
	return nil
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2}
}

func TestPersisterRoundTrip(t *testing.T) {
	s := newTestStore(t)
	p := NewPersister(s, "user-storage", 3, fastRetry(), nil)

	v, err := p.Load()
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatal("expected nothing stored yet")
	}
	if err := p.Save(context.Background(), p.Next(), []byte("one")); err != nil {
		t.Fatal(err)
	}
	v, _ = p.Load()
	if string(v) != "one" {
		t.Fatalf("expected one, got %q", v)
	}
}

func TestPersisterRetriesTransientFailures(t *testing.T) {
	blobs := &flakyBlobs{failures: 2}
	p := NewPersister(blobs, "k", 3, fastRetry(), nil)
	if err := p.Save(context.Background(), p.Next(), []byte("x")); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if blobs.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", blobs.calls)
	}
}

func TestPersisterGivesUp(t *testing.T) {
	blobs := &flakyBlobs{failures: 10}
	p := NewPersister(blobs, "k", 3, fastRetry(), nil)
	if err := p.Save(context.Background(), p.Next(), []byte("x")); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if blobs.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", blobs.calls)
	}
	if blobs.value != nil {
		t.Fatal("nothing should have been written")
	}
}

func TestPersisterDropsStaleWrites(t *testing.T) {
	blobs := &flakyBlobs{}
	p := NewPersister(blobs, "k", 3, fastRetry(), nil)
	older := p.Next()
	newer := p.Next()

	if err := p.Save(context.Background(), newer, []byte("new")); err != nil {
		t.Fatal(err)
	}
	if err := p.Save(context.Background(), older, []byte("old")); !errors.Is(err, ErrStaleWrite) {
		t.Fatalf("expected ErrStaleWrite, got %v", err)
	}
	if string(blobs.value) != "new" {
		t.Fatalf("expected newest value kept, got %q", blobs.value)
	}
}

func TestPersisterHonorsContext(t *testing.T) {
	blobs := &flakyBlobs{failures: 10}
	cfg := RetryConfig{MaxAttempts: 5, InitialWait: time.Second, MaxWait: time.Second, Multiplier: 1}
	p := NewPersister(blobs, "k", 3, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Save(ctx, p.Next(), []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
