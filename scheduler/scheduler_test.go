package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"raksproperties/catalog"
	"raksproperties/config"
	"raksproperties/storage"
)

type fakeSource struct {
	mu    sync.Mutex
	next  *catalog.Catalog
	err   error
	loads int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.next, f.err
}

func (f *fakeSource) set(c *catalog.Catalog, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next, f.err = c, err
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

type memRecorder struct {
	mu   sync.Mutex
	runs []storage.ReloadRun
}

func (m *memRecorder) RecordReload(run *storage.ReloadRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return c
}

func TestReload_KeepsSnapshotOnError(t *testing.T) {
	initial := defaultCatalog(t)
	store := catalog.NewStore(initial)
	src := &fakeSource{}
	src.set(nil, errors.New("bucket unreachable"))

	rec := &memRecorder{}
	s := New(config.SchedulerConfig{}, src, store)
	s.SetRecorder(rec)

	changed, err := s.Reload(context.Background())
	if err == nil || changed {
		t.Fatalf("expected failed reload, got changed=%v err=%v", changed, err)
	}
	if store.Current() != initial {
		t.Fatalf("snapshot replaced after failed reload")
	}
	if len(rec.runs) != 1 || rec.runs[0].Status != storage.ReloadStatusFailed || rec.runs[0].Error == "" {
		t.Fatalf("expected one failed run, got %+v", rec.runs)
	}
}

func TestReload_SwapsOnlyWhenChanged(t *testing.T) {
	initial := defaultCatalog(t)
	store := catalog.NewStore(initial)
	src := &fakeSource{}
	rec := &memRecorder{}
	s := New(config.SchedulerConfig{}, src, store)
	s.SetRecorder(rec)

	same := defaultCatalog(t)
	src.set(same, nil)
	changed, err := s.Reload(context.Background())
	if err != nil || changed {
		t.Fatalf("expected unchanged reload, got changed=%v err=%v", changed, err)
	}
	if store.Current() != initial {
		t.Fatalf("identical catalog should not replace the snapshot")
	}

	edited := defaultCatalog(t)
	edited.Properties[0].Price = 1300000
	src.set(edited, nil)
	changed, err = s.Reload(context.Background())
	if err != nil || !changed {
		t.Fatalf("expected changed reload, got changed=%v err=%v", changed, err)
	}
	if store.Current() != edited {
		t.Fatalf("expected edited catalog to be live")
	}

	if len(rec.runs) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(rec.runs))
	}
	if rec.runs[0].Status != storage.ReloadStatusUnchanged || rec.runs[1].Status != storage.ReloadStatusChanged {
		t.Fatalf("unexpected statuses %s, %s", rec.runs[0].Status, rec.runs[1].Status)
	}
	if rec.runs[1].Fingerprint != edited.Fingerprint() {
		t.Fatalf("recorded fingerprint does not match the new catalog")
	}
}

func TestTrigger_ReloadsInBackground(t *testing.T) {
	store := catalog.NewStore(defaultCatalog(t))
	src := &fakeSource{}
	src.set(defaultCatalog(t), nil)

	s := New(config.SchedulerConfig{}, src, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop()

	s.Trigger()
	deadline := time.Now().Add(2 * time.Second)
	for src.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("trigger did not cause a reload")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStart_InvalidCron(t *testing.T) {
	s := New(config.SchedulerConfig{Cron: "not a cron"}, &fakeSource{}, catalog.NewStore(nil))
	defer s.Stop()
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected invalid cron error")
	}
}
