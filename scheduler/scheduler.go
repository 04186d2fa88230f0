package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"raksproperties/catalog"
	"raksproperties/config"
	"raksproperties/storage"
)

// RunRecorder keeps a history of reload attempts
type RunRecorder interface {
	RecordReload(run *storage.ReloadRun) error
}

// Scheduler refreshes the live catalog from its source on a cron
// expression or a fixed interval, and on demand via Trigger.
type Scheduler struct {
	cfg      config.SchedulerConfig
	source   catalog.Source
	store    *catalog.Store
	recorder RunRecorder
	cron     *cron.Cron
	ticker   *time.Ticker
	stopCh   chan struct{}
	trigger  chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex // serializes reloads
}

func New(cfg config.SchedulerConfig, source catalog.Source, store *catalog.Store) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		source:  source,
		store:   store,
		cron:    cron.New(),
		stopCh:  make(chan struct{}),
		trigger: make(chan struct{}, 1),
	}
}

// SetRecorder registers where reload attempts are logged
func (s *Scheduler) SetRecorder(r RunRecorder) {
	s.recorder = r
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollTrigger(ctx)

	if s.cfg.Cron != "" {
		log.Printf("Starting catalog reload with cron: %s", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() {
			s.Reload(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Interval > 0 {
		log.Printf("Starting catalog reload with interval: %s", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.Reload(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No reload schedule configured, catalog reloads only on demand")
	}

	return nil
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cron != nil {
			<-s.cron.Stop().Done()
		}
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
	})
}

// Trigger requests a reload without waiting for it. Requests arriving while
// one is already pending are coalesced.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) pollTrigger(ctx context.Context) {
	for {
		select {
		case <-s.trigger:
			log.Println("Catalog reload triggered manually")
			s.Reload(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Reload loads the source once and swaps the snapshot if its contents
// changed. On error the current snapshot stays in place.
func (s *Scheduler) Reload(ctx context.Context) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &storage.ReloadRun{Source: s.source.Name(), StartedAt: time.Now()}
	defer func() {
		run.FinishedAt = time.Now()
		if err != nil {
			run.Status = storage.ReloadStatusFailed
			run.Error = err.Error()
		}
		s.record(run)
	}()

	next, err := s.source.Load(ctx)
	if err != nil {
		log.Printf("Warning: catalog reload from %s failed, keeping current snapshot: %v", s.source.Name(), err)
		return false, fmt.Errorf("load catalog: %w", err)
	}

	run.Fingerprint = next.Fingerprint()
	prevFingerprint := ""
	if cur := s.store.Current(); cur != nil {
		prevFingerprint = cur.Fingerprint()
	}
	if run.Fingerprint == prevFingerprint {
		run.Status = storage.ReloadStatusUnchanged
		return false, nil
	}

	s.store.Swap(next)
	run.Status = storage.ReloadStatusChanged
	log.Printf("Catalog reloaded from %s: %s -> %s", s.source.Name(), prevFingerprint, run.Fingerprint)
	return true, nil
}

func (s *Scheduler) record(run *storage.ReloadRun) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordReload(run); err != nil {
		log.Printf("Warning: failed to record reload run: %v", err)
	}
}
