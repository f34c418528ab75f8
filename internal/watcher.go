package internal

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshInterval is how often the collection list is refreshed
const DefaultRefreshInterval = 5 * time.Second

// CollectionLister is the transport call the watcher drives
type CollectionLister interface {
	GetCollections(ctx context.Context) (Payload, error)
}

// CollectionsUpdate is one refresh result. Auto is false for manual refreshes.
type CollectionsUpdate struct {
	Collections []CollectionRef
	Err         error
	Auto        bool
	At          time.Time
}

// FetchCollections lists and normalizes the server's collections
func FetchCollections(ctx context.Context, lister CollectionLister) ([]CollectionRef, error) {
	payload, err := lister.GetCollections(ctx)
	if err != nil {
		return nil, err
	}
	return NormalizeCollections(payload), nil
}

// CollectionWatcher refreshes the collection list on a schedule
type CollectionWatcher struct {
	lister   CollectionLister
	interval time.Duration
	deliver  func(CollectionsUpdate)

	mu        sync.Mutex
	last      CollectionsUpdate
	scheduler *Scheduler
	ownsSched bool
	entry     cron.EntryID
	scheduled bool
}

// NewCollectionWatcher creates a watcher delivering every refresh to fn. A nil
// scheduler gives the watcher one of its own.
func NewCollectionWatcher(lister CollectionLister, interval time.Duration, scheduler *Scheduler, fn func(CollectionsUpdate)) *CollectionWatcher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	w := &CollectionWatcher{
		lister:    lister,
		interval:  interval,
		deliver:   fn,
		scheduler: scheduler,
	}
	if w.scheduler == nil {
		w.scheduler = NewScheduler()
		w.ownsSched = true
	}
	return w
}

// Refresh fetches now and delivers the result as a manual update
func (w *CollectionWatcher) Refresh(ctx context.Context) CollectionsUpdate {
	return w.refresh(ctx, false)
}

// Last returns the most recent update
func (w *CollectionWatcher) Last() CollectionsUpdate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Start schedules automatic refreshes until Stop or ctx is done
func (w *CollectionWatcher) Start(ctx context.Context) error {
	id, err := w.scheduler.Every(w.interval, func() {
		if ctx.Err() != nil {
			return
		}
		w.refresh(ctx, true)
	})
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.entry = id
	w.scheduled = true
	w.mu.Unlock()

	w.scheduler.Start()
	return nil
}

// Stop ends automatic refreshes
func (w *CollectionWatcher) Stop() {
	w.mu.Lock()
	scheduled := w.scheduled
	w.scheduled = false
	w.mu.Unlock()

	if !scheduled {
		return
	}
	w.scheduler.Remove(w.entry)
	if w.ownsSched {
		w.scheduler.Stop()
	}
}

func (w *CollectionWatcher) refresh(ctx context.Context, auto bool) CollectionsUpdate {
	refs, err := FetchCollections(ctx, w.lister)
	update := CollectionsUpdate{Collections: refs, Err: err, Auto: auto, At: time.Now()}
	if err != nil {
		LogDebug("Collection refresh failed: %v", err)
	}

	w.mu.Lock()
	w.last = update
	w.mu.Unlock()

	if w.deliver != nil {
		w.deliver(update)
	}
	return update
}
