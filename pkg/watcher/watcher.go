// Package watcher runs the listing check: fetch the contract list, diff it
// against the known baseline, notify every subscriber of each new contract
// and advance the baseline.
//
// Check and Register are serialized by one mutex, so a check never overlaps
// another check or a registration. A second lock guards the shared state for
// readers such as Status and is never held across network calls.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/StudioSol/set"
	"github.com/google/uuid"
	"github.com/raykavin/futwatch/pkg/core"
	"github.com/raykavin/futwatch/pkg/logger"
)

// DefaultInterval is the time between two checks
const DefaultInterval = time.Minute

// Result describes what one check did
type Result struct {
	Fetched   int      // symbols returned by the source
	New       []string // symbols announced, sorted
	Delivered int      // successful deliveries
	Failed    int      // failed deliveries
	Skipped   bool     // fetch returned nothing, state left untouched
	Baseline  bool     // fetch adopted silently as the first baseline
}

// Watcher holds the known snapshot and the subscriber set
type Watcher struct {
	source   core.Source
	sender   core.Sender
	store    core.Store
	log      logger.Logger
	interval time.Duration
	now      func() time.Time

	run sync.Mutex

	mu          sync.RWMutex
	known       core.Snapshot
	baseline    bool
	subscribers *set.LinkedHashSetString
	lastCheck   time.Time
	lastListing string
}

// Option is a functional option for configuring a Watcher
type Option func(*Watcher)

// WithInterval overrides DefaultInterval
func WithInterval(interval time.Duration) Option {
	return func(w *Watcher) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithClock replaces time.Now, used by tests
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		w.now = now
	}
}

// New creates a watcher with an empty baseline and no subscribers. Call
// Restore to load the state kept by store.
func New(source core.Source, sender core.Sender, store core.Store, log logger.Logger, options ...Option) *Watcher {
	w := &Watcher{
		source:      source,
		sender:      sender,
		store:       store,
		log:         log.WithField("exchange", source.Name()),
		interval:    DefaultInterval,
		now:         time.Now,
		known:       core.NewSnapshot(),
		subscribers: set.NewLinkedHashSetString(),
	}

	for _, option := range options {
		option(w)
	}

	return w
}

// Restore loads subscribers and known symbols from the store. A non empty
// stored baseline is adopted, so listings published while the process was
// down are announced on the next check.
func (w *Watcher) Restore(ctx context.Context) error {
	subscribers, err := w.store.Subscribers(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore subscribers: %w", err)
	}

	known, err := w.store.KnownSymbols(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore known symbols: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.subscribers.Add(subscribers...)
	if len(known) > 0 {
		w.known = core.NewSnapshot(known...)
		w.baseline = true
	}

	w.log.WithFields(map[string]any{
		"subscribers": len(subscribers),
		"known":       len(known),
	}).Info("state restored")

	return nil
}

// Run checks immediately, then waits the interval after each check until ctx
// is cancelled. Errors never stop the loop.
func (w *Watcher) Run(ctx context.Context) {
	w.log.WithField("interval", w.interval.String()).Info("watching futures listings")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case <-timer.C:
			w.Check(ctx)
			timer.Reset(w.interval)
		}
	}
}

// Check runs a single iteration of the diff-and-notify loop
func (w *Watcher) Check(ctx context.Context) Result {
	w.run.Lock()
	defer w.run.Unlock()

	log := w.log.WithField("cycle", uuid.NewString())

	fetched := w.fetch(ctx, log)
	if fetched.IsEmpty() {
		log.Warn("no contracts fetched, skipping check")
		return Result{Skipped: true}
	}

	w.mu.RLock()
	known, hasBaseline := w.known, w.baseline
	subscribers := w.subscriberList()
	w.mu.RUnlock()

	result := Result{Fetched: fetched.Len()}

	if !hasBaseline {
		result.Baseline = true
		log.Infof("adopted %d contracts as baseline", fetched.Len())
	} else {
		result.New = fetched.Difference(known)
	}

	for _, symbol := range result.New {
		message := ListingMessage(w.source.Name(), symbol)
		log.WithField("symbol", symbol).Info("new futures listing")

		delivered, failed := w.broadcast(ctx, log, subscribers, message)
		result.Delivered += delivered
		result.Failed += failed
	}

	w.mu.Lock()
	w.known = w.known.Union(fetched)
	w.baseline = true
	w.lastCheck = w.now()
	if len(result.New) > 0 {
		w.lastListing = result.New[len(result.New)-1]
	}
	symbols := w.known.Symbols()
	w.mu.Unlock()

	w.persistKnown(ctx, log, symbols)

	log.WithFields(map[string]any{
		"fetched":   result.Fetched,
		"new":       len(result.New),
		"delivered": result.Delivered,
		"failed":    result.Failed,
	}).Debug("check completed")

	return result
}

// Register adds id to the subscribers and acknowledges it. On first contact
// the baseline is reset to the live snapshot so contracts already listed are
// not announced; symbols known before but missing from that snapshot are
// forgotten. An empty live snapshot leaves the baseline untouched. It reports
// whether id was not registered before.
func (w *Watcher) Register(ctx context.Context, id string) bool {
	w.run.Lock()
	defer w.run.Unlock()

	log := w.log.WithField("subscriber", id)

	w.mu.Lock()
	isNew := !w.subscribers.InArray(id)
	if isNew {
		w.subscribers.Add(id)
	}
	w.mu.Unlock()

	if isNew {
		if _, err := w.store.AddSubscriber(ctx, id); err != nil {
			log.WithError(err).Error("failed to persist subscriber")
		}
	}

	if err := w.sender.Send(ctx, id, AcknowledgementMessage(w.source.Name())); err != nil {
		log.WithError(err).Error("failed to send acknowledgement")
	}

	if !isNew {
		log.Debug("subscriber already registered")
		return false
	}

	log.Info("subscriber registered")

	live := w.fetch(ctx, log)
	if live.IsEmpty() {
		log.Warn("no contracts fetched, keeping current baseline")
		return true
	}

	w.mu.Lock()
	w.known = live
	w.baseline = true
	symbols := w.known.Symbols()
	w.mu.Unlock()

	w.persistKnown(ctx, log, symbols)
	log.Infof("baseline reset to %d contracts", len(symbols))

	return true
}

// Unregister removes id from the subscribers and confirms it. It reports
// whether id was registered.
func (w *Watcher) Unregister(ctx context.Context, id string) bool {
	log := w.log.WithField("subscriber", id)

	w.mu.Lock()
	registered := w.subscribers.InArray(id)
	if registered {
		w.subscribers.Remove(id)
	}
	w.mu.Unlock()

	if !registered {
		return false
	}

	if _, err := w.store.RemoveSubscriber(ctx, id); err != nil {
		log.WithError(err).Error("failed to remove persisted subscriber")
	}

	if err := w.sender.Send(ctx, id, UnsubscribedMessage(w.source.Name())); err != nil {
		log.WithError(err).Error("failed to send unsubscribe confirmation")
	}

	log.Info("subscriber removed")
	return true
}

// Status returns a summary of the current state
func (w *Watcher) Status() core.Status {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return core.Status{
		Exchange:    w.source.Name(),
		Subscribers: w.subscribers.Length(),
		Known:       w.known.Len(),
		Baseline:    w.baseline,
		LastCheck:   w.lastCheck,
		LastListing: w.lastListing,
	}
}

// Known returns a copy of the current baseline
func (w *Watcher) Known() core.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.known.Clone()
}

// Subscribers returns the registered recipients in registration order
func (w *Watcher) Subscribers() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.subscriberList()
}

// subscriberList copies the subscriber set, the caller holds mu
func (w *Watcher) subscriberList() []string {
	subscribers := make([]string, 0, w.subscribers.Length())
	for id := range w.subscribers.Iter() {
		subscribers = append(subscribers, id)
	}
	return subscribers
}

// fetch never fails: any source error is logged and reported as an empty
// snapshot, which callers treat as "no data this cycle"
func (w *Watcher) fetch(ctx context.Context, log logger.Logger) core.Snapshot {
	symbols, err := w.source.Contracts(ctx)
	if err != nil {
		log.WithError(err).Error("failed to fetch futures contracts")
		return core.NewSnapshot()
	}

	log.Debugf("found %d contracts", len(symbols))
	return core.NewSnapshot(symbols...)
}

// broadcast delivers text to every subscriber in order, a failure only skips
// that subscriber
func (w *Watcher) broadcast(ctx context.Context, log logger.Logger, subscribers []string, text string) (delivered, failed int) {
	for _, id := range subscribers {
		if err := w.sender.Send(ctx, id, text); err != nil {
			failed++
			log.WithError(err).WithField("subscriber", id).Error("failed to deliver notification")
			continue
		}
		delivered++
	}
	return delivered, failed
}

func (w *Watcher) persistKnown(ctx context.Context, log logger.Logger, symbols []string) {
	if err := w.store.ReplaceKnownSymbols(ctx, symbols); err != nil {
		log.WithError(err).Error("failed to persist known symbols")
	}
}
