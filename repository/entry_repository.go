package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"platelog/database"
	"platelog/logger"
	"platelog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryRepository owns FoodEntry persistence. Besides the one-shot queries it
// supports snapshot watchers: long-lived subscriptions that receive the full
// ordered result of their query once on attach and again after every mutating
// operation on the store.
type EntryRepository struct {
	db *gorm.DB

	subMux   sync.RWMutex
	watchers map[*watcher]struct{}
}

type watcher struct {
	// notify is size 1 so pending refreshes coalesce instead of queueing.
	notify chan struct{}
}

var (
	repo     *EntryRepository
	repoOnce sync.Once
)

// Get returns the singleton repository bound to the application database.
// database.InitDB must have run first.
func Get() *EntryRepository {
	repoOnce.Do(func() {
		repo = New(database.DB)
	})
	return repo
}

// New creates a repository over the given database handle.
func New(db *gorm.DB) *EntryRepository {
	return &EntryRepository{
		db:       db,
		watchers: make(map[*watcher]struct{}),
	}
}

// Insert stores a new entry and returns its assigned id. A zero timestamp is
// replaced with the current time in epoch milliseconds. An explicit id that
// collides with an existing row replaces it.
func (r *EntryRepository) Insert(entry *models.FoodEntry) (uint, error) {
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixMilli()
	}
	err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(entry).Error
	if err != nil {
		return 0, fmt.Errorf("failed to insert food entry: %w", err)
	}
	r.notifyAll()
	return entry.ID, nil
}

// All returns every entry ordered by timestamp descending.
func (r *EntryRepository) All() ([]models.FoodEntry, error) {
	var entries []models.FoodEntry
	err := r.db.Order("timestamp DESC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query food entries: %w", err)
	}
	return entries, nil
}

// ByID returns the entry with the given id, or nil when absent.
func (r *EntryRepository) ByID(id uint) (*models.FoodEntry, error) {
	var entry models.FoodEntry
	err := r.db.First(&entry, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query food entry %d: %w", id, err)
	}
	return &entry, nil
}

// ByRange returns entries with timestamp in [start, end], newest first.
func (r *EntryRepository) ByRange(start, end int64) ([]models.FoodEntry, error) {
	var entries []models.FoodEntry
	err := r.db.
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query food entries by range: %w", err)
	}
	return entries, nil
}

// ByDay returns entries whose timestamp falls on the same epoch calendar day
// as the given timestamp, newest first.
func (r *EntryRepository) ByDay(ts int64) ([]models.FoodEntry, error) {
	var entries []models.FoodEntry
	err := r.db.
		Where("date(timestamp/1000, 'unixepoch') = date(?/1000, 'unixepoch')", ts).
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query food entries by day: %w", err)
	}
	return entries, nil
}

// Delete removes the entry with the given id. Deleting an absent id is a
// no-op.
func (r *EntryRepository) Delete(id uint) error {
	if err := r.db.Delete(&models.FoodEntry{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete food entry %d: %w", id, err)
	}
	r.notifyAll()
	return nil
}

// DeleteAll removes every entry.
func (r *EntryRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&models.FoodEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete food entries: %w", err)
	}
	r.notifyAll()
	return nil
}

// WatchAll streams snapshots of All until ctx is cancelled.
func (r *EntryRepository) WatchAll(ctx context.Context) <-chan []models.FoodEntry {
	return r.watch(ctx, r.All)
}

// WatchRange streams snapshots of ByRange until ctx is cancelled.
func (r *EntryRepository) WatchRange(ctx context.Context, start, end int64) <-chan []models.FoodEntry {
	return r.watch(ctx, func() ([]models.FoodEntry, error) {
		return r.ByRange(start, end)
	})
}

// WatchDay streams snapshots of ByDay until ctx is cancelled.
func (r *EntryRepository) WatchDay(ctx context.Context, ts int64) <-chan []models.FoodEntry {
	return r.watch(ctx, func() ([]models.FoodEntry, error) {
		return r.ByDay(ts)
	})
}

func (r *EntryRepository) watch(ctx context.Context, query func() ([]models.FoodEntry, error)) <-chan []models.FoodEntry {
	w := &watcher{notify: make(chan struct{}, 1)}

	r.subMux.Lock()
	r.watchers[w] = struct{}{}
	r.subMux.Unlock()

	out := make(chan []models.FoodEntry, 1)

	go func() {
		defer func() {
			r.subMux.Lock()
			delete(r.watchers, w)
			r.subMux.Unlock()
			close(out)
		}()

		// Initial snapshot, then one per mutation.
		w.notify <- struct{}{}
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.notify:
				entries, err := query()
				if err != nil {
					logger.Error("Watcher query failed", "error", err)
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- entries:
				}
			}
		}
	}()

	return out
}

func (r *EntryRepository) notifyAll() {
	r.subMux.RLock()
	defer r.subMux.RUnlock()
	for w := range r.watchers {
		select {
		case w.notify <- struct{}{}:
		default:
			// A refresh is already pending; it will pick up this change.
		}
	}
}
