package recordlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hearth-collective/hearth/app/models"
)

// ErrNotFound is returned by Get when no revision exists for a user id.
var ErrNotFound = errors.New("recordlog: record not found")

// StorageError wraps a persistence failure of the log itself.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("recordlog: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ApplyFunc consumes the change-feed of the log: the freshly appended record
// and the value it replaced (nil on first creation).
type ApplyFunc func(ctx context.Context, curr, prev *models.UserRecord) error

// Store is the append-only log of user record revisions. The log is the only
// canonical owner of user state; appliers maintain derived views (index,
// counters) which must stay rebuildable from the log.
//
// Consistency is by sequencing, not by cross-store transaction: the append
// commits first, then appliers run. A crash in between leaves derived stores
// stale until the rebuild command replays the log. Concurrent writes to the
// same user are last-write-wins; there is no revision compare-and-swap.
type Store struct {
	db       *gorm.DB
	appliers []ApplyFunc
}

func NewStore(db *gorm.DB, appliers ...ApplyFunc) *Store {
	return &Store{db: db, appliers: appliers}
}

// Subscribe registers an additional change-feed consumer. Must be called
// before the store handles traffic.
func (s *Store) Subscribe(fn ApplyFunc) {
	s.appliers = append(s.appliers, fn)
}

// Get returns the latest record value for a user id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*models.UserRecord, error) {
	var rev models.UserRevision
	err := s.db.WithContext(ctx).
		Where("user_id = ?", id).
		Order("seq DESC").
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "get", Err: err}
	}
	return decode(&rev)
}

// Put appends a new immutable revision for the record and feeds the
// (current, previous) pair to every applier. The append is the durability
// commit point: applier errors are returned to the caller, but the appended
// revision stays and a later rebuild reconciles the derived stores.
func (s *Store) Put(ctx context.Context, rec *models.UserRecord) error {
	if rec == nil || rec.ID == "" {
		return &StorageError{Op: "put", Err: errors.New("record has no id")}
	}

	var prev *models.UserRecord
	var prevSeq uint
	var latest models.UserRevision
	err := s.db.WithContext(ctx).
		Where("user_id = ?", rec.ID).
		Order("seq DESC").
		First(&latest).Error
	switch {
	case err == nil:
		prev, err = decode(&latest)
		if err != nil {
			return err
		}
		prevSeq = latest.Seq
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first revision for this user
	default:
		return &StorageError{Op: "put", Err: err}
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return &StorageError{Op: "put", Err: err}
	}

	rev := models.UserRevision{
		UserID:  rec.ID,
		Seq:     prevSeq + 1,
		PrevSeq: prevSeq,
		Payload: string(payload),
	}
	if err := s.db.WithContext(ctx).Create(&rev).Error; err != nil {
		return &StorageError{Op: "put", Err: err}
	}

	for _, fn := range s.appliers {
		if err := fn(ctx, rec, prev); err != nil {
			return err
		}
	}
	return nil
}

// Replay walks the whole log in append order and hands each revision to fn
// together with the value it replaced, exactly as the appliers saw it live.
// Used to rebuild the derived index and counters.
func (s *Store) Replay(ctx context.Context, fn ApplyFunc) error {
	const batchSize = 500

	previous := make(map[string]*models.UserRecord)
	var lastID uint

	for {
		var revs []models.UserRevision
		err := s.db.WithContext(ctx).
			Where("id > ?", lastID).
			Order("id ASC").
			Limit(batchSize).
			Find(&revs).Error
		if err != nil {
			return &StorageError{Op: "replay", Err: err}
		}
		if len(revs) == 0 {
			return nil
		}

		for i := range revs {
			rev := &revs[i]
			curr, err := decode(rev)
			if err != nil {
				return err
			}
			if err := fn(ctx, curr, previous[rev.UserID]); err != nil {
				return err
			}
			previous[rev.UserID] = curr
			lastID = rev.ID
		}
	}
}

func decode(rev *models.UserRevision) (*models.UserRecord, error) {
	var rec models.UserRecord
	if err := json.Unmarshal([]byte(rev.Payload), &rec); err != nil {
		return nil, &StorageError{Op: "decode", Err: err}
	}
	return &rec, nil
}
