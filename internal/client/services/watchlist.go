package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/dmitrijs2005/filmrate/internal/client/client"
	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/common"
	"github.com/dmitrijs2005/filmrate/internal/logging"
	"github.com/dmitrijs2005/filmrate/internal/metrics"
)

// Confirmation is the capability ClearStatus requires. Only Confirm creates
// a valid one; the zero value is never confirmed.
type Confirmation struct {
	filmID    int64
	confirmed bool
}

// Confirm asks the user, through ask, to approve removing filmID.
func Confirm(filmID int64, ask func() bool) Confirmation {
	return Confirmation{filmID: filmID, confirmed: ask != nil && ask()}
}

type pairKey struct {
	userID int64
	filmID int64
}

// pair is the locally tracked state of one (user, film) pair.
type pair struct {
	// op serializes mutations of the pair.
	op sync.Mutex

	status *models.Status
	itemID int64
	busy   bool
	// seq is bumped whenever a request on the pair is issued or a mutation
	// completes. A read whose seq is no longer current is discarded.
	seq uint64
}

type userIndex struct {
	statuses map[int64]models.Status
	stale    bool
	// gen counts mutations; an index fetched across one is not cached.
	gen uint64
}

// Watchlist reconciles the signed-in user's (film → status) mapping with
// the store.
//
// The store's create call is not idempotent, so SetStatus updates the row in
// place whenever its id is known and creates one only otherwise. A conflict
// on either path triggers a resync: the user's list is fetched and the first
// row for the film is adopted.
type Watchlist struct {
	client  client.Client
	session SessionStore
	logger  logging.Logger

	mu      sync.Mutex
	pairs   map[pairKey]*pair
	indexes map[int64]*userIndex
}

func NewWatchlist(c client.Client, s SessionStore, logger logging.Logger) *Watchlist {
	return &Watchlist{
		client:  c,
		session: s,
		logger:  logging.OrDiscard(logger).With("service", "watchlist"),
		pairs:   map[pairKey]*pair{},
		indexes: map[int64]*userIndex{},
	}
}

func (w *Watchlist) pair(k pairKey) *pair {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pairs[k]
	if !ok {
		p = &pair{}
		w.pairs[k] = p
	}
	return p
}

func (w *Watchlist) index(userID int64) *userIndex {
	idx, ok := w.indexes[userID]
	if !ok {
		idx = &userIndex{stale: true}
		w.indexes[userID] = idx
	}
	return idx
}

// begin marks a mutation in flight. The caller holds p.op.
func (w *Watchlist) begin(k pairKey, p *pair) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p.busy = true
	p.seq++
	idx := w.index(k.userID)
	idx.stale = true
	idx.gen++
}

func (w *Watchlist) end(k pairKey, p *pair) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p.busy = false
	p.seq++
	w.index(k.userID).stale = true
}

// adopt records the outcome of a mutation. A nil status clears the pair.
func (w *Watchlist) adopt(p *pair, status *models.Status, itemID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if status == nil {
		p.status, p.itemID = nil, 0
		return
	}
	s := *status
	p.status, p.itemID = &s, itemID
}

// Busy reports whether a mutation of the pair is in flight.
func (w *Watchlist) Busy(userID, filmID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pairs[pairKey{userID, filmID}]
	return ok && p.busy
}

// Tracked returns the locally known item id of the pair.
func (w *Watchlist) Tracked(userID, filmID int64) (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pairs[pairKey{userID, filmID}]
	if !ok || p.itemID == 0 {
		return 0, false
	}
	return p.itemID, true
}

// Current returns the locally known status without a remote call.
func (w *Watchlist) Current(userID, filmID int64) *models.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pairs[pairKey{userID, filmID}]
	if !ok || p.status == nil {
		return nil
	}
	s := *p.status
	return &s
}

// Status asks the store for the pair's status. When a newer request on the
// pair was issued before the reply arrived, the reply is discarded and the
// local status is returned instead.
func (w *Watchlist) Status(ctx context.Context, userID, filmID int64) (*models.Status, error) {
	if _, err := actingAs(w.session, userID); err != nil {
		return nil, err
	}

	k := pairKey{userID, filmID}
	p := w.pair(k)

	w.mu.Lock()
	p.seq++
	seq := p.seq
	w.mu.Unlock()

	status, err := w.client.WatchlistStatus(ctx, userID, filmID)
	if err != nil {
		return nil, fmt.Errorf("watchlist status: %w", err)
	}

	w.mu.Lock()
	if seq != p.seq {
		w.mu.Unlock()
		metrics.StaleResponses.Inc()
		w.logger.Debug(ctx, "discarding stale status reply", "user_id", userID, "film_id", filmID)
		return w.Current(userID, filmID), nil
	}
	needID := status != nil && (p.itemID == 0 || p.status == nil || *p.status != *status)
	if status == nil {
		p.status, p.itemID = nil, 0
	}
	w.mu.Unlock()

	if !needID {
		return w.Current(userID, filmID), nil
	}

	// The pair endpoint carries no row id; find it in the user's list.
	items, err := w.client.UserWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("watchlist status: %w", err)
	}
	item, ok := findItem(items, filmID, status)

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != p.seq {
		metrics.StaleResponses.Inc()
	} else if ok {
		s := item.Status
		p.status, p.itemID = &s, item.ID
	} else {
		s := *status
		p.status, p.itemID = &s, 0
	}
	if p.status == nil {
		return nil, nil
	}
	s := *p.status
	return &s, nil
}

// findItem returns the first row for filmID, preferring one with status
// when status is non-nil. Duplicate rows make the choice ambiguous; the
// first match is taken.
func findItem(items []models.WatchlistItem, filmID int64, status *models.Status) (models.WatchlistItem, bool) {
	if status != nil {
		for _, it := range items {
			if it.FilmID == filmID && it.Status == *status {
				return it, true
			}
		}
	}
	for _, it := range items {
		if it.FilmID == filmID {
			return it, true
		}
	}
	return models.WatchlistItem{}, false
}

// SetStatus puts filmID into the status list for userID and returns the
// status the pair ends up in. After a conflict that is the status of the
// row already in the store, which may differ from status.
func (w *Watchlist) SetStatus(ctx context.Context, userID, filmID int64, status models.Status) (models.Status, error) {
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidStatus, status)
	}
	if _, err := actingAs(w.session, userID); err != nil {
		return "", err
	}

	k := pairKey{userID, filmID}
	p := w.pair(k)
	p.op.Lock()
	defer p.op.Unlock()

	w.begin(k, p)
	defer w.end(k, p)

	itemID, _ := w.Tracked(userID, filmID)

	var err error
	if itemID != 0 {
		err = w.client.UpdateWatchlistItem(ctx, itemID, models.WatchlistUpdate{Status: status})
		if err == nil {
			w.adopt(p, &status, itemID)
			return status, nil
		}
	} else {
		var item *models.WatchlistItem
		item, err = w.client.AddToWatchlist(ctx, models.WatchlistItem{UserID: userID, FilmID: filmID, Status: status})
		if err == nil {
			w.adopt(p, &status, item.ID)
			return status, nil
		}
	}

	if errors.Is(err, client.ErrConflict) || (itemID != 0 && errors.Is(err, client.ErrNotFound)) {
		return w.resync(ctx, p, userID, filmID, err)
	}
	return "", fmt.Errorf("set status: %w", err)
}

// resync adopts the store's row for the pair after cause made the local
// view doubtful.
func (w *Watchlist) resync(ctx context.Context, p *pair, userID, filmID int64, cause error) (models.Status, error) {
	metrics.WatchlistResyncs.Inc()
	w.logger.Info(ctx, "resyncing watchlist", "user_id", userID, "film_id", filmID, "cause", cause)

	items, err := w.client.UserWatchlist(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resync watchlist: %w", err)
	}

	item, ok := findItem(items, filmID, nil)
	if !ok {
		w.adopt(p, nil, 0)
		return "", fmt.Errorf("resync watchlist: film %d: %w", filmID, client.ErrNotFound)
	}

	w.adopt(p, &item.Status, item.ID)
	return item.Status, nil
}

// ClearStatus removes filmID from the user's lists. The pair must be tracked
// locally and the removal confirmed.
func (w *Watchlist) ClearStatus(ctx context.Context, userID, filmID int64, c Confirmation) error {
	if _, err := actingAs(w.session, userID); err != nil {
		return err
	}

	k := pairKey{userID, filmID}
	p := w.pair(k)
	p.op.Lock()
	defer p.op.Unlock()

	itemID, ok := w.Tracked(userID, filmID)
	if !ok {
		return common.ErrItemNotTracked
	}
	if !c.confirmed || c.filmID != filmID {
		return common.ErrNotConfirmed
	}

	w.begin(k, p)
	defer w.end(k, p)

	err := w.client.RemoveFromWatchlist(ctx, itemID)
	if errors.Is(err, client.ErrNotFound) {
		w.logger.Info(ctx, "watchlist row already gone", "item_id", itemID)
		err = nil
	}
	if err != nil {
		return fmt.Errorf("clear status: %w", err)
	}

	w.adopt(p, nil, 0)
	return nil
}

// Index returns the user's (film → status) map. It is served from cache
// unless a mutation happened since it was fetched. Pairs not being mutated
// adopt the fetched rows.
func (w *Watchlist) Index(ctx context.Context, userID int64) (map[int64]models.Status, error) {
	if _, err := actingAs(w.session, userID); err != nil {
		return nil, err
	}

	w.mu.Lock()
	idx := w.index(userID)
	if !idx.stale {
		out := maps.Clone(idx.statuses)
		w.mu.Unlock()
		return out, nil
	}
	gen := idx.gen
	w.mu.Unlock()

	items, err := w.client.UserWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("watchlist index: %w", err)
	}

	statuses := make(map[int64]models.Status, len(items))
	rows := make(map[int64]models.WatchlistItem, len(items))
	for _, it := range items {
		if _, seen := statuses[it.FilmID]; !seen {
			statuses[it.FilmID] = it.Status
			rows[it.FilmID] = it
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if idx.gen != gen {
		return statuses, nil
	}
	idx.statuses = statuses
	idx.stale = false

	for k, p := range w.pairs {
		if k.userID != userID || p.busy {
			continue
		}
		if it, ok := rows[k.filmID]; ok {
			s := it.Status
			p.status, p.itemID = &s, it.ID
		} else {
			p.status, p.itemID = nil, 0
		}
		p.seq++
	}
	for filmID, it := range rows {
		k := pairKey{userID, filmID}
		if _, ok := w.pairs[k]; !ok {
			s := it.Status
			w.pairs[k] = &pair{status: &s, itemID: it.ID}
		}
	}

	return maps.Clone(statuses), nil
}

// Invalidate marks the user's cached index stale.
func (w *Watchlist) Invalidate(userID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.index(userID).stale = true
}

// Reset drops all tracked state, e.g. on logout.
func (w *Watchlist) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pairs = map[pairKey]*pair{}
	w.indexes = map[int64]*userIndex{}
}

// StatusLabel is the display name of a list status.
func StatusLabel(s models.Status) string {
	switch s {
	case models.StatusToWatch:
		return "To Watch"
	case models.StatusWatched:
		return "Watched"
	case models.StatusFavorite:
		return "Favorites"
	}
	return string(s)
}
