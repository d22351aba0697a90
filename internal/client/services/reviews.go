package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/filmrate/internal/client/client"
	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/common"
	"github.com/dmitrijs2005/filmrate/internal/logging"
	"github.com/dmitrijs2005/filmrate/internal/metrics"
)

// LoadState is the lifecycle of one film's cached review set.
type LoadState int

const (
	Unloaded LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	return [...]string{"unloaded", "loading", "loaded", "failed"}[s]
}

// ReviewsUnavailableNotice is shown in place of reviews that failed to load.
const ReviewsUnavailableNotice = "Reviews could not be loaded right now."

const (
	fullStar  = "★"
	halfStar  = "½"
	emptyStar = "☆"
	starSlots = 5
)

type reviewEntry struct {
	state   LoadState
	reviews []models.Review
	err     error
	// issued and applied order responses; an older response never replaces
	// a newer one.
	issued  uint64
	applied uint64
}

// Reviews is the per-film review cache and aggregator.
type Reviews struct {
	client   client.Client
	session  SessionStore
	logger   logging.Logger
	onChange func(filmID int64)

	group singleflight.Group

	mu      sync.Mutex
	entries map[int64]*reviewEntry
}

func NewReviews(c client.Client, s SessionStore, logger logging.Logger) *Reviews {
	return &Reviews{
		client:  c,
		session: s,
		logger:  logging.OrDiscard(logger).With("service", "reviews"),
		entries: map[int64]*reviewEntry{},
	}
}

// OnChange registers fn to run after a review of a film was created,
// updated or deleted.
func (r *Reviews) OnChange(fn func(filmID int64)) {
	r.onChange = fn
}

func (r *Reviews) entry(filmID int64) *reviewEntry {
	e, ok := r.entries[filmID]
	if !ok {
		e = &reviewEntry{}
		r.entries[filmID] = e
	}
	return e
}

// FetchOnce returns the film's reviews, fetching them only if they were
// never loaded or the last load failed. A failed fetch yields an empty set
// and records a notice instead of returning an error.
func (r *Reviews) FetchOnce(ctx context.Context, filmID int64) []models.Review {
	return r.load(ctx, filmID, false)
}

// Refresh refetches the film's reviews even when they are cached.
func (r *Reviews) Refresh(ctx context.Context, filmID int64) []models.Review {
	return r.load(ctx, filmID, true)
}

func (r *Reviews) load(ctx context.Context, filmID int64, force bool) []models.Review {
	key := strconv.FormatInt(filmID, 10)

	r.mu.Lock()
	e := r.entry(filmID)
	if e.state == Loaded && !force {
		out := slices.Clone(e.reviews)
		r.mu.Unlock()
		return out
	}
	if force {
		// A refresh must not join a fetch issued before it.
		r.group.Forget(key)
	}
	r.mu.Unlock()

	v, _, _ := r.group.Do(key, func() (any, error) {
		return r.fetch(ctx, filmID, force), nil
	})
	return slices.Clone(v.([]models.Review))
}

func (r *Reviews) fetch(ctx context.Context, filmID int64, force bool) []models.Review {
	r.mu.Lock()
	e := r.entry(filmID)
	if e.state == Loaded && !force {
		// Another caller finished loading in the meantime.
		out := slices.Clone(e.reviews)
		r.mu.Unlock()
		return out
	}
	e.state = Loading
	e.issued++
	seq := e.issued
	r.mu.Unlock()

	reviews, err := r.client.FilmReviews(ctx, filmID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq < e.applied {
		metrics.ReviewFetches.WithLabelValues("stale").Inc()
		return slices.Clone(e.reviews)
	}
	e.applied = seq

	if err != nil {
		metrics.ReviewFetches.WithLabelValues("failed").Inc()
		r.logger.Warn(ctx, "review fetch failed", "film_id", filmID, "error", err)
		e.state = Failed
		e.err = err
		e.reviews = []models.Review{}
		return []models.Review{}
	}

	metrics.ReviewFetches.WithLabelValues("loaded").Inc()
	if reviews == nil {
		reviews = []models.Review{}
	}
	e.state = Loaded
	e.err = nil
	e.reviews = reviews
	return slices.Clone(reviews)
}

// State returns the load state of a film's reviews.
func (r *Reviews) State(filmID int64) LoadState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[filmID]; ok {
		return e.state
	}
	return Unloaded
}

// Reviews returns the cached set without fetching.
func (r *Reviews) Reviews(filmID int64) []models.Review {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[filmID]; ok {
		return slices.Clone(e.reviews)
	}
	return nil
}

func (r *Reviews) Count(filmID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[filmID]; ok {
		return len(e.reviews)
	}
	return 0
}

// Notice is the message to show for a film whose reviews failed to load,
// or "" otherwise.
func (r *Reviews) Notice(filmID int64) string {
	if r.State(filmID) == Failed {
		return ReviewsUnavailableNotice
	}
	return ""
}

// AverageRating formats the mean rating of the cached set.
func (r *Reviews) AverageRating(filmID int64) string {
	return AverageRating(r.Reviews(filmID))
}

// AverageRating is the mean rating to one decimal place with ties rounded
// up, "0.0" when empty.
func AverageRating(reviews []models.Review) string {
	if len(reviews) == 0 {
		return "0.0"
	}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
	}
	// tenths = round(sum*10/n) in integers; ratings are never negative.
	n := len(reviews)
	tenths := (20*sum + n) / (2 * n)
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}

// StarGlyphs renders rating as exactly five slots: floor(rating) full
// stars, a half star when the fraction is at least .5, then empty stars.
// Ratings outside [0, 5] are clamped.
func StarGlyphs(rating float64) string {
	if math.IsNaN(rating) {
		rating = 0
	}
	rating = math.Max(0, math.Min(starSlots, rating))

	full := int(math.Floor(rating))
	half := 0
	if full < starSlots && rating-float64(full) >= 0.5 {
		half = 1
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(fullStar, full))
	b.WriteString(strings.Repeat(halfStar, half))
	b.WriteString(strings.Repeat(emptyStar, starSlots-full-half))
	return b.String()
}

func validRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return common.ErrInvalidRating
	}
	return nil
}

// Submit creates a review as userID, then refreshes the film's set and
// notifies OnChange.
func (r *Reviews) Submit(ctx context.Context, filmID, userID int64, rating int, comment string) error {
	if _, err := actingAs(r.session, userID); err != nil {
		return err
	}
	if err := validRating(rating); err != nil {
		return err
	}

	in := models.ReviewInput{FilmID: filmID, UserID: userID, Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := r.client.CreateReview(ctx, in); err != nil {
		return fmt.Errorf("submit review: %w", err)
	}

	r.changed(ctx, filmID)
	return nil
}

// UserReviews lists every review written by userID.
func (r *Reviews) UserReviews(ctx context.Context, userID int64) ([]models.Review, error) {
	if _, err := actingAs(r.session, userID); err != nil {
		return nil, err
	}
	reviews, err := r.client.UserReviews(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// UpdateReview changes the rating and comment of one of the caller's own
// reviews.
func (r *Reviews) UpdateReview(ctx context.Context, review models.Review, rating int, comment string) error {
	if _, err := actingAs(r.session, review.UserID); err != nil {
		return err
	}
	if err := validRating(rating); err != nil {
		return err
	}

	in := models.ReviewUpdate{Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := r.client.UpdateReview(ctx, review.ID, in); err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	r.changed(ctx, review.FilmID)
	return nil
}

// DeleteReview removes one of the caller's own reviews.
func (r *Reviews) DeleteReview(ctx context.Context, review models.Review) error {
	if _, err := actingAs(r.session, review.UserID); err != nil {
		return err
	}
	if err := r.client.DeleteReview(ctx, review.ID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	r.changed(ctx, review.FilmID)
	return nil
}

func (r *Reviews) changed(ctx context.Context, filmID int64) {
	r.Refresh(ctx, filmID)
	if r.onChange != nil {
		r.onChange(filmID)
	}
}

// Reset drops every cached set.
func (r *Reviews) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = map[int64]*reviewEntry{}
}
