package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/common"
	"github.com/dmitrijs2005/filmrate/internal/logging"
	"github.com/dmitrijs2005/filmrate/internal/metrics"
)

const maxResponseBytes = 4 << 20

// IdentityFunc returns the signed-in user, or nil for anonymous calls. It is
// consulted on every request, so a login or logout takes effect immediately.
type IdentityFunc func() *models.User

// RESTClient implements Client over the store's JSON HTTP API.
type RESTClient struct {
	baseURL       *url.URL
	httpClient    *http.Client
	identity      IdentityFunc
	logger        logging.Logger
	slowThreshold time.Duration
	breakerConf   BreakerSettings
	breaker       *gobreaker.CircuitBreaker[response]
}

type Option func(*RESTClient)

func WithHTTPClient(c *http.Client) Option {
	return func(r *RESTClient) { r.httpClient = c }
}

func WithIdentity(f IdentityFunc) Option {
	return func(r *RESTClient) { r.identity = f }
}

func WithLogger(l logging.Logger) Option {
	return func(r *RESTClient) { r.logger = l }
}

// WithSlowThreshold logs calls taking longer than d at Warn. It does not
// cancel them.
func WithSlowThreshold(d time.Duration) Option {
	return func(r *RESTClient) { r.slowThreshold = d }
}

// WithBreaker replaces DefaultBreakerSettings.
func WithBreaker(s BreakerSettings) Option {
	return func(r *RESTClient) { r.breakerConf = s }
}

// NewRESTClient returns a client for the store at baseURL.
func NewRESTClient(baseURL string, opts ...Option) (*RESTClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q: missing host", baseURL)
	}

	c := &RESTClient{
		baseURL:     u,
		httpClient:  &http.Client{},
		identity:    func() *models.User { return nil },
		breakerConf: DefaultBreakerSettings,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDiscard(c.logger).With("component", "rest_client")
	c.breaker = newBreaker(c.breakerConf, c.logger)
	return c, nil
}

func (c *RESTClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends one request. body and out may be nil. op names the logical
// operation for logs and metrics.
func (c *RESTClient) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := c.logger.With("op", op, "method", method, "path", path, "request_id", requestID)

	defer func() {
		elapsed := time.Since(start)
		metrics.ObserveStoreRequest(op, outcome(err), elapsed)
		if c.slowThreshold > 0 && elapsed > c.slowThreshold {
			log.Warn(ctx, "slow store call", "elapsed", elapsed)
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if u := c.identity(); u != nil {
		req.Header.Set(common.UserIDHeaderName, strconv.FormatInt(u.ID, 10))
		req.Header.Set(common.UserRoleHeaderName, string(u.Role))
	}

	res, err := c.breaker.Execute(func() (response, error) {
		return c.roundTrip(ctx, log, req)
	})
	if rejected(err) {
		log.Debug(ctx, "store call rejected by circuit breaker", "error", err)
		return &APIError{Message: errBreakerOpen.Error(), Kind: ErrUnavailable}
	}
	if err != nil {
		return err
	}

	data := res.data
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{
			Status:  res.status,
			Message: fmt.Sprintf("decode %s response: %v", op, err),
			Kind:    ErrUnavailable,
		}
	}
	return nil
}

// roundTrip performs req and reads the body. A status of 400 or above is
// returned as an *APIError.
func (c *RESTClient) roundTrip(ctx context.Context, log logging.Logger, req *http.Request) (response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug(ctx, "store call failed", "error", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return response{}, ctxErr
		}
		return response{}, &APIError{Message: err.Error(), Kind: ErrUnavailable}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{}, &APIError{Status: resp.StatusCode, Message: err.Error(), Kind: ErrUnavailable}
	}

	log.Debug(ctx, "store call", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return response{}, newAPIError(resp.StatusCode, data)
	}
	return response{status: resp.StatusCode, data: data}, nil
}

func newAPIError(status int, data []byte) *APIError {
	var eb errorBody
	message := ""
	if json.Unmarshal(data, &eb) == nil {
		message = eb.Message
		if message == "" {
			message = eb.Error
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{Status: status, Message: message, Kind: kindForStatus(status, message)}
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

// Films

func (c *RESTClient) ListFilms(ctx context.Context) ([]models.Film, error) {
	var films []models.Film
	if err := c.do(ctx, "films.list", http.MethodGet, "/films", nil, &films); err != nil {
		return nil, err
	}
	if films == nil {
		films = []models.Film{}
	}
	return films, nil
}

func (c *RESTClient) GetFilm(ctx context.Context, filmID int64) (*models.Film, error) {
	var film models.Film
	if err := c.do(ctx, "films.get", http.MethodGet, "/films/"+id(filmID), nil, &film); err != nil {
		return nil, err
	}
	return &film, nil
}

func (c *RESTClient) CreateFilm(ctx context.Context, in models.FilmInput) error {
	return c.do(ctx, "films.create", http.MethodPost, "/films", in, nil)
}

func (c *RESTClient) UpdateFilm(ctx context.Context, filmID int64, in models.FilmInput) error {
	return c.do(ctx, "films.update", http.MethodPut, "/films/"+id(filmID), in, nil)
}

func (c *RESTClient) DeleteFilm(ctx context.Context, filmID int64) error {
	return c.do(ctx, "films.delete", http.MethodDelete, "/films/"+id(filmID), nil, nil)
}

// Users

type userEnvelope struct {
	User *models.User `json:"user"`
}

func (c *RESTClient) authenticate(ctx context.Context, op, path string, body any) (*models.User, error) {
	var env userEnvelope
	if err := c.do(ctx, op, http.MethodPost, path, body, &env); err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, &APIError{Message: op + ": response carries no user", Kind: ErrUnavailable}
	}
	return env.User, nil
}

func (c *RESTClient) Register(ctx context.Context, in models.Registration) (*models.User, error) {
	return c.authenticate(ctx, "users.register", "/users/register", in)
}

func (c *RESTClient) Login(ctx context.Context, in models.Credentials) (*models.User, error) {
	return c.authenticate(ctx, "users.login", "/users/login", in)
}

func (c *RESTClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, "users.list", http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *RESTClient) UpdateUserRole(ctx context.Context, userID int64, role models.Role) error {
	body := struct {
		Role models.Role `json:"role"`
	}{role}
	return c.do(ctx, "users.role", http.MethodPut, "/users/"+id(userID)+"/role", body, nil)
}

func (c *RESTClient) DeleteUser(ctx context.Context, userID int64) error {
	return c.do(ctx, "users.delete", http.MethodDelete, "/users/"+id(userID), nil, nil)
}

// Reviews

func (c *RESTClient) CreateReview(ctx context.Context, in models.ReviewInput) error {
	return c.do(ctx, "reviews.create", http.MethodPost, "/reviews", in, nil)
}

func (c *RESTClient) reviews(ctx context.Context, op, path string) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.do(ctx, op, http.MethodGet, path, nil, &reviews); err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

func (c *RESTClient) FilmReviews(ctx context.Context, filmID int64) ([]models.Review, error) {
	return c.reviews(ctx, "reviews.film", "/reviews/film/"+id(filmID))
}

func (c *RESTClient) UserReviews(ctx context.Context, userID int64) ([]models.Review, error) {
	return c.reviews(ctx, "reviews.user", "/reviews/user/"+id(userID))
}

func (c *RESTClient) UpdateReview(ctx context.Context, reviewID int64, in models.ReviewUpdate) error {
	return c.do(ctx, "reviews.update", http.MethodPut, "/reviews/"+id(reviewID), in, nil)
}

func (c *RESTClient) DeleteReview(ctx context.Context, reviewID int64) error {
	return c.do(ctx, "reviews.delete", http.MethodDelete, "/reviews/"+id(reviewID), nil, nil)
}

// Watchlist

type itemEnvelope struct {
	Item *models.WatchlistItem `json:"item"`
}

type statusEnvelope struct {
	Status *models.Status `json:"status"`
}

func (c *RESTClient) AddToWatchlist(ctx context.Context, item models.WatchlistItem) (*models.WatchlistItem, error) {
	body := struct {
		UserID int64         `json:"userId"`
		FilmID int64         `json:"filmId"`
		Status models.Status `json:"status"`
	}{item.UserID, item.FilmID, item.Status}

	var env itemEnvelope
	if err := c.do(ctx, "watchlist.create", http.MethodPost, "/watchlist", body, &env); err != nil {
		return nil, err
	}
	if env.Item == nil || env.Item.ID == 0 {
		return nil, &APIError{Message: "watchlist.create: response carries no item id", Kind: ErrUnavailable}
	}

	created := item
	created.ID = env.Item.ID
	return &created, nil
}

// WatchlistStatus treats a 404 as "no status" since the store answers a
// missing pair either way.
func (c *RESTClient) WatchlistStatus(ctx context.Context, userID, filmID int64) (*models.Status, error) {
	var env statusEnvelope
	path := "/watchlist/user/" + id(userID) + "/film/" + id(filmID)
	err := c.do(ctx, "watchlist.pair", http.MethodGet, path, nil, &env)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if env.Status == nil || *env.Status == "" {
		return nil, nil
	}
	return env.Status, nil
}

func (c *RESTClient) UserWatchlist(ctx context.Context, userID int64) ([]models.WatchlistItem, error) {
	var items []models.WatchlistItem
	if err := c.do(ctx, "watchlist.user", http.MethodGet, "/watchlist/user/"+id(userID), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.WatchlistItem{}
	}
	return items, nil
}

func (c *RESTClient) UpdateWatchlistItem(ctx context.Context, itemID int64, in models.WatchlistUpdate) error {
	return c.do(ctx, "watchlist.update", http.MethodPut, "/watchlist/"+id(itemID), in, nil)
}

func (c *RESTClient) RemoveFromWatchlist(ctx context.Context, itemID int64) error {
	return c.do(ctx, "watchlist.delete", http.MethodDelete, "/watchlist/"+id(itemID), nil, nil)
}

var _ Client = (*RESTClient)(nil)
