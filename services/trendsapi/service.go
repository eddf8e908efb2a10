package trendsapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/gsearch"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/sqliteutil"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/suggest"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/trends"
	apidb "github.com/Noureddine-Aitelhaj/pytrends-cli/services/trendsapi/db"

	"github.com/gorilla/mux"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/trendsapi")

const Version = "1.1"

const (
	defaultMaxCalls   = 100
	defaultWindow     = time.Minute
	defaultNicheDelay = time.Millisecond * 200
)

type Config struct {
	// scrape history database, disabled when both fields are empty
	Database sqliteutil.Database `json:"database"`
	// rate limit over all non-health endpoints, defaults to 100/min
	MaxCallsPerMinute int `json:"max_calls_per_minute"`
	// pause between autocomplete requests while expanding niche
	// topics, milliseconds, defaults to 200
	NicheDelayMs int `json:"niche_delay_ms"`
}

// Clients carries the upstream scrapers the service queries. Zero
// value fields are replaced by default clients, tests inject fakes
// pointed at httptest servers.
type Clients struct {
	Trends  *trends.Client
	Suggest *suggest.Client
	Search  *gsearch.Client
}

type Service struct {
	trends  *trends.Client
	suggest *suggest.Client
	search  *gsearch.Client

	limiter    *RateLimiter
	store      *Store
	nicheDelay time.Duration
}

func NewService(ctx context.Context, config Config, clients Clients) (*Service, error) {
	if clients.Trends == nil {
		client, err := trends.NewClient(ctx, trends.ClientOptions{})
		if err != nil {
			return nil, fmt.Errorf("trends client: %w", err)
		}
		clients.Trends = client
	}
	if clients.Suggest == nil {
		clients.Suggest = suggest.NewClient(suggest.ClientOptions{})
	}
	if clients.Search == nil {
		clients.Search = gsearch.NewClient(gsearch.ClientOptions{})
	}

	maxCalls := config.MaxCallsPerMinute
	if maxCalls <= 0 {
		maxCalls = defaultMaxCalls
	}
	nicheDelay := defaultNicheDelay
	if config.NicheDelayMs > 0 {
		nicheDelay = time.Duration(config.NicheDelayMs) * time.Millisecond
	}

	var store *Store
	if config.Database.File != "" || config.Database.Url != "" {
		db, err := config.Database.Open(apidb.Schema)
		if err != nil {
			return nil, fmt.Errorf("scrape store: %w", err)
		}
		s := NewStore(db)
		store = &s
		slog.Info("scrape history enabled", "file", config.Database.File, "url", config.Database.Url)
	}

	return &Service{
		trends:     clients.Trends,
		suggest:    clients.Suggest,
		search:     clients.Search,
		limiter:    NewRateLimiter(maxCalls, defaultWindow),
		store:      store,
		nicheDelay: nicheDelay,
	}, nil
}

func (s *Service) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	router.HandleFunc("/", s.handleHealth).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// everything below shares the sliding-window rate limit
	limited := router.NewRoute().Subrouter()
	limited.Use(s.enforceRateLimit)
	limited.HandleFunc("/search", s.handleSearch).Methods("GET")
	limited.HandleFunc("/search/combined", s.handleCombinedSearch).Methods("GET")
	limited.HandleFunc("/autocomplete", s.handleAutocomplete).Methods("GET")
	limited.HandleFunc("/niche-topics", s.handleNicheTopics).Methods("GET")
	limited.HandleFunc("/trends", s.handleLegacyTrends).Methods("GET")
	limited.HandleFunc("/trends/{endpoint}", s.handleTrendsEndpoint).Methods("GET")

	return router
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := random.String(8)
		if err != nil {
			id = "--------"
		}
		start := time.Now()

		ctx, span := tracer.Start(r.Context(), r.URL.Path)
		defer span.End()

		slog.Info("request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
		slog.Info("request done", "id", id, "path", r.URL.Path, "took", time.Since(start))
	})
}

func (s *Service) enforceRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded, try again later", nil)
			return
		}
		s.limiter.Record()
		next.ServeHTTP(w, r)
	})
}

// asynchronously persists a successful scrape, failures only warn
func (s *Service) recordScrape(endpoint string, params url.Values, payload any) {
	if s.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		err := s.store.Record(ctx, endpoint, params, payload)
		if err != nil {
			slog.Warn("failed to record scrape", "endpoint", endpoint, "err", err)
		}
	}()
}
