package trendsapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/gsearch"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/suggest"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/trends"
)

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, details error) {
	body := map[string]any{
		"status":  "error",
		"message": message,
	}
	if details != nil {
		body["details"] = details.Error()
	}
	slog.Error("sending error response", "status", status, "message", message, "err", details)
	writeJson(w, status, body)
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "Bad Request: "+message, nil)
}

// scrape failures against google surface as bad gateway, the upstream
// is the broken party
func upstreamError(w http.ResponseWriter, message string, err error) {
	writeError(w, http.StatusBadGateway, message, err)
}

func stringParam(r *http.Request, name, fallback string) string {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	return value
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter '%s' must be an integer", name)
	}
	return value, nil
}

func boolParam(r *http.Request, name string, fallback bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	return strings.EqualFold(raw, "true")
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"time":              time.Now().Format(time.RFC3339),
		"version":           Version,
		"rate_limit_status": s.limiter.Status(),
	})
}

func (s *Service) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Endpoint not found", nil)
}

func (s *Service) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	keyword := stringParam(r, "keyword", "")
	if keyword == "" {
		badRequest(w, "Required parameter 'keyword' is missing.")
		return
	}
	num, err := intParam(r, "num", 10)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	language := stringParam(r, "language", "en")
	region := stringParam(r, "region", "us")

	// suggestion failures degrade to an empty list, the endpoint itself
	// stays healthy
	suggestions, err := s.suggest.Suggestions(r.Context(), keyword, suggest.Options{
		Num:      num,
		Language: language,
		Region:   region,
	})
	if err != nil {
		slog.Warn("autocomplete scrape failed", "keyword", keyword, "err", err)
		suggestions = nil
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	body := map[string]any{
		"keyword":       keyword,
		"language":      language,
		"region":        region,
		"num_requested": num,
		"num_returned":  len(suggestions),
		"suggestions":   suggestions,
	}
	s.recordScrape("/autocomplete", r.URL.Query(), body)
	writeJson(w, http.StatusOK, body)
}

func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := stringParam(r, "q", "")
	if query == "" {
		badRequest(w, "Required parameter 'q' (search query) is missing.")
		return
	}
	num, err := intParam(r, "num", 10)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	sleep, err := intParam(r, "sleep", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	timeout, err := intParam(r, "timeout", 5)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	lang := stringParam(r, "lang", "en")
	advanced := boolParam(r, "advanced", false)

	results, err := s.search.Search(r.Context(), query, gsearch.Options{
		NumResults:    num,
		Lang:          lang,
		SleepInterval: time.Duration(sleep) * time.Second,
		Timeout:       time.Duration(timeout) * time.Second,
	})
	if err != nil {
		upstreamError(w, fmt.Sprintf("Failed to perform Google search for '%s'", query), err)
		return
	}

	body := map[string]any{
		"query":                 query,
		"num_results_requested": num,
		"num_results_returned":  len(results),
		"lang":                  lang,
		"advanced":              advanced,
		"results":               searchRecords(results, advanced),
	}
	s.recordScrape("/search", r.URL.Query(), body)
	writeJson(w, http.StatusOK, body)
}

// plain searches only expose the result url, advanced ones the full
// title/url/description triple
func searchRecords(results []gsearch.Result, advanced bool) []map[string]any {
	records := make([]map[string]any, 0, len(results))
	for _, result := range results {
		if advanced {
			records = append(records, map[string]any{
				"title":       result.Title,
				"url":         result.URL,
				"description": result.Description,
			})
		} else {
			records = append(records, map[string]any{"url": result.URL})
		}
	}
	return records
}

func (s *Service) handleCombinedSearch(w http.ResponseWriter, r *http.Request) {
	query := stringParam(r, "q", "")
	if query == "" {
		badRequest(w, "Required parameter 'q' (search query) is missing.")
		return
	}
	num, err := intParam(r, "num", 10)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	lang := stringParam(r, "lang", "en")
	includeTrends := boolParam(r, "include_trends", false)

	results, err := s.search.Search(r.Context(), query, gsearch.Options{
		NumResults: num,
		Lang:       lang,
	})
	if err != nil {
		upstreamError(w, fmt.Sprintf("Failed to perform Google search for '%s'", query), err)
		return
	}

	body := map[string]any{
		"query": query,
		"search_metadata": map[string]any{
			"num_results_requested": num,
			"num_results_returned":  len(results),
			"lang":                  lang,
		},
		"search_results": searchRecords(results, true),
		"trend_data":     nil,
	}
	if includeTrends {
		body["trend_data"] = s.trendDataFor(r, query, lang)
	}

	s.recordScrape("/search/combined", r.URL.Query(), body)
	writeJson(w, http.StatusOK, body)
}

// fetches interest-over-time and related queries for a single search
// query. Failures are reported inside the trend_data block instead of
// failing the combined response.
func (s *Service) trendDataFor(r *http.Request, query, lang string) map[string]any {
	hl := lang
	if len(lang) == 2 {
		hl = strings.ToLower(lang) + "-" + strings.ToUpper(lang)
	}

	payload, err := s.trends.Explore(r.Context(), trends.ExploreOptions{
		Keywords: []string{query},
		Hl:       hl,
	})
	if err != nil {
		slog.Warn("could not get trend data", "query", query, "err", err)
		return map[string]any{"error": err.Error(), "status": "error"}
	}

	points, err := s.trends.InterestOverTime(r.Context(), payload)
	if err != nil {
		slog.Warn("could not get trend data", "query", query, "err", err)
		return map[string]any{"error": err.Error(), "status": "error"}
	}
	interest := make([]map[string]any, 0, len(points))
	for _, point := range points {
		value := 0
		if len(point.Values) > 0 {
			value = point.Values[0]
		}
		interest = append(interest, map[string]any{
			"date":     formatTimelineDate(point.Time),
			"interest": value,
		})
	}

	related, err := s.trends.RelatedQueriesFor(r.Context(), payload, 0)
	if err != nil {
		slog.Warn("could not get trend data", "query", query, "err", err)
		return map[string]any{"error": err.Error(), "status": "error"}
	}

	return map[string]any{
		"interest_over_time": interest,
		"related_queries":    related,
		"status":             "success",
	}
}

type topicNode struct {
	Keyword   string       `json:"keyword"`
	Subtopics []*topicNode `json:"subtopics"`
}

func (s *Service) handleNicheTopics(w http.ResponseWriter, r *http.Request) {
	seed := stringParam(r, "keyword", "")
	if seed == "" {
		badRequest(w, "Required parameter 'keyword' is missing.")
		return
	}
	depth, err := intParam(r, "depth", 2)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	perLevel, err := intParam(r, "results_per_level", 5)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	lang := stringParam(r, "lang", "en")
	country := stringParam(r, "country", "us")

	depth = max(1, min(depth, 3))
	perLevel = max(1, min(perLevel, 10))

	tree := s.exploreNicheTopics(r, seed, depth, perLevel, lang, country)

	body := map[string]any{
		"seed_keyword":      seed,
		"depth":             depth,
		"results_per_level": perLevel,
		"lang":              lang,
		"country":           country,
		"topic_tree":        tree,
	}
	s.recordScrape("/niche-topics", r.URL.Query(), body)
	writeJson(w, http.StatusOK, body)
}

// breadth-first expansion of autocomplete suggestions. A failing
// keyword is skipped, already seen keywords are not revisited.
func (s *Service) exploreNicheTopics(r *http.Request, seed string, depth, perLevel int, lang, country string) *topicNode {
	root := &topicNode{Keyword: seed, Subtopics: []*topicNode{}}

	type queueItem struct {
		keyword string
		depth   int
		parent  *topicNode
	}
	queue := []queueItem{{keyword: seed, depth: 0, parent: root}}
	seen := map[string]bool{seed: true}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if item.depth >= depth {
			continue
		}

		suggestions, err := s.suggest.Suggestions(r.Context(), item.keyword, suggest.Options{
			Num:      perLevel,
			Language: lang,
			Region:   country,
		})
		if err != nil {
			slog.Warn(
				"skipping keyword while exploring niche topics",
				"keyword", item.keyword,
				"depth", item.depth,
				"err", err,
			)
			continue
		}

		for _, suggestion := range suggestions {
			if suggestion == "" || seen[suggestion] {
				continue
			}
			node := &topicNode{Keyword: suggestion, Subtopics: []*topicNode{}}
			item.parent.Subtopics = append(item.parent.Subtopics, node)
			seen[suggestion] = true
			queue = append(queue, queueItem{keyword: suggestion, depth: item.depth + 1, parent: node})
		}

		// keeps the suggest endpoint from rate limiting us mid-tree
		select {
		case <-r.Context().Done():
			return root
		case <-time.After(s.nicheDelay):
		}
	}
	return root
}
