package trendsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/gsearch"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/sqliteutil"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/suggest"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/telemetry"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/trends"

	"github.com/stretchr/testify/require"
)

const searchResultPage = `<html><body>
<div class="g">
  <a href="https://example.com/one"><h3>First Result</h3></a>
  <div class="VwiC3b">the first description</div>
</div>
<div class="g">
  <a href="https://example.com/two"><h3>Second Result</h3></a>
  <div class="VwiC3b">the second description</div>
</div>
</body></html>`

func fakeTrendsServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/api/explore", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `)]}'
{"widgets":[
  {"id":"TIMESERIES","token":"tok-ts","request":{}},
  {"id":"GEO_MAP","token":"tok-geo","request":{}},
  {"id":"RELATED_QUERIES","token":"tok-rq","request":{}},
  {"id":"RELATED_TOPICS","token":"tok-rt","request":{}}
]}`)
	})
	mux.HandleFunc("/api/widgetdata/multiline", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `)]}'
{"default":{"timelineData":[
  {"time":"1700000000","formattedTime":"Nov 14, 2023","value":[42],"isPartial":false},
  {"time":"1700086400","formattedTime":"Nov 15, 2023","value":[55],"isPartial":true}
]}}`)
	})
	mux.HandleFunc("/api/widgetdata/relatedsearches", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `)]}'
{"default":{"rankedList":[
  {"rankedKeyword":[{"query":"top query","value":100}]},
  {"rankedKeyword":[{"query":"rising query","value":300}]}
]}}`)
	})
	mux.HandleFunc("/hottrends/visualize/internal/data", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `)]}'
{"united_states": ["query one", "query two"]}`)
	})
	mux.HandleFunc("/api/autocomplete/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `)]}'
{"default":{"topics":[{"mid":"/m/01","title":"Go","type":"Programming language"}]}}`)
	})
	mux.HandleFunc("/api/realtimetrends", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	})
	mux.HandleFunc("/api/dailytrends", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `)]}'
{"default":{"trendingSearchesDays":[{"trendingSearches":[
  {"title":{"query":"daily one"}},
  {"title":{"query":"daily two"}}
]}]}}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupService(t *testing.T, maxCalls int) *Service {
	t.Helper()
	cleanup := telemetry.SetupForTesting("test:services/trendsapi")
	t.Cleanup(cleanup)
	ctx := context.Background()

	trendsClient, err := trends.NewClient(ctx, trends.ClientOptions{
		BaseUrl: fakeTrendsServer(t).URL,
		Backoff: time.Millisecond,
	})
	require.NoError(t, err)

	suggestServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `["seed",["seed one","seed two"]]`)
	}))
	t.Cleanup(suggestServer.Close)

	searchServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") != "0" {
			fmt.Fprint(w, "<html><body></body></html>")
			return
		}
		fmt.Fprint(w, searchResultPage)
	}))
	t.Cleanup(searchServer.Close)
	searchClient := gsearch.NewClient(gsearch.ClientOptions{BaseUrl: searchServer.URL})
	searchClient.UserAgent = "test-agent"

	service, err := NewService(ctx, Config{
		Database:          sqliteutil.Database{File: ":memory:"},
		MaxCallsPerMinute: maxCalls,
		NicheDelayMs:      1,
	}, Clients{
		Trends:  trendsClient,
		Suggest: suggest.NewClient(suggest.ClientOptions{BaseUrl: suggestServer.URL}),
		Search:  searchClient,
	})
	require.NoError(t, err)
	return service
}

func doRequest(t *testing.T, service *Service, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	service.Router().ServeHTTP(rec, req)

	var body map[string]any
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err, "response body: %s", rec.Body.String())
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/health")
	require.Equal(t, 200, status)
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, Version, body["version"])

	limits := body["rate_limit_status"].(map[string]any)
	require.EqualValues(t, 50, limits["max_calls"])
	require.EqualValues(t, 60, limits["time_frame_seconds"])
}

func TestNotFound(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/nope")
	require.Equal(t, 404, status)
	require.Equal(t, "error", body["status"])
}

func TestAutocomplete(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/autocomplete?keyword=seed")
	require.Equal(t, 200, status)
	require.Equal(t, "seed", body["keyword"])
	require.EqualValues(t, 2, body["num_returned"])
	require.Equal(t, []any{"seed one", "seed two"}, body["suggestions"])
}

func TestAutocompleteRequiresKeyword(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/autocomplete")
	require.Equal(t, 400, status)
	require.Equal(t, "error", body["status"])
}

func TestSearch(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/search?q=example&advanced=true")
	require.Equal(t, 200, status)
	require.EqualValues(t, 2, body["num_results_returned"])

	results := body["results"].([]any)
	first := results[0].(map[string]any)
	require.Equal(t, "First Result", first["title"])
	require.Equal(t, "https://example.com/one", first["url"])
	require.Equal(t, "the first description", first["description"])
}

func TestSearchPlainOnlyUrls(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/search?q=example")
	require.Equal(t, 200, status)

	results := body["results"].([]any)
	first := results[0].(map[string]any)
	require.Equal(t, "https://example.com/one", first["url"])
	require.NotContains(t, first, "title")
}

func TestCombinedSearchWithTrends(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/search/combined?q=example&include_trends=true")
	require.Equal(t, 200, status)
	require.NotNil(t, body["search_results"])

	trendData := body["trend_data"].(map[string]any)
	require.Equal(t, "success", trendData["status"])
	require.Len(t, trendData["interest_over_time"].([]any), 2)

	related := trendData["related_queries"].(map[string]any)
	require.Len(t, related["top"].([]any), 1)
	require.Len(t, related["rising"].([]any), 1)
}

func TestNicheTopics(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/niche-topics?keyword=seed&depth=1")
	require.Equal(t, 200, status)
	require.EqualValues(t, 1, body["depth"])

	tree := body["topic_tree"].(map[string]any)
	require.Equal(t, "seed", tree["keyword"])

	subtopics := tree["subtopics"].([]any)
	require.Len(t, subtopics, 2)
	first := subtopics[0].(map[string]any)
	require.Equal(t, "seed one", first["keyword"])
	// depth 1 stops before expanding the suggestions themselves
	require.Empty(t, first["subtopics"])
}

func TestLegacyTrends(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/trends")
	require.Equal(t, 200, status)
	require.Equal(t, "Legacy endpoint", body["note"])
	require.Equal(t, []any{"bitcoin"}, body["keywords"])
	require.Equal(t, "interest_over_time", body["query_type"])

	data := body["data"].([]any)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	require.EqualValues(t, 42, first["bitcoin"])
}

func TestLegacyTrendsUnknownQueryType(t *testing.T) {
	service := setupService(t, 50)

	status, _ := doRequest(t, service, "/trends?query_type=nope")
	require.Equal(t, 400, status)
}

func TestInterestOverTimeEndpoint(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/trends/interest-over-time?keywords=golang")
	require.Equal(t, 200, status)
	require.Equal(t, "success", body["status"])
	require.Equal(t, "/trends/interest-over-time", body["endpoint"])

	data := body["data"].([]any)
	require.Len(t, data, 2)
	second := data[1].(map[string]any)
	require.EqualValues(t, 55, second["golang"])
	require.Equal(t, true, second["isPartial"])
}

func TestInterestOverTimeRequiresKeywords(t *testing.T) {
	service := setupService(t, 50)

	status, _ := doRequest(t, service, "/trends/interest-over-time")
	require.Equal(t, 400, status)
}

func TestRelatedQueriesMissingWidget(t *testing.T) {
	service := setupService(t, 50)

	// the fake explore answers with one related queries widget, so the
	// second keyword has none and must come back with empty lists
	// instead of failing the request
	status, body := doRequest(t, service, "/trends/related-queries?keywords=go,rust")
	require.Equal(t, 200, status)
	require.Equal(t, "success", body["status"])

	data := body["data"].(map[string]any)
	first := data["go"].(map[string]any)
	require.Len(t, first["top"].([]any), 1)

	second := data["rust"].(map[string]any)
	require.Empty(t, second["top"])
	require.Empty(t, second["rising"])
}

func TestTrendingSearchesEndpoint(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/trends/trending-searches?pn=US")
	require.Equal(t, 200, status)

	meta := body["metadata"].(map[string]any)
	require.Equal(t, "US", meta["pn_requested"])
	require.Equal(t, "united_states", meta["pn_used"])

	data := body["data"].([]any)
	require.Len(t, data, 2)
	require.Equal(t, "query one", data[0].(map[string]any)["query"])
}

func TestRealtimeFallsBackToDaily(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/trends/realtime-trending-searches?pn=united%20states")
	require.Equal(t, 200, status)
	require.Equal(t, "success", body["status"])

	meta := body["metadata"].(map[string]any)
	require.Equal(t, "US", meta["pn_used"])

	data := body["data"].([]any)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	require.Equal(t, "daily one", first["title"])
	require.Equal(t, "Data retrieved using fallback (today_searches)", first["note"])
}

func TestSuggestionsEndpoint(t *testing.T) {
	service := setupService(t, 50)

	status, body := doRequest(t, service, "/trends/suggestions?keyword=golang")
	require.Equal(t, 200, status)

	data := body["data"].([]any)
	require.Len(t, data, 1)
	first := data[0].(map[string]any)
	require.Equal(t, "Go", first["title"])
	require.Equal(t, "Programming language", first["type"])
}

func TestUnknownTrendsEndpoint(t *testing.T) {
	service := setupService(t, 50)

	status, _ := doRequest(t, service, "/trends/nope")
	require.Equal(t, 400, status)
}

func TestTopChartsRejectsBadYear(t *testing.T) {
	service := setupService(t, 50)

	status, _ := doRequest(t, service, "/trends/top-charts?date=notayear")
	require.Equal(t, 400, status)
}

func TestRateLimit(t *testing.T) {
	service := setupService(t, 1)

	status, _ := doRequest(t, service, "/autocomplete?keyword=seed")
	require.Equal(t, 200, status)

	status, body := doRequest(t, service, "/autocomplete?keyword=seed")
	require.Equal(t, 429, status)
	require.Equal(t, "error", body["status"])

	// health stays reachable while rate limited
	status, _ = doRequest(t, service, "/health")
	require.Equal(t, 200, status)
}
