package trendsapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/trends"

	"github.com/gorilla/mux"
)

// timestamps in timeline data mirror the upstream bucket boundaries
func formatTimelineDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04:05")
}

// one record per timeline bucket, keyed by date plus one column per
// compared keyword
func timelineRecords(points []trends.TimelinePoint, keywords []string) []map[string]any {
	records := make([]map[string]any, 0, len(points))
	for _, point := range points {
		record := map[string]any{
			"date":      formatTimelineDate(point.Time),
			"isPartial": point.IsPartial,
		}
		for i, keyword := range keywords {
			if i < len(point.Values) {
				record[keyword] = point.Values[i]
			}
		}
		records = append(records, record)
	}
	return records
}

func regionRecords(regions []trends.RegionInterest, keywords []string, includeGeoCode bool) []map[string]any {
	records := make([]map[string]any, 0, len(regions))
	for _, region := range regions {
		record := map[string]any{"geoName": region.GeoName}
		if includeGeoCode {
			record["geoCode"] = region.GeoCode
		}
		for i, keyword := range keywords {
			if i < len(region.Values) {
				record[keyword] = region.Values[i]
			}
		}
		records = append(records, record)
	}
	return records
}

// per-keyword map of top and rising related queries, keywords without
// a widget get empty lists
func (s *Service) relatedQueriesMap(r *http.Request, payload *trends.Payload) map[string]trends.RelatedQueries {
	result := map[string]trends.RelatedQueries{}
	for i, keyword := range payload.Keywords {
		related, err := s.trends.RelatedQueriesFor(r.Context(), payload, i)
		if err != nil {
			slog.Warn("no related queries for keyword", "keyword", keyword, "err", err)
			related = trends.RelatedQueries{}
		}
		if related.Top == nil {
			related.Top = []trends.RelatedQuery{}
		}
		if related.Rising == nil {
			related.Rising = []trends.RelatedQuery{}
		}
		result[keyword] = related
	}
	return result
}

func (s *Service) relatedTopicsMap(r *http.Request, payload *trends.Payload) map[string]trends.RelatedTopics {
	result := map[string]trends.RelatedTopics{}
	for i, keyword := range payload.Keywords {
		related, err := s.trends.RelatedTopicsFor(r.Context(), payload, i)
		if err != nil {
			slog.Warn("no related topics for keyword", "keyword", keyword, "err", err)
			related = trends.RelatedTopics{}
		}
		if related.Top == nil {
			related.Top = []trends.RelatedTopic{}
		}
		if related.Rising == nil {
			related.Rising = []trends.RelatedTopic{}
		}
		result[keyword] = related
	}
	return result
}

func keywordsParam(r *http.Request) []string {
	raw := r.URL.Query().Get("keywords")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// the /trends endpoint predates the specific /trends/* ones and is
// kept for old callers
func (s *Service) handleLegacyTrends(w http.ResponseWriter, r *http.Request) {
	slog.Warn("handling legacy /trends request, /trends/* endpoints are preferred")

	keywords := keywordsParam(r)
	if len(keywords) == 0 {
		keywords = []string{"bitcoin"}
	}
	timeframe := stringParam(r, "timeframe", trends.DefaultTimeframe)
	queryType := strings.ToLower(stringParam(r, "query_type", "interest_over_time"))
	geo := stringParam(r, "geo", "")
	hl := stringParam(r, "hl", trends.DefaultHl)
	tz, err := intParam(r, "tz", trends.DefaultTz)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	cat, err := intParam(r, "cat", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	payload, err := s.trends.Explore(r.Context(), trends.ExploreOptions{
		Keywords:  keywords,
		Category:  cat,
		Timeframe: timeframe,
		Geo:       geo,
		Hl:        hl,
		Tz:        tz,
	})
	if err != nil {
		upstreamError(w, "Failed to build trends payload", err)
		return
	}

	var data any
	switch queryType {
	case "interest_over_time":
		points, err := s.trends.InterestOverTime(r.Context(), payload)
		if err != nil {
			upstreamError(w, "Failed to get interest over time", err)
			return
		}
		data = timelineRecords(points, keywords)
	case "related_queries":
		data = s.relatedQueriesMap(r, payload)
	case "interest_by_region":
		resolution, err := trends.ParseResolution(stringParam(r, "resolution", "COUNTRY"))
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		regions, err := s.trends.InterestByRegion(r.Context(), payload, trends.RegionOptions{
			Resolution: resolution,
		})
		if err != nil {
			upstreamError(w, "Failed to get interest by region", err)
			return
		}
		data = regionRecords(regions, keywords, false)
	default:
		badRequest(w, fmt.Sprintf(
			"Unsupported legacy 'query_type': %s. Supported: interest_over_time, related_queries, interest_by_region.",
			queryType,
		))
		return
	}

	body := map[string]any{
		"keywords":   keywords,
		"timeframe":  timeframe,
		"geo":        geo,
		"query_type": queryType,
		"data":       data,
		"note":       "Legacy endpoint",
	}
	s.recordScrape("/trends", r.URL.Query(), body)
	writeJson(w, http.StatusOK, body)
}

func (s *Service) handleTrendsEndpoint(w http.ResponseWriter, r *http.Request) {
	endpoint := mux.Vars(r)["endpoint"]

	keywords := keywordsParam(r)
	timeframe := stringParam(r, "timeframe", trends.DefaultTimeframe)
	geo := stringParam(r, "geo", "")
	hl := stringParam(r, "hl", trends.DefaultHl)
	tz, err := intParam(r, "tz", trends.DefaultTz)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	cat, err := intParam(r, "cat", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	pn := stringParam(r, "pn", "US")

	meta := map[string]any{"hl": hl, "tz": tz}

	// widget based endpoints share the explore step
	explore := func() (*trends.Payload, bool) {
		if len(keywords) == 0 {
			badRequest(w, "Parameter 'keywords' is required.")
			return nil, false
		}
		payload, err := s.trends.Explore(r.Context(), trends.ExploreOptions{
			Keywords:  keywords,
			Category:  cat,
			Timeframe: timeframe,
			Geo:       geo,
			Hl:        hl,
			Tz:        tz,
		})
		if err != nil {
			upstreamError(w, "Failed to build trends payload", err)
			return nil, false
		}
		meta["keywords"] = keywords
		meta["timeframe"] = timeframe
		meta["geo"] = geo
		meta["cat"] = cat
		return payload, true
	}

	var data any
	switch endpoint {
	case "interest-over-time":
		payload, ok := explore()
		if !ok {
			return
		}
		points, err := s.trends.InterestOverTime(r.Context(), payload)
		if err != nil {
			upstreamError(w, "Failed to get interest over time", err)
			return
		}
		data = timelineRecords(points, keywords)

	case "interest-by-region":
		resolution, err := trends.ParseResolution(stringParam(r, "resolution", "COUNTRY"))
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		includeLowVolume := boolParam(r, "inc_low_vol", true)
		includeGeoCode := boolParam(r, "inc_geo_code", false)
		payload, ok := explore()
		if !ok {
			return
		}
		regions, err := s.trends.InterestByRegion(r.Context(), payload, trends.RegionOptions{
			Resolution:       resolution,
			IncludeLowVolume: includeLowVolume,
		})
		if err != nil {
			upstreamError(w, "Failed to get interest by region", err)
			return
		}
		data = regionRecords(regions, keywords, includeGeoCode)
		meta["resolution"] = resolution

	case "related-topics":
		payload, ok := explore()
		if !ok {
			return
		}
		data = s.relatedTopicsMap(r, payload)

	case "related-queries":
		payload, ok := explore()
		if !ok {
			return
		}
		data = s.relatedQueriesMap(r, payload)

	case "trending-searches":
		used := trends.NormalizeDailyGeo(pn)
		queries, err := s.trends.TrendingSearches(r.Context(), used)
		if err != nil {
			upstreamError(w, fmt.Sprintf("Failed to get trending searches for %s", pn), err)
			return
		}
		records := make([]map[string]any, 0, len(queries))
		for _, query := range queries {
			records = append(records, map[string]any{"query": query})
		}
		data = records
		meta["pn_requested"] = pn
		meta["pn_used"] = used

	case "realtime-trending-searches":
		realtimeCat := stringParam(r, "cat", "all")
		used := trends.NormalizeRealtimeGeo(pn)
		data = s.realtimeWithFallback(r, used, hl, tz, realtimeCat)
		meta["pn_requested"] = pn
		meta["pn_used"] = used
		meta["cat"] = realtimeCat

	case "top-charts":
		lastYear := time.Now().Year() - 1
		year, err := intParam(r, "date", lastYear)
		if err != nil {
			badRequest(w, "Parameter 'date' must be a valid year (integer).")
			return
		}
		items, err := s.trends.TopCharts(r.Context(), year, geo, hl, tz)
		if err != nil {
			upstreamError(w, "Failed to get top charts", err)
			return
		}
		data = items
		meta["year"] = year
		meta["geo"] = geo

	case "suggestions":
		keyword := stringParam(r, "keyword", "")
		if keyword == "" {
			badRequest(w, "Parameter 'keyword' is required.")
			return
		}
		suggestions, err := s.trends.Suggestions(r.Context(), keyword, hl, tz)
		if err != nil {
			upstreamError(w, "Failed to get suggestions", err)
			return
		}
		records := make([]map[string]any, 0, len(suggestions))
		for _, suggestion := range suggestions {
			records = append(records, map[string]any{
				"title": suggestion.Title,
				"type":  suggestion.Type,
			})
		}
		data = records
		meta["keyword"] = keyword

	case "categories":
		categories, err := s.trends.Categories(r.Context(), hl, tz)
		if err != nil {
			upstreamError(w, "Failed to get categories", err)
			return
		}
		data = categories

	default:
		badRequest(w, fmt.Sprintf("Unknown /trends/ endpoint: %s", endpoint))
		return
	}

	body := map[string]any{
		"endpoint": "/trends/" + endpoint,
		"metadata": meta,
		"data":     data,
		"status":   "success",
	}
	s.recordScrape("/trends/"+endpoint, r.URL.Query(), body)
	writeJson(w, http.StatusOK, body)
}

// the realtime api is flaky, an error or empty result falls back to
// today's daily searches, and a total failure still answers 200 with a
// note so dashboards polling this endpoint keep working
func (s *Service) realtimeWithFallback(r *http.Request, used, hl string, tz int, cat string) []map[string]any {
	stories, err := s.trends.RealtimeTrendingSearches(r.Context(), used, hl, tz, cat)
	if err == nil && len(stories) > 0 {
		records := make([]map[string]any, 0, len(stories))
		for _, story := range stories {
			records = append(records, map[string]any{
				"title":    story.Title,
				"entities": story.Entities,
			})
		}
		return records
	}
	if err != nil {
		slog.Warn("realtime trends failed, falling back to today's searches", "pn", used, "err", err)
	} else {
		slog.Warn("realtime trends came back empty, falling back to today's searches", "pn", used)
	}

	titles, fallbackErr := s.trends.TodaySearches(r.Context(), used, hl, tz)
	if fallbackErr != nil || len(titles) == 0 {
		if fallbackErr != nil {
			slog.Error("fallback today's searches also failed", "pn", used, "err", fallbackErr)
		}
		return []map[string]any{{
			"note": fmt.Sprintf(
				"Could not retrieve trending searches for %s. Both realtime and daily APIs returned no data.",
				used,
			),
		}}
	}

	records := make([]map[string]any, 0, len(titles))
	for _, title := range titles {
		records = append(records, map[string]any{"title": title})
	}
	records[0]["note"] = "Data retrieved using fallback (today_searches)"
	return records
}
