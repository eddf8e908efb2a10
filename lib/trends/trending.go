package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// TrendingSearches returns today's trending queries for a country.
// The hottrends table is keyed by full country name in snake case
// ("united_states"), see NormalizeDailyGeo.
func (c *Client) TrendingSearches(ctx context.Context, country string) ([]string, error) {
	body, err := c.get(ctx, "/hottrends/visualize/internal/data", url.Values{})
	if err != nil {
		return nil, fmt.Errorf("trending searches: %w", err)
	}

	var table map[string][]string
	err = json.Unmarshal(body, &table)
	if err != nil {
		return nil, fmt.Errorf("trending searches: %w", err)
	}

	queries, ok := table[country]
	if !ok {
		return nil, fmt.Errorf("trending searches: no data for country %q", country)
	}
	return queries, nil
}

type dailyTrendsResponse struct {
	Default struct {
		TrendingSearchesDays []struct {
			TrendingSearches []struct {
				Title struct {
					Query string `json:"query"`
				} `json:"title"`
			} `json:"trendingSearches"`
		} `json:"trendingSearchesDays"`
	} `json:"default"`
}

// TodaySearches returns today's trending query titles for a 2-letter
// geo code.
func (c *Client) TodaySearches(ctx context.Context, geo, hl string, tz int) ([]string, error) {
	query := url.Values{}
	query.Set("hl", hl)
	query.Set("tz", strconv.Itoa(tz))
	query.Set("geo", geo)
	query.Set("ns", "15")

	body, err := c.get(ctx, "/api/dailytrends", query)
	if err != nil {
		return nil, fmt.Errorf("today searches: %w", err)
	}

	var res dailyTrendsResponse
	err = json.Unmarshal(body, &res)
	if err != nil {
		return nil, fmt.Errorf("today searches: %w", err)
	}

	var titles []string
	if len(res.Default.TrendingSearchesDays) > 0 {
		for _, search := range res.Default.TrendingSearchesDays[0].TrendingSearches {
			if search.Title.Query != "" {
				titles = append(titles, search.Title.Query)
			}
		}
	}
	return titles, nil
}

type RealtimeStory struct {
	Title    string   `json:"title"`
	Entities []string `json:"entities"`
}

type realtimeResponse struct {
	StorySummaries struct {
		TrendingStories []struct {
			Title       string   `json:"title"`
			EntityNames []string `json:"entityNames"`
		} `json:"trendingStories"`
	} `json:"storySummaries"`
}

// RealtimeTrendingSearches returns currently trending stories for a
// 2-letter geo code. `cat` defaults to "all".
func (c *Client) RealtimeTrendingSearches(ctx context.Context, geo, hl string, tz int, cat string) ([]RealtimeStory, error) {
	if cat == "" {
		cat = "all"
	}
	query := url.Values{}
	query.Set("hl", hl)
	query.Set("tz", strconv.Itoa(tz))
	query.Set("cat", cat)
	query.Set("fi", "0")
	query.Set("fs", "0")
	query.Set("geo", geo)
	query.Set("ri", "300")
	query.Set("rs", "20")
	query.Set("sort", "0")

	body, err := c.get(ctx, "/api/realtimetrends", query)
	if err != nil {
		return nil, fmt.Errorf("realtime trending searches: %w", err)
	}

	var res realtimeResponse
	err = json.Unmarshal(body, &res)
	if err != nil {
		return nil, fmt.Errorf("realtime trending searches: %w", err)
	}

	stories := make([]RealtimeStory, 0, len(res.StorySummaries.TrendingStories))
	for _, story := range res.StorySummaries.TrendingStories {
		stories = append(stories, RealtimeStory{
			Title:    story.Title,
			Entities: story.EntityNames,
		})
	}
	return stories, nil
}
