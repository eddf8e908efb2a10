package trends

import (
	"context"
	"encoding/json"
	"fmt"
)

type RelatedQuery struct {
	Query string `json:"query"`
	// 0-100 for top queries, percent growth for rising ones
	Value int `json:"value"`
}

type RelatedQueries struct {
	Top    []RelatedQuery `json:"top"`
	Rising []RelatedQuery `json:"rising"`
}

type RelatedTopic struct {
	Mid   string `json:"mid"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Value int    `json:"value"`
}

type RelatedTopics struct {
	Top    []RelatedTopic `json:"top"`
	Rising []RelatedTopic `json:"rising"`
}

type rankedKeyword struct {
	Query string `json:"query"`
	Topic struct {
		Mid   string `json:"mid"`
		Title string `json:"title"`
		Type  string `json:"type"`
	} `json:"topic"`
	Value int `json:"value"`
}

type relatedSearchesResponse struct {
	Default struct {
		RankedList []struct {
			RankedKeyword []rankedKeyword `json:"rankedKeyword"`
		} `json:"rankedList"`
	} `json:"default"`
}

// the first ranked list holds top results, the second rising ones
func (c *Client) relatedSearches(ctx context.Context, p *Payload, w *widget) (top, rising []rankedKeyword, err error) {
	body, err := c.widgetData(ctx, "/api/widgetdata/relatedsearches", p, w)
	if err != nil {
		return nil, nil, err
	}

	var res relatedSearchesResponse
	err = json.Unmarshal(body, &res)
	if err != nil {
		return nil, nil, err
	}

	if len(res.Default.RankedList) > 0 {
		top = res.Default.RankedList[0].RankedKeyword
	}
	if len(res.Default.RankedList) > 1 {
		rising = res.Default.RankedList[1].RankedKeyword
	}
	return top, rising, nil
}

// RelatedQueriesFor returns the top and rising related queries of the
// i-th compared keyword.
func (c *Client) RelatedQueriesFor(ctx context.Context, p *Payload, i int) (RelatedQueries, error) {
	if i < 0 || i >= len(p.relatedQueries) {
		return RelatedQueries{}, fmt.Errorf("payload has no related queries widget for keyword %d", i)
	}

	top, rising, err := c.relatedSearches(ctx, p, &p.relatedQueries[i])
	if err != nil {
		return RelatedQueries{}, fmt.Errorf("related queries: %w", err)
	}

	var out RelatedQueries
	for _, kw := range top {
		out.Top = append(out.Top, RelatedQuery{Query: kw.Query, Value: kw.Value})
	}
	for _, kw := range rising {
		out.Rising = append(out.Rising, RelatedQuery{Query: kw.Query, Value: kw.Value})
	}
	return out, nil
}

// RelatedTopicsFor returns the top and rising related topics of the
// i-th compared keyword.
func (c *Client) RelatedTopicsFor(ctx context.Context, p *Payload, i int) (RelatedTopics, error) {
	if i < 0 || i >= len(p.relatedTopics) {
		return RelatedTopics{}, fmt.Errorf("payload has no related topics widget for keyword %d", i)
	}

	top, rising, err := c.relatedSearches(ctx, p, &p.relatedTopics[i])
	if err != nil {
		return RelatedTopics{}, fmt.Errorf("related topics: %w", err)
	}

	var out RelatedTopics
	for _, kw := range top {
		out.Top = append(out.Top, RelatedTopic{
			Mid: kw.Topic.Mid, Title: kw.Topic.Title, Type: kw.Topic.Type, Value: kw.Value,
		})
	}
	for _, kw := range rising {
		out.Rising = append(out.Rising, RelatedTopic{
			Mid: kw.Topic.Mid, Title: kw.Topic.Title, Type: kw.Topic.Type, Value: kw.Value,
		})
	}
	return out, nil
}
