package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

type comparisonItem struct {
	Keyword string `json:"keyword"`
	Geo     string `json:"geo"`
	Time    string `json:"time"`
}

type exploreRequest struct {
	ComparisonItem []comparisonItem `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type exploreResponse struct {
	Widgets []widget `json:"widgets"`
}

type ExploreOptions struct {
	Keywords  []string
	Category  int
	Timeframe string // defaults to "today 3-m"
	Geo       string
	Hl        string // defaults to "en-US"
	Tz        int    // defaults to 360
}

// Payload holds the tokenized widgets handed out by the explore
// endpoint; all widgetdata calls require one.
type Payload struct {
	Keywords []string
	Hl       string
	Tz       int

	timeseries     *widget
	geoMap         *widget
	relatedQueries []widget // one per keyword, in keyword order
	relatedTopics  []widget
}

// Explore registers a keyword comparison and returns the widget tokens
// for it. Between one and five keywords are accepted.
func (c *Client) Explore(ctx context.Context, opts ExploreOptions) (*Payload, error) {
	if len(opts.Keywords) == 0 {
		return nil, fmt.Errorf("at least one keyword is required")
	}
	if len(opts.Keywords) > 5 {
		return nil, fmt.Errorf("at most five keywords can be compared, got %d", len(opts.Keywords))
	}
	hl := opts.Hl
	if hl == "" {
		hl = DefaultHl
	}
	tz := opts.Tz
	if tz == 0 {
		tz = DefaultTz
	}
	timeframe := opts.Timeframe
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}

	req := exploreRequest{Category: opts.Category, Property: ""}
	for _, kw := range opts.Keywords {
		req.ComparisonItem = append(req.ComparisonItem, comparisonItem{
			Keyword: kw,
			Geo:     opts.Geo,
			Time:    timeframe,
		})
	}
	reqJson, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("hl", hl)
	query.Set("tz", strconv.Itoa(tz))
	query.Set("req", string(reqJson))

	body, err := c.post(ctx, "/api/explore", query)
	if err != nil {
		return nil, fmt.Errorf("explore: %w", err)
	}

	var res exploreResponse
	err = json.Unmarshal(body, &res)
	if err != nil {
		return nil, fmt.Errorf("explore: %w", err)
	}

	p := &Payload{Keywords: opts.Keywords, Hl: hl, Tz: tz}
	for i := range res.Widgets {
		w := res.Widgets[i]
		switch w.ID {
		case "TIMESERIES":
			if p.timeseries == nil {
				p.timeseries = &res.Widgets[i]
			}
		case "GEO_MAP":
			if p.geoMap == nil {
				p.geoMap = &res.Widgets[i]
			}
		case "RELATED_QUERIES":
			p.relatedQueries = append(p.relatedQueries, w)
		case "RELATED_TOPICS":
			p.relatedTopics = append(p.relatedTopics, w)
		}
	}
	return p, nil
}

func (c *Client) widgetData(ctx context.Context, path string, p *Payload, w *widget) ([]byte, error) {
	query := url.Values{}
	query.Set("hl", p.Hl)
	query.Set("tz", strconv.Itoa(p.Tz))
	query.Set("req", string(w.Request))
	query.Set("token", w.Token)
	return c.get(ctx, path, query)
}

// patches the raw widget request before sending it back, used for
// region resolution and low-volume toggles
func patchWidgetRequest(w widget, patch map[string]any) (widget, error) {
	var req map[string]any
	err := json.Unmarshal(w.Request, &req)
	if err != nil {
		return w, err
	}
	for k, v := range patch {
		req[k] = v
	}
	patched, err := json.Marshal(req)
	if err != nil {
		return w, err
	}
	w.Request = patched
	return w, nil
}
