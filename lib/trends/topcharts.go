package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

type TopChartItem struct {
	Title        string `json:"title"`
	ExploreQuery string `json:"exploreQuery"`
}

type topChartsResponse struct {
	TopCharts []struct {
		ListItems []TopChartItem `json:"listItems"`
	} `json:"topCharts"`
}

// TopCharts returns the year-end top chart for `year`. Data exists
// only for completed years.
func (c *Client) TopCharts(ctx context.Context, year int, geo, hl string, tz int) ([]TopChartItem, error) {
	query := url.Values{}
	query.Set("hl", hl)
	query.Set("tz", strconv.Itoa(tz))
	query.Set("date", strconv.Itoa(year))
	query.Set("geo", geo)
	query.Set("isMobile", "false")

	body, err := c.get(ctx, "/api/topcharts", query)
	if err != nil {
		return nil, fmt.Errorf("top charts: %w", err)
	}

	var res topChartsResponse
	err = json.Unmarshal(body, &res)
	if err != nil {
		return nil, fmt.Errorf("top charts: %w", err)
	}

	if len(res.TopCharts) == 0 {
		return nil, nil
	}
	return res.TopCharts[0].ListItems, nil
}
