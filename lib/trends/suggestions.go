package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

type Suggestion struct {
	Mid   string `json:"mid"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type suggestionsResponse struct {
	Default struct {
		Topics []Suggestion `json:"topics"`
	} `json:"default"`
}

// Suggestions returns topic suggestions for a keyword, the trends
// equivalent of autocomplete.
func (c *Client) Suggestions(ctx context.Context, keyword, hl string, tz int) ([]Suggestion, error) {
	query := url.Values{}
	query.Set("hl", hl)
	query.Set("tz", strconv.Itoa(tz))

	body, err := c.get(ctx, "/api/autocomplete/"+url.PathEscape(keyword), query)
	if err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}

	var res suggestionsResponse
	err = json.Unmarshal(body, &res)
	if err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}
	return res.Default.Topics, nil
}
