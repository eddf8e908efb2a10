package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

type Category struct {
	Name     string     `json:"name"`
	ID       int        `json:"id"`
	Children []Category `json:"children,omitempty"`
}

// Categories returns the category picker tree used by the explore
// endpoint's `category` parameter.
func (c *Client) Categories(ctx context.Context, hl string, tz int) (Category, error) {
	query := url.Values{}
	query.Set("hl", hl)
	query.Set("tz", strconv.Itoa(tz))

	body, err := c.get(ctx, "/api/explore/pickers/category", query)
	if err != nil {
		return Category{}, fmt.Errorf("categories: %w", err)
	}

	var root Category
	err = json.Unmarshal(body, &root)
	if err != nil {
		return Category{}, fmt.Errorf("categories: %w", err)
	}
	return root, nil
}
