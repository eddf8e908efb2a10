package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/suggest")

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

const baseUrl = "https://suggestqueries.google.com"

// Client fetches autocomplete suggestions from the Google Suggest
// endpoint. `client=firefox` selects the json response variant.
type Client struct {
	Http *resty.Client
}

type ClientOptions struct {
	// overrides the suggest endpoint, used by tests
	BaseUrl string
}

func NewClient(opts ClientOptions) *Client {
	endpoint := opts.BaseUrl
	if endpoint == "" {
		endpoint = baseUrl
	}

	client := resty.New()
	client.SetBaseURL(endpoint)
	client.SetTimeout(time.Second * 5)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{Http: client}
}

type Options struct {
	// maximum number of suggestions, defaults to 10
	Num      int
	Language string // defaults to "en"
	Region   string // defaults to "us"
}

// Suggestions returns autocomplete completions of a keyword. An
// unexpected payload shape yields an empty list rather than an error.
func (c *Client) Suggestions(ctx context.Context, keyword string, opts Options) ([]string, error) {
	num := opts.Num
	if num <= 0 {
		num = 10
	}
	language := opts.Language
	if language == "" {
		language = "en"
	}
	region := opts.Region
	if region == "" {
		region = "us"
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "firefox",
			"q":      keyword,
			"hl":     language,
			"gl":     region,
			"ie":     "UTF-8",
			"oe":     "UTF-8",
		}).
		Get("/complete/search")
	if err != nil {
		return nil, fmt.Errorf("google suggest: %w", err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("google suggest: status %d", res.StatusCode())
	}

	// the response is a 2-tuple: [keyword, [suggestion, ...]]
	var payload []json.RawMessage
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		return nil, fmt.Errorf("google suggest: %w", err)
	}
	if len(payload) < 2 {
		return nil, nil
	}

	var suggestions []string
	err = json.Unmarshal(payload[1], &suggestions)
	if err != nil {
		return nil, nil
	}

	if len(suggestions) > num {
		suggestions = suggestions[:num]
	}
	return suggestions, nil
}
