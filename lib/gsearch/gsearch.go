package gsearch

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/restyutil"

	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/gsearch")

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

const baseUrl = "https://www.google.com"

// page size requested from google, results are trimmed client side
const pageSize = 10

// Client scrapes the public google result page. Google blocks
// scrapers aggressively, so the user agent rotates per page and an
// optional sleep interval spaces out page fetches.
type Client struct {
	Http *resty.Client
	// overrides user agent rotation when non-empty, used by tests
	UserAgent string
}

type ClientOptions struct {
	// overrides the search endpoint, used by tests
	BaseUrl string
	Proxy   string
}

func NewClient(opts ClientOptions) *Client {
	endpoint := opts.BaseUrl
	if endpoint == "" {
		endpoint = baseUrl
	}

	client := resty.New()
	client.SetBaseURL(endpoint)
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{Http: client}
}

type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type Options struct {
	// number of results to fetch, defaults to 10
	NumResults int
	Lang       string // defaults to "en"
	// pause between result page fetches
	SleepInterval time.Duration
	// deadline for each page fetch, defaults to 5s
	Timeout time.Duration
}

// Search scrapes result pages until `NumResults` results are collected
// or google stops returning any.
func (c *Client) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	num := opts.NumResults
	if num <= 0 {
		num = 10
	}
	lang := opts.Lang
	if lang == "" {
		lang = "en"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 5
	}

	var results []Result
	for start := 0; len(results) < num; start += pageSize {
		if start > 0 && opts.SleepInterval > 0 {
			select {
			case <-time.After(opts.SleepInterval):
			case <-ctx.Done():
				return results, ctx.Err()
			}
		}

		page, err := c.fetchPage(ctx, query, lang, start, timeout)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		results = append(results, page...)
	}

	if len(results) > num {
		results = results[:num]
	}
	return results, nil
}

// the deadline is applied per page fetch, the shared resty client is
// never mutated so concurrent searches do not leak settings into each
// other
func (c *Client) fetchPage(ctx context.Context, query, lang string, start int, timeout time.Duration) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = browser.Computer()
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("user-agent", userAgent).
		SetQueryParams(map[string]string{
			"q":     query,
			"num":   strconv.Itoa(pageSize + 2),
			"hl":    lang,
			"start": strconv.Itoa(start),
		}).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}
	if res.StatusCode() == 429 {
		return nil, fmt.Errorf("google search: rate limited (429)")
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("google search: status %d", res.StatusCode())
	}

	return parseResults(res.Body())
}

func parseResults(body []byte) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}

	var results []Result
	doc.Find("div.g").Each(func(_ int, div *goquery.Selection) {
		link := div.Find("a[href]").First()
		href := link.AttrOr("href", "")
		if !strings.HasPrefix(href, "http") {
			return
		}

		title := strings.TrimSpace(div.Find("h3").First().Text())
		if title == "" {
			return
		}

		description := strings.TrimSpace(div.Find("div[data-sncf], div.VwiC3b").First().Text())

		results = append(results, Result{
			Title:       title,
			URL:         href,
			Description: description,
		})
	})
	return results, nil
}
