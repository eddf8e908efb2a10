package trends

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/trends")

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

const baseUrl = "https://trends.google.com/trends"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	DefaultHl        = "en-US"
	DefaultTz        = 360
	DefaultTimeframe = "today 3-m"
)

// Client speaks the unofficial Google Trends API: every payload is a
// JSONP-guarded blob behind a widget-token handshake.
type Client struct {
	Http *resty.Client

	retries       uint64
	backoffFactor time.Duration
}

type ClientOptions struct {
	// overrides the trends endpoint, used by tests
	BaseUrl string
	// number of retries on 429/5xx, defaults to 2
	Retries int
	// initial retry backoff, defaults to 500ms
	Backoff time.Duration
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	endpoint := opts.BaseUrl
	if endpoint == "" {
		endpoint = baseUrl
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = 2
	}
	backoffFactor := opts.Backoff
	if backoffFactor <= 0 {
		backoffFactor = time.Millisecond * 500
	}

	client := resty.New()
	client.SetBaseURL(endpoint)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if opts.BaseUrl == "" {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(time.Second * 25)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	c := &Client{
		Http:          client,
		retries:       uint64(retries),
		backoffFactor: backoffFactor,
	}

	err = c.refreshCookie(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtain trends cookie: %w", err)
	}
	return c, nil
}

// the widgetdata endpoints 401 without the NID cookie handed out on
// the landing page
func (c *Client) refreshCookie(ctx context.Context) error {
	_, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("geo", "US").
		Get("/")
	return err
}

type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("trends responded with status %d", e.code)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, resty.MethodGet, path, query)
}

func (c *Client) post(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, resty.MethodPost, path, query)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	operation := func() ([]byte, error) {
		res, err := c.Http.R().
			SetContext(ctx).
			SetQueryParamsFromValues(query).
			Execute(method, path)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		code := res.StatusCode()
		if code == 429 || code >= 500 {
			return nil, statusError{code: code}
		}
		if code != 200 {
			return nil, backoff.Permanent(statusError{code: code})
		}
		return trimJsonGuard(res.Body())
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.backoffFactor
	return backoff.RetryWithData(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, c.retries), ctx),
	)
}

// every trends response opens with a `)]}'` guard (length varies per
// endpoint), the real document starts at the first brace or bracket
func trimJsonGuard(body []byte) ([]byte, error) {
	brace := bytes.IndexByte(body, '{')
	bracket := bytes.IndexByte(body, '[')

	start := brace
	if start < 0 || (bracket >= 0 && bracket < start) {
		start = bracket
	}
	if start < 0 {
		return nil, fmt.Errorf("response contains no json document")
	}
	return body[start:], nil
}
