package gsearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const samplePage = `<html><body>
<div class="g">
  <a href="https://example.com/one"><h3>First Result</h3></a>
  <div class="VwiC3b">the first description</div>
</div>
<div class="g">
  <a href="/relative/link"><h3>Internal Link</h3></a>
</div>
<div class="g">
  <a href="https://example.com/two"><h3>Second Result</h3></a>
  <div data-sncf="1">the second description</div>
</div>
<div class="g">
  <a href="https://example.com/untitled"></a>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	results, err := parseResults([]byte(samplePage))
	require.NoError(t, err)
	require.Equal(t, []Result{
		{Title: "First Result", URL: "https://example.com/one", Description: "the first description"},
		{Title: "Second Result", URL: "https://example.com/two", Description: "the second description"},
	}, results)
}

func TestSearchStopsOnEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "test-agent", r.Header.Get("user-agent"))
		if r.URL.Query().Get("start") == "0" {
			fmt.Fprint(w, samplePage)
			return
		}
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	client.UserAgent = "test-agent"

	results, err := client.Search(context.Background(), "example", Options{NumResults: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestSearchTrimsToRequestedCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, samplePage)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	client.UserAgent = "test-agent"

	results, err := client.Search(context.Background(), "example", Options{NumResults: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "First Result", results[0].Title)
}

func TestSearchConcurrentTimeouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "0" {
			fmt.Fprint(w, samplePage)
			return
		}
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	client.UserAgent = "test-agent"

	// searches with different timeouts share one client, none may
	// observe another's deadline
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := client.Search(context.Background(), "example", Options{
				NumResults: 2,
				Timeout:    time.Duration(i+1) * time.Second,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestSearchTimeoutPerFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, samplePage)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	client.UserAgent = "test-agent"

	_, err := client.Search(context.Background(), "example", Options{
		Timeout: 10 * time.Millisecond,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearchRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	client.UserAgent = "test-agent"

	_, err := client.Search(context.Background(), "example", Options{})
	require.ErrorContains(t, err, "rate limited")
}
