package restyutil

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type recordingOutput struct {
	mu    sync.Mutex
	dumps []string
}

func (o *recordingOutput) Write(id string, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dumps = append(o.dumps, contents)
}

func TestFormatRequestBodyNilReader(t *testing.T) {
	// body-less requests can carry a GetBody that yields a nil reader
	req := &http.Request{
		GetBody: func() (io.ReadCloser, error) { return nil, nil },
	}
	require.Equal(t, "", formatRequestBody(req))
}

func TestFormatRequestBodyMissingGetBody(t *testing.T) {
	require.Equal(t, "", formatRequestBody(&http.Request{}))
}

func TestFormatRequestBody(t *testing.T) {
	req, err := http.NewRequest("POST", "http://localhost", strings.NewReader("hello"))
	require.NoError(t, err)
	require.Equal(t, "hello", formatRequestBody(req))
}

func TestInstrumentedGetWithDebugLogging(t *testing.T) {
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(
		io.Discard,
		&slog.HandlerOptions{Level: slog.LevelDebug},
	)))
	defer slog.SetDefault(previous)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	output := &recordingOutput{}
	client := resty.New()
	InstrumentClient(client, nil, output)

	res, err := client.R().Get(server.URL)
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode())

	require.Len(t, output.dumps, 1)
	require.Contains(t, output.dumps[0], "---- REQUEST ----")
	require.Contains(t, output.dumps[0], "GET "+server.URL)
	require.Contains(t, output.dumps[0], "ok")
}
