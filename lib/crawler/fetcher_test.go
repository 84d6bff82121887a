package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type dumpOutput struct {
	mu    sync.Mutex
	dumps map[string]string
}

func (o *dumpOutput) Write(id string, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dumps[id] = contents
}

func debugLogging(t *testing.T) *strings.Builder {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var logs strings.Builder
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &logs
}

func TestRestyFetcherDebugOutput(t *testing.T) {
	logs := debugLogging(t)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Sops-Final-Url", "https://www.wholefoodsmarket.com/")
		w.Write([]byte("<html></html>"))
	})

	output := &dumpOutput{dumps: map[string]string{}}
	fetcher := NewRestyFetcher(RestyOptions{
		DebugOutput:    output,
		FinalURLHeader: "Sops-Final-Url",
	})

	res, err := fetcher.Fetch(context.Background(), GET(srv.URL+"/v1/?api_key=secret-key&url=home"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "https://www.wholefoodsmarket.com/", res.URL)
	require.Equal(t, "<html></html>", string(res.Body))

	require.Len(t, output.dumps, 1)
	dump := output.dumps["http-1.txt"]
	require.Contains(t, dump, "---- RESPONSE ----")
	require.Contains(t, dump, "<html></html>")
	require.NotContains(t, dump, "secret-key")
	require.NotContains(t, logs.String(), "secret-key")
}

func TestEngineDebugOutput(t *testing.T) {
	debugLogging(t)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	output := &dumpOutput{dumps: map[string]string{}}
	spider := &testSpider{start: []*Request{
		request(srv.URL+"/a", "a", 1),
		request(srv.URL+"/b", "b", 1),
	}}
	engine := New(Options{Fetcher: NewRestyFetcher(RestyOptions{DebugOutput: output})})
	require.NoError(t, engine.Run(context.Background(), spider))

	require.ElementsMatch(t, []string{"a", "b"}, spider.handled)
	require.Len(t, output.dumps, 2)
}

func TestRestyFetcherRedactsTransportErrors(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	addr := srv.URL
	srv.Close()

	fetcher := NewRestyFetcher(RestyOptions{})
	_, err := fetcher.Fetch(context.Background(), GET(addr+"/v1/?api_key=secret-key"))
	require.Error(t, err)
	require.NotContains(t, err.Error(), "secret-key")
}
