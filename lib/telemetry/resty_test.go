package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	return recorder
}

func spanValues(spans []sdktrace.ReadOnlySpan) []string {
	var values []string
	for _, span := range spans {
		values = append(values, span.Name(), span.Status().Description)
		for _, attr := range span.Attributes() {
			values = append(values, attr.Value.Emit())
		}
		for _, event := range span.Events() {
			for _, attr := range event.Attributes {
				values = append(values, attr.Value.Emit())
			}
		}
	}
	return values
}

func TestInstrumentRestyRedactsCredentials(t *testing.T) {
	recorder := recordSpans(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := resty.New()
	InstrumentResty(client, "test")

	_, err := client.R().
		SetContext(context.Background()).
		Get(srv.URL + "/v1/?api_key=secret-key&url=home")
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "http GET", spans[0].Name())

	values := spanValues(spans)
	found := false
	for _, v := range values {
		require.NotContains(t, v, "secret-key")
		if v == srv.URL+"/v1/?api_key=REDACTED&url=home" {
			found = true
		}
	}
	require.True(t, found, "redacted url attribute in %v", values)
}

func TestInstrumentRestyRedactsErrors(t *testing.T) {
	recorder := recordSpans(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client := resty.New()
	InstrumentResty(client, "test")

	_, err := client.R().
		SetContext(context.Background()).
		Get(addr + "/v1/?api_key=secret-key")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	for _, v := range spanValues(spans) {
		require.NotContains(t, v, "secret-key")
	}
}
