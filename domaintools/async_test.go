package domaintools

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robd518/pyapiary/broker"
)

func newTestAsyncClient(t *testing.T, baseURL string) *AsyncClient {
	t.Helper()
	c, err := NewAsync("test-key", broker.WithBaseURL(baseURL))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestNewAsync_RejectsMounts(t *testing.T) {
	_, err := NewAsync("test-key",
		broker.WithMounts(map[string]http.RoundTripper{"http://": broker.DefaultTransport()}),
	)
	var ce *broker.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestNewAsync_MissingAPIKey(t *testing.T) {
	_, err := NewAsync("")
	var ce *broker.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestAsyncParsedWhois(t *testing.T) {
	srv, rec := newRecordingServer(t, `{}`)
	c := newTestAsyncClient(t, srv.URL)

	res := <-c.ParsedWhois(context.Background(), "example.com")
	require.NoError(t, res.Err)
	_ = res.Response.Body.Close()

	assert.Equal(t, "/v1/example.com/whois/parsed", rec.Path)
	assert.Equal(t, "test-key", rec.APIKey)
}

func TestAsyncIrisInvestigate_ValidationResolvesImmediately(t *testing.T) {
	srv, rec := newRecordingServer(t, `{}`)
	c := newTestAsyncClient(t, srv.URL)

	res := <-c.IrisInvestigate(context.Background(), map[string]string{"bogus": "1"})
	var ve *broker.ValidationError
	require.ErrorAs(t, res.Err, &ve)
	assert.Equal(t, []string{"bogus"}, ve.Names)
	assert.Empty(t, rec.Path)
}

func TestAsyncIrisInvestigate_ForwardsParams(t *testing.T) {
	srv, rec := newRecordingServer(t, `{}`)
	c := newTestAsyncClient(t, srv.URL)

	res := <-c.IrisInvestigate(context.Background(), map[string]string{"domain": "example.com"})
	require.NoError(t, res.Err)
	_ = res.Response.Body.Close()

	assert.Equal(t, "/v1/iris-investigate", rec.Path)
	assert.Equal(t, []string{"example.com"}, rec.Query["domain"])
}
