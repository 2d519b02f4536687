package search

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport serves a canned response for every request.
type stubTransport struct {
	status int
	body   string
}

func (s *stubTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: s.status,
		Header: http.Header{
			"X-Elastic-Product": []string{"Elasticsearch"},
			"Content-Type":      []string{"application/json"},
		},
		Body: io.NopCloser(strings.NewReader(s.body)),
	}, nil
}

func newStubClient(t *testing.T, status int, body string) *elasticsearch.Client {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://elasticsearch:9200"},
		Transport: &stubTransport{status: status, body: body},
	})
	require.NoError(t, err)
	return client
}

func TestPhotos_DecodesHitSources(t *testing.T) {
	t.Parallel()

	es := newStubClient(t, http.StatusOK, `{
		"took": 3,
		"hits": {
			"total": {"value": 2, "relation": "eq"},
			"hits": [
				{"_index": "photos", "_id": "1", "_score": 1.7,
				 "_source": {"id": 1, "title": "Pier at dusk", "description": "Long exposure", "price": 12.5}},
				{"_index": "photos", "_id": "2", "_score": 0.9,
				 "_source": {"id": 2, "title": "Dunes", "price": 25}}
			]
		}
	}`)

	total, photos, err := Photos(context.Background(), es, "photos", "pier", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, photos, 2)
	assert.Equal(t, "Pier at dusk", photos[0].Title)
	assert.Equal(t, 12.5, photos[0].Price)
	assert.Equal(t, uint(2), photos[1].ID)
	assert.Equal(t, "Dunes", photos[1].Title)
}

func TestPhotos_NoMatches(t *testing.T) {
	t.Parallel()

	es := newStubClient(t, http.StatusOK, `{
		"hits": {"total": {"value": 0, "relation": "eq"}, "hits": []}
	}`)

	total, photos, err := Photos(context.Background(), es, "photos", "nothing", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, photos)
}

func TestPhotos_ErrorStatus(t *testing.T) {
	t.Parallel()

	es := newStubClient(t, http.StatusBadRequest, `{"error": {"type": "parsing_exception"}}`)

	_, _, err := Photos(context.Background(), es, "photos", "pier", 0, 10)
	require.Error(t, err)
}
