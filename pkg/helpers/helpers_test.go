package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerToFormats(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	var buf bytes.Buffer
	prod := NewLoggerTo(&buf, "user-accounts", "production")
	assert.Equal(t, logrus.InfoLevel, prod.GetLevel())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "user-accounts", line["app"])

	dev := NewLoggerTo(io.Discard, "user-accounts", "development")
	assert.Equal(t, logrus.DebugLevel, dev.GetLevel())
}

func TestNewLoggerToLevelOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	assert.Equal(t, logrus.WarnLevel, NewLoggerTo(io.Discard, "x", "development").GetLevel())
}

type esStatus int

func (s esStatus) RoundTrip(*http.Request) (*http.Response, error) {
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{StatusCode: int(s), Header: h, Body: io.NopCloser(strings.NewReader(`{}`))}, nil
}

func TestPingES(t *testing.T) {
	ok, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{"http://es.test:9200"}, Transport: esStatus(http.StatusOK)})
	require.NoError(t, err)
	assert.NoError(t, PingES(context.Background(), ok))

	down, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{"http://es.test:9200"}, Transport: esStatus(http.StatusServiceUnavailable)})
	require.NoError(t, err)
	assert.Error(t, PingES(context.Background(), down))
}

func TestNewESClientNeedsAddress(t *testing.T) {
	_, err := NewESClient(nil, "", "")
	assert.Error(t, err)

	es, err := NewESClient([]string{"http://localhost:9200"}, "elastic", "secret")
	require.NoError(t, err)
	assert.NotNil(t, es)
}
