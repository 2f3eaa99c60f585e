package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-ddd-user-accounts/internal/application"
	"github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/events"
)

// UserIndex mirrors active users into an Elasticsearch index. The event worker
// writes it; UserService reads it through Search.
type UserIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{es: es, index: index}
}

const userMapping = `{
  "mappings": {
    "properties": {
      "id":    {"type": "long"},
      "email": {"type": "text", "fields": {"keyword": {"type": "keyword"}}}
    }
  }
}`

// EnsureIndex creates the index with the user mapping unless it exists.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(ctx, x.es)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: x.index, Body: strings.NewReader(userMapping)}.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("search: create index %s: %s", x.index, res.Status())
	}
	return nil
}

// classify marks 4xx rejections permanent. 408 and 429 are worth retrying.
func classify(status int, err error) error {
	if status >= 400 && status < 500 && status != http.StatusRequestTimeout && status != http.StatusTooManyRequests {
		return events.Permanent(err)
	}
	return err
}

// Apply brings the index in line with one user event.
func (x *UserIndex) Apply(ctx context.Context, evt application.UserEvent) error {
	switch evt.Type {
	case application.UserCreated, application.UserUpdated:
		return x.Index(ctx, application.UserDTO{ID: evt.UserID, Email: evt.Email})
	case application.UserDeleted:
		return x.Delete(ctx, evt.UserID)
	default:
		return events.Permanent(fmt.Errorf("search: unknown event type %q", evt.Type))
	}
}

func (x *UserIndex) Index(ctx context.Context, dto application.UserDTO) error {
	b, err := json.Marshal(dto)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: strconv.FormatInt(dto.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return classify(res.StatusCode, fmt.Errorf("search: index user %d: %s", dto.ID, res.Status()))
	}
	return nil
}

// Delete removes the user's document. A missing document is not an error.
func (x *UserIndex) Delete(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: strconv.FormatInt(id, 10)}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return classify(res.StatusCode, fmt.Errorf("search: delete user %d: %s", id, res.Status()))
	}
	return nil
}

// Search performs a match query on email.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]application.UserDTO, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search: query users: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source application.UserDTO `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]application.UserDTO, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ application.UserSearcher = (*UserIndex)(nil)
