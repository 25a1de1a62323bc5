// Package sinks holds optional consumers of handoff events that copy new
// directory records to external systems.
package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/handoff"
)

// DefaultSearchIndex is the Elasticsearch index for directory records.
const DefaultSearchIndex = "murmax-directory"

// SearchIndexer indexes each handed-off record so the marketplace can be
// searched outside the service. The record id is the document id, so a
// redelivered event overwrites rather than duplicates.
type SearchIndexer struct {
	es     esapi.Transport
	index  string
	logger logger.Logger
}

func NewSearchIndexer(es esapi.Transport, index string, log logger.Logger) *SearchIndexer {
	if index == "" {
		index = DefaultSearchIndex
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SearchIndexer{es: es, index: index, logger: logger.Component(log, "search-indexer")}
}

func (s *SearchIndexer) Name() string { return "search-index" }

type searchDocument struct {
	directory.Record
	DisplayName   string    `json:"displayName"`
	ApplicationID string    `json:"applicationId"`
	IndexedAt     time.Time `json:"indexedAt"`
}

func (s *SearchIndexer) Consume(ctx context.Context, ev handoff.Event) error {
	body, err := json.Marshal(searchDocument{
		Record:        ev.Record,
		DisplayName:   ev.Record.DisplayName(),
		ApplicationID: ev.Application.ID(),
		IndexedAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode search document %s: %w", ev.Record.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: ev.Record.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("index %s: %w", ev.Record.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index %s failed: %s", ev.Record.ID, res.String())
	}

	s.logger.Debug("directory record indexed", map[string]interface{}{
		"index":    s.index,
		"recordId": ev.Record.ID,
	})
	return nil
}
