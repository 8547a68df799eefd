package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/Bitergia/grimoirelab-metrics/common"
	"github.com/Bitergia/grimoirelab-metrics/metrics"
)

// DefaultIndex is the index metric records land in unless configured
// otherwise.
const DefaultIndex = "sbom-metrics"

// recordMapping types the identity and time fields explicitly. Numeric
// metric values go to "value", list values to "values", so one index
// holds both without dynamic-mapping conflicts.
const recordMapping = `{
  "mappings": {
    "properties": {
      "id": {"type": "keyword"},
      "document_id": {"type": "keyword"},
      "metric": {"type": "keyword"},
      "value": {"type": "double"},
      "values": {"type": "keyword"},
      "value_text": {"type": "keyword"},
      "truncated": {"type": "boolean"},
      "computed_at": {"type": "date"}
    }
  }
}`

// WriteFailure is one record the store did not accept.
type WriteFailure struct {
	ID     string `json:"id"`
	Metric string `json:"metric,omitempty"`
	Reason string `json:"reason"`
}

// WriteReport enumerates what one batch write attempted and how much of
// it the store accepted.
type WriteReport struct {
	Attempted int            `json:"attempted"`
	Accepted  int            `json:"accepted"`
	Failures  []WriteFailure `json:"failures,omitempty"`
	TimedOut  bool           `json:"timed_out,omitempty"`
}

// Indexer upserts metric records by identity. The store client is an
// explicit construction-time dependency so tests can point it at a
// fake endpoint.
type Indexer struct {
	client  opensearchapi.Transport
	index   string
	timeout time.Duration
}

func NewIndexer(client opensearchapi.Transport, index string, timeout time.Duration) *Indexer {
	if len(index) == 0 {
		index = DefaultIndex
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Indexer{
		client:  client,
		index:   index,
		timeout: timeout,
	}
}

// Write issues one bulk upsert for the records. Partial failure is
// reported per record; nothing is retried here.
func (it *Indexer) Write(ctx context.Context, records []metrics.Record) *WriteReport {
	report := &WriteReport{Attempted: len(records)}
	if len(records) == 0 {
		return report
	}
	defer common.Stopwatch("Bulk write of %d records took", len(records)).Report()

	body, err := bulkBody(it.index, records)
	if err != nil {
		return it.failAll(report, records, (&WriteError{Reason: "encoding records", Err: err}).Error())
	}

	bounded, cancel := context.WithTimeout(ctx, it.timeout)
	defer cancel()

	request := opensearchapi.BulkRequest{Body: bytes.NewReader(body)}
	response, err := request.Do(bounded, it.client)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			report.TimedOut = true
			return it.failAll(report, records, (&WriteTimeoutError{Err: err}).Error())
		}
		return it.failAll(report, records, (&WriteError{Reason: "bulk request", Err: err}).Error())
	}
	defer response.Body.Close()

	if response.IsError() {
		reason := (&WriteError{Reason: fmt.Sprintf("store returned status %d", response.StatusCode)}).Error()
		return it.failAll(report, records, reason)
	}
	return it.digest(report, records, response.Body)
}

// EnsureIndex creates the target index with the record mapping when it
// does not exist yet. Racing creators are tolerated.
func (it *Indexer) EnsureIndex(ctx context.Context) error {
	bounded, cancel := context.WithTimeout(ctx, it.timeout)
	defer cancel()

	exists := opensearchapi.IndicesExistsRequest{Index: []string{it.index}}
	response, err := exists.Do(bounded, it.client)
	if err != nil {
		return &WriteError{Reason: fmt.Sprintf("checking index %q", it.index), Err: err}
	}
	defer response.Body.Close()
	if response.StatusCode == 200 {
		return nil
	}

	common.Debug("Creating index %q", it.index)
	create := opensearchapi.IndicesCreateRequest{
		Index: it.index,
		Body:  strings.NewReader(recordMapping),
	}
	created, err := create.Do(bounded, it.client)
	if err != nil {
		return &WriteError{Reason: fmt.Sprintf("creating index %q", it.index), Err: err}
	}
	defer created.Body.Close()
	if created.IsError() && created.StatusCode != 400 {
		return &WriteError{Reason: fmt.Sprintf("creating index %q: status %d", it.index, created.StatusCode)}
	}
	return nil
}

func (it *Indexer) failAll(report *WriteReport, records []metrics.Record, reason string) *WriteReport {
	common.Error("indexer", errors.New(reason))
	for _, record := range records {
		report.Failures = append(report.Failures, WriteFailure{
			ID:     record.ID,
			Metric: string(record.Metric),
			Reason: reason,
		})
	}
	return report
}

type bulkItem struct {
	Index struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"index"`
}

type bulkResult struct {
	Errors bool       `json:"errors"`
	Items  []bulkItem `json:"items"`
}

func (it *Indexer) digest(report *WriteReport, records []metrics.Record, body io.Reader) *WriteReport {
	metricsById := make(map[string]string, len(records))
	for _, record := range records {
		metricsById[record.ID] = string(record.Metric)
	}

	result := bulkResult{}
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return it.failAll(report, records, (&WriteError{Reason: "undecodable bulk response", Err: err}).Error())
	}
	for _, item := range result.Items {
		if item.Index.Status < 300 {
			report.Accepted += 1
			continue
		}
		reason := fmt.Sprintf("status %d", item.Index.Status)
		if item.Index.Error != nil {
			reason = fmt.Sprintf("%s: %s", item.Index.Error.Type, item.Index.Error.Reason)
		}
		common.Error("indexer", &WriteError{Reason: reason})
		report.Failures = append(report.Failures, WriteFailure{
			ID:     item.Index.ID,
			Metric: metricsById[item.Index.ID],
			Reason: reason,
		})
	}
	return report
}

func bulkBody(index string, records []metrics.Record) ([]byte, error) {
	buffer := bytes.Buffer{}
	encoder := json.NewEncoder(&buffer)
	for _, record := range records {
		action := map[string]interface{}{
			"index": map[string]interface{}{
				"_index": index,
				"_id":    record.ID,
			},
		}
		if err := encoder.Encode(action); err != nil {
			return nil, err
		}
		if err := encoder.Encode(wireDocument(record)); err != nil {
			return nil, err
		}
	}
	return buffer.Bytes(), nil
}

// wireDocument routes the polymorphic record value into a typed field
// so the index mapping stays conflict free.
func wireDocument(record metrics.Record) map[string]interface{} {
	document := map[string]interface{}{
		"id":          record.ID,
		"document_id": record.DocumentID,
		"metric":      record.Metric,
		"computed_at": record.ComputedAt.Format(time.RFC3339),
	}
	switch value := record.Value.(type) {
	case []string:
		document["values"] = value
	case string:
		document["value_text"] = value
	default:
		document["value"] = value
	}
	if record.Truncated {
		document["truncated"] = true
	}
	return document
}
