// Package store writes metric records into an OpenSearch-compatible
// document store, upserting by record identity so that reruns overwrite
// instead of duplicating.
package store

import (
	"crypto/tls"
	"net/http"
	"time"

	opensearch "github.com/opensearch-project/opensearch-go/v2"

	"github.com/Bitergia/grimoirelab-metrics/common"
)

// DefaultTimeout bounds one bulk write against the store.
const DefaultTimeout = 30 * time.Second

// maxRetries is the transport-level retry budget. Retrying is the
// client collaborator's policy, never the indexer's.
const maxRetries = 3

// Options carry everything needed to reach one store endpoint.
type Options struct {
	URL         string
	Username    string
	Password    string
	VerifyCerts bool
}

// NewClient connects to the document store. Credentials and endpoint
// come from the surrounding config layer; the pipeline core only ever
// sees the connected client.
func NewClient(options Options) (*opensearch.Client, error) {
	common.Trace("Connecting to document store at %q", options.URL)
	return opensearch.NewClient(opensearch.Config{
		Addresses: []string{options.URL},
		Username:  options.Username,
		Password:  options.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: !options.VerifyCerts},
		},
		MaxRetries:          maxRetries,
		RetryOnStatus:       []int{502, 503, 504},
		CompressRequestBody: true,
	})
}
