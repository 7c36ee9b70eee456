package feature

import (
	"time"

	"github.com/viant/wfsync/layer"
)

// Payload is the body of one GetFeature response.
type Payload struct {
	// URI is the request that produced the payload.
	URI string
	// Layer is the layer the payload belongs to.
	Layer layer.ID
	// Incremental marks a changeset payload.
	Incremental bool
	// ContentType is the response content type as reported by the server.
	ContentType string
	// Body is the raw response body.
	Body []byte
	// FetchedAt is when the response was received.
	FetchedAt time.Time
}

// Size returns the body length in bytes.
func (p *Payload) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Body)
}
