package outbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tuanvumaihuynh/stock-manager/pkg/correlationid"
	"github.com/tuanvumaihuynh/stock-manager/pkg/outbox"
)

func TestHeadersRoundTrip(t *testing.T) {
	ctx := correlationid.NewContext(context.Background(), "corr-1")

	headers := outbox.BuildHeaders(ctx)
	assert.Equal(t, "corr-1", headers[correlationid.Header])

	rec := &kgo.Record{}
	for k, v := range headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	got := outbox.ExtractContextFromHeaders(context.Background(), outbox.RecordHeaders(rec))
	id, ok := correlationid.FromContext(got)
	assert.True(t, ok)
	assert.Equal(t, "corr-1", id)
}

func TestBuildHeadersWithoutCorrelationID(t *testing.T) {
	headers := outbox.BuildHeaders(context.Background())
	_, ok := headers[correlationid.Header]
	assert.False(t, ok)
}
