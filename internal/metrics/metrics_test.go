package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAuthOperation(t *testing.T) {
	before := testutil.ToFloat64(AuthOperations.WithLabelValues("login", "success"))
	RecordAuthOperation("login", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(AuthOperations.WithLabelValues("login", "success")))
}

func TestRecordHTTPRequest(t *testing.T) {
	RecordHTTPRequest("POST", "/user/login", "200", 15*time.Millisecond)
	assert.Positive(t, testutil.CollectAndCount(HTTPRequestDuration))
}
