package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAuthAttempt(t *testing.T) {
	before := testutil.ToFloat64(authAttempts.WithLabelValues(OutcomeRejected))

	RecordAuthAttempt(OutcomeRejected)

	assert.InDelta(t, before+1, testutil.ToFloat64(authAttempts.WithLabelValues(OutcomeRejected)), 0)
}

func TestRecordTokenVerification(t *testing.T) {
	before := testutil.ToFloat64(tokenVerifications.WithLabelValues(OutcomeSuccess))

	RecordTokenVerification(OutcomeSuccess)

	assert.InDelta(t, before+1, testutil.ToFloat64(tokenVerifications.WithLabelValues(OutcomeSuccess)), 0)
}

func TestRecordStoreWrite(t *testing.T) {
	okBefore := testutil.ToFloat64(storeWrites.WithLabelValues("review", OutcomeSuccess))
	errBefore := testutil.ToFloat64(storeWrites.WithLabelValues("review", OutcomeError))

	RecordStoreWrite("review", nil)
	RecordStoreWrite("review", errors.New("boom"))

	assert.InDelta(t, okBefore+1, testutil.ToFloat64(storeWrites.WithLabelValues("review", OutcomeSuccess)), 0)
	assert.InDelta(t, errBefore+1, testutil.ToFloat64(storeWrites.WithLabelValues("review", OutcomeError)), 0)
}
