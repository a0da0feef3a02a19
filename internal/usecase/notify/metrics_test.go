package notify

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSuccessAndFailure(t *testing.T) {
	const channel = "metrics-test"

	beforeOK := testutil.ToFloat64(notificationSentTotal.WithLabelValues(channel, "success"))
	beforeFail := testutil.ToFloat64(notificationSentTotal.WithLabelValues(channel, "failure"))

	RecordSuccess(channel, 100*time.Millisecond)
	RecordFailure(channel, time.Second)
	RecordFailure(channel, time.Second)

	if got := testutil.ToFloat64(notificationSentTotal.WithLabelValues(channel, "success")) - beforeOK; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(notificationSentTotal.WithLabelValues(channel, "failure")) - beforeFail; got != 2 {
		t.Errorf("failure delta = %v, want 2", got)
	}
}

func TestRecordPendingResult(t *testing.T) {
	beforeSent := testutil.ToFloat64(pendingItemsTotal.WithLabelValues("sent"))
	beforeFailed := testutil.ToFloat64(pendingItemsTotal.WithLabelValues("failed"))

	RecordPendingResult(Result{Sent: 3, Failed: 1})
	RecordPendingResult(Result{})

	if got := testutil.ToFloat64(pendingItemsTotal.WithLabelValues("sent")) - beforeSent; got != 3 {
		t.Errorf("sent delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(pendingItemsTotal.WithLabelValues("failed")) - beforeFailed; got != 1 {
		t.Errorf("failed delta = %v, want 1", got)
	}
}

func TestSetChannelsEnabled(t *testing.T) {
	SetChannelsEnabled(3)
	if got := testutil.ToFloat64(channelsEnabled); got != 3 {
		t.Errorf("channels enabled = %v, want 3", got)
	}
}
