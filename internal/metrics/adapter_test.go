package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAdapterMetrics_RecordOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAdapterMetrics(reg)

	m.RecordOutcome("write", ResultOK)
	m.RecordOutcome("write", ResultOK)
	m.RecordOutcome("read", ResultNotFound)
	m.RecordOutcome("copy", ResultFailed)

	expected := `
# HELP bucketfs_adapter_operations_total Total number of filesystem operations, broken down by operation and result.
# TYPE bucketfs_adapter_operations_total counter
bucketfs_adapter_operations_total{operation="copy",result="failed"} 1
bucketfs_adapter_operations_total{operation="read",result="not_found"} 1
bucketfs_adapter_operations_total{operation="write",result="ok"} 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "bucketfs_adapter_operations_total"); err != nil {
		t.Error(err)
	}
}
