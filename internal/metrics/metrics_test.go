package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessmentsCounter(t *testing.T) {
	before := testutil.ToFloat64(Assessments.WithLabelValues(EventStarted))
	Assessments.WithLabelValues(EventStarted).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Assessments.WithLabelValues(EventStarted)))
}

func TestRegistryExposesCollectors(t *testing.T) {
	Answers.Inc()
	n, err := testutil.GatherAndCount(Registry, "odmat_answers_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = testutil.GatherAndCompare(Registry, strings.NewReader(""), "odmat_no_such_metric")
	assert.NoError(t, err)
}
