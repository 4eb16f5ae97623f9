package yamlv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Build(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	opts := DefaultParseOptions()
	opts.Metrics = NewMetrics(reg)

	_, err := ParseAll(strings.NewReader("a: &x [1, yes, 2.5]\nb: *x\n---\nplain\n"), opts)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(opts.Metrics.documentsBuilt))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.aliasesResolved))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.scalarsResolved.WithLabelValues("int")))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.scalarsResolved.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.scalarsResolved.WithLabelValues("float")))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.scalarsResolved.WithLabelValues("string")))

	_, err = ParseAll(strings.NewReader("a: *missing\n"), opts)
	require.Error(t, err)
	_, err = ParseDocument(strings.NewReader("only\n"), 4, opts)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.failures.WithLabelValues("build", "stream")))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.failures.WithLabelValues("build", "no_document")))
}

func TestMetrics_Walk(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	opts := DefaultEmitOptions()
	opts.Metrics = NewMetrics(reg)

	var buf bytes.Buffer
	require.NoError(t, EmitAll(&buf, []*Value{Int(1), Int(2)}, opts))
	assert.Equal(t, 2.0, testutil.ToFloat64(opts.Metrics.documentsWalked))

	_, err := Plan(Opaque(struct{}{}), opts)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.failures.WithLabelValues("walk", "unsupported_kind")))

	n, err := testutil.GatherAndCount(reg, "yamlv_documents_walked_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.documentBuilt()
		m.documentWalked()
		m.scalarResolved(ClassInt)
		m.aliasResolved()
		m.failed("build", ErrFilterFailed)
	})
}
