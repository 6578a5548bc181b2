package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := NewRecorder(reg)
	require.NoError(t, err)

	recorder.Mutation("cart", "add", "success")
	recorder.Mutation("cart", "add", "success")
	recorder.Mutation("cart", "update", "rejected")

	assert.Equal(t, float64(2), testutil.ToFloat64(recorder.Mutations().WithLabelValues("cart", "add", "success")))
	expected := `
# HELP storefront_store_mutations_total Store mutations by store, operation and result.
# TYPE storefront_store_mutations_total counter
storefront_store_mutations_total{operation="add",result="success",store="cart"} 2
storefront_store_mutations_total{operation="update",result="rejected",store="cart"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "storefront_store_mutations_total"))
}

func TestRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)

	assert.Error(t, err)
}
