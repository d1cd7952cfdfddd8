// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels prometheus.Labels) float64 {
	t.Helper()
	m, err := vec.GetMetricWith(labels)
	require.NoError(t, err)
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	return out.GetCounter().GetValue()
}

func TestCollector_OnPostIncrementsPerOpcode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.OnPost(rbroker.Put)
	c.OnPost(rbroker.Put)
	c.OnPost(rbroker.Get)

	assert.Equal(t, float64(2), counterValue(t, c.posts, prometheus.Labels{"opcode": "put"}))
	assert.Equal(t, float64(1), counterValue(t, c.posts, prometheus.Labels{"opcode": "get"}))
}

func TestCollector_OnCompleteIncrementsByOpcodeAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.OnComplete(rbroker.Put, rbroker.Success)
	c.OnComplete(rbroker.Put, rbroker.ErrUBuffer)

	assert.Equal(t, float64(1), counterValue(t, c.completes, prometheus.Labels{"opcode": "put", "status": "success"}))
	assert.Equal(t, float64(1), counterValue(t, c.completes, prometheus.Labels{"opcode": "put", "status": "err_ubuffer"}))
}

func TestNewCollector_NilRegistererUsesDefault(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = NewCollector(nil)
	})
}
