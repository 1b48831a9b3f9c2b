package metrics

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net"
	"net/http"
	"testing"
)

func Test_StartMetricsServer_Disabled(t *testing.T) {
	addr, err := StartMetricsServer("")
	assert.NoError(t, err)
	assert.Nil(t, addr)
}

func Test_StartMetricsServer_ServesMetrics(t *testing.T) {
	addr, err := StartMetricsServer("127.0.0.1:0")
	require.NoError(t, err)

	PollsCounter.WithLabelValues("empty").Inc()

	resp, err := http.Get("http://" + addr.String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `bot_polls_total{result="empty"}`)
}

func Test_StartMetricsServer_PortInUse_ReturnsError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	addr, err := StartMetricsServer(busy.Addr().String())
	assert.Error(t, err)
	assert.Nil(t, addr)
}
