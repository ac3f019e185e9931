package cfgctx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCfgMapRoundTrip(t *testing.T) {
	ctx := NewEngineContext(0)
	ctx.CfgMap.Set("mode", "block")
	ctx.CfgMap.Set("threshold", "10")

	data, err := ctx.DumpCfgMap()
	require.NoError(t, err)

	fresh := NewEngineContext(0)
	require.NoError(t, fresh.LoadCfgMap(data))

	v, ok := fresh.CfgMap.Get("mode")
	require.True(t, ok)
	require.Equal(t, "block", v)

	v, ok = fresh.CfgMap.Get("threshold")
	require.True(t, ok)
	require.Equal(t, "10", v)
}

func TestLoadCfgMapRejectsMalformedJSON(t *testing.T) {
	ctx := NewEngineContext(0)
	err := ctx.LoadCfgMap([]byte("not json"))
	require.Error(t, err)
}
