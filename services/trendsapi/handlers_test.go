package trendsapi

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoolParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/trends/interest-by-region?inc_low_vol=FALSE&inc_geo_code=TRUE", nil)

	// parsing is case insensitive, absent params take the fallback
	require.False(t, boolParam(r, "inc_low_vol", true))
	require.True(t, boolParam(r, "inc_geo_code", false))
	require.True(t, boolParam(r, "missing", true))
	require.False(t, boolParam(r, "missing", false))
}
