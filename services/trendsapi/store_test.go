package trendsapi

import (
	"context"
	"net/url"
	"testing"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/sqliteutil"
	apidb "github.com/Noureddine-Aitelhaj/pytrends-cli/services/trendsapi/db"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	db, err := sqliteutil.OpenDB(apidb.Schema, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	err = store.Record(ctx, "/trends/suggestions", url.Values{"keyword": {"golang"}}, map[string]any{
		"status": "success",
	})
	require.NoError(t, err)
	err = store.Record(ctx, "/autocomplete", url.Values{"keyword": {"rust"}}, map[string]any{
		"status": "success",
	})
	require.NoError(t, err)

	records, err := store.Recent(ctx, "/trends/suggestions", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "/trends/suggestions", records[0].Endpoint)
	require.Equal(t, "keyword=golang", records[0].Params)
	require.Contains(t, records[0].Payload, "success")
	require.False(t, records[0].CreatedAt.IsZero())

	records, err = store.Recent(ctx, "/unknown", 10)
	require.NoError(t, err)
	require.Empty(t, records)
}
