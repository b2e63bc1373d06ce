package services

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshXPIsFullRecompute(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	putUser(t, store, "alice", "", 9999)
	putDaily(t, store, "2024-05-08", "A", "a", done("alice", "bob"))
	putDaily(t, store, "2024-05-09", "B", "b", map[string]types.AttributeValue{
		// typed flag stored as a plain document
		"alice": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{"BOOL": Bool(true)}},
	})
	putDaily(t, store, "2024-05-10", "C", "c", map[string]types.AttributeValue{"alice": Bool(false)})
	putDaily(t, store, "2024-05-01", "D", "d", nil)

	xp := NewXPService(store, testTables)

	first, err := xp.RefreshXP(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, int64(400), first.NewXP)
	assert.Equal(t, 2, first.CompletedDays)
	assert.Equal(t, int64(400), userXP(t, store, "alice"))

	second, err := xp.RefreshXP(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(400), userXP(t, store, "alice"))
}

func TestRefreshXPCreatesUserRecord(t *testing.T) {
	store := newTestStore()
	putDaily(t, store, "2024-05-10", "C", "c", done("carol"))

	res, err := NewXPService(store, testTables).RefreshXP(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, int64(200), res.NewXP)
	assert.Equal(t, int64(200), userXP(t, store, "carol"))
}

func TestRefreshXPReportsScanFailure(t *testing.T) {
	store := &flakyStore{RecordStore: newTestStore(), failScanTable: testTables.Daily}

	res, err := NewXPService(store, testTables).RefreshXP(context.Background(), "alice")
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "scan throttled")
}
