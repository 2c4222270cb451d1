package status

import (
	"context"
	"testing"
	"time"

	"autotasking/pkg/daykey"
	"autotasking/pkg/errutil"
	"autotasking/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

var noon = time.Date(2024, 5, 1, 6, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, Models()...)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParams{DB: db, Node: node})
	svc.now = func() time.Time { return noon }
	return svc, db
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestSetStatusIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	first, err := svc.SetStatus(ctx, Reddit, "intern-1", "dest-1", true)
	require.NoError(t, err)
	second, err := svc.SetStatus(ctx, Reddit, "intern-1", "dest-1", true)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "dest-1", second.EntityID)
	require.Equal(t, daykey.Today(noon), second.TaskDate)
	require.True(t, second.Completed)
	require.NotNil(t, second.CompletedAt)
	require.EqualValues(t, 1, countRows(t, db, "reddit_task_status"))
}

func TestSetStatusUncheckClearsCompletedAt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, Facebook, "intern-1", "dest-1", true)
	require.NoError(t, err)

	svc.now = func() time.Time { return noon.Add(time.Minute) }
	rec, err := svc.SetStatus(ctx, Facebook, "intern-1", "dest-1", false)
	require.NoError(t, err)
	require.False(t, rec.Completed)
	require.Nil(t, rec.CompletedAt)
	require.True(t, rec.UpdatedAt.Equal(noon.Add(time.Minute)))
}

func TestSetStatusRequiresEntity(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SetStatus(context.Background(), YouTube, "intern-1", "  ", true)
	require.Error(t, err)
	require.Equal(t, errutil.StatusValidationFailed, errutil.CodeOf(err))
	require.Contains(t, err.Error(), "videoId")
}

func TestGetStatusReturnsTodayOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.now = func() time.Time { return noon.Add(-24 * time.Hour) }
	_, err := svc.SetStatus(ctx, YouTube, "intern-1", "video-old", true)
	require.NoError(t, err)

	svc.now = func() time.Time { return noon }
	_, err = svc.SetStatus(ctx, YouTube, "intern-1", "video-1", true)
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, YouTube, "intern-2", "video-1", true)
	require.NoError(t, err)

	items, err := svc.GetStatus(ctx, YouTube, "intern-1")
	require.NoError(t, err)
	require.Equal(t, []Item{{EntityID: "video-1", Completed: true}}, items)
}

func TestPlatformsAreIsolated(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, Reddit, "intern-1", "dest-1", true)
	require.NoError(t, err)

	items, err := svc.GetStatus(ctx, Facebook, "intern-1")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCompletedByIntern(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, dest := range []string{"d1", "d2"} {
		_, err := svc.SetStatus(ctx, Reddit, "intern-1", dest, true)
		require.NoError(t, err)
	}
	_, err := svc.SetStatus(ctx, Reddit, "intern-2", "d1", false)
	require.NoError(t, err)

	done, err := svc.CompletedByIntern(ctx, Reddit, daykey.Today(noon))
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"intern-1": 2}, done)
}

func TestUnknownPlatform(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetStatus(context.Background(), Platform("tiktok"), "intern-1")
	require.Error(t, err)
}
