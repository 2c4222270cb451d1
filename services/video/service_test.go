package video

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

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

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	signFn  func(key string) (string, error)
	removed []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; ok {
		return errutil.Conflict("object already exists", nil)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) SignedURL(_ context.Context, key string) (string, error) {
	if f.signFn != nil {
		return f.signFn(key)
	}
	return "https://objects.test/" + key, nil
}

func (f *fakeStore) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

var noon = time.Date(2024, 5, 1, 6, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeStore, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, &Video{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store := newFakeStore()
	svc := NewService(ServiceParams{DB: db, Node: node})
	svc.store = store
	svc.now = func() time.Time { return noon }
	return svc, store, db
}

func upload(destID, title, name string) UploadRequest {
	return UploadRequest{
		DestinationID: destID,
		Title:         title,
		Description:   "Weekly recap",
		FileName:      name,
		ContentType:   "video/mp4",
		Size:          4,
		Body:          bytes.NewReader([]byte("data")),
	}
}

func TestObjectKey(t *testing.T) {
	require.Equal(t, "youtube/d1/1714545000000_my-launch-video.mp4", ObjectKey("d1", "My Launch Video!.MP4", noon))
	require.Equal(t, "youtube/d1/1714545000000_video", ObjectKey("d1", "", noon))
	require.Equal(t, "youtube/d1/1714545000000_passwd", ObjectKey("d1", "../../etc/passwd", noon))
}

func TestUploadStoresObjectAndRow(t *testing.T) {
	svc, store, _ := newTestService(t)

	v, err := svc.Upload(context.Background(), upload(" d1 ", " Launch ", "launch.mp4"))
	require.NoError(t, err)
	require.Equal(t, "d1", v.DestinationID)
	require.Equal(t, "Launch", v.Title)
	require.Equal(t, ObjectKey("d1", "launch.mp4", noon), v.FilePath)
	require.Equal(t, []byte("data"), store.objects[v.FilePath])
}

func TestUploadValidation(t *testing.T) {
	svc, store, _ := newTestService(t)

	req := upload("d1", "", "a.mp4")
	_, err := svc.Upload(context.Background(), req)
	require.Equal(t, errutil.StatusValidationFailed, errutil.CodeOf(err))

	req = upload("d1", "t", "a.mp4")
	req.Body = nil
	_, err = svc.Upload(context.Background(), req)
	require.Equal(t, errutil.StatusValidationFailed, errutil.CodeOf(err))
	require.Empty(t, store.objects)
}

func TestUploadDoesNotOverwrite(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), upload("d1", "t", "a.mp4"))
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), upload("d1", "t", "a.mp4"))
	require.Equal(t, errutil.StatusConflict, errutil.CodeOf(err))
}

func TestUploadRemovesObjectWhenInsertFails(t *testing.T) {
	svc, store, db := newTestService(t)
	require.NoError(t, db.Migrator().DropTable(&Video{}))

	_, err := svc.Upload(context.Background(), upload("d1", "t", "a.mp4"))
	require.Equal(t, errutil.StatusStore, errutil.CodeOf(err))
	require.Empty(t, store.objects)
	require.Equal(t, []string{ObjectKey("d1", "a.mp4", noon)}, store.removed)
}

func TestListSignsNewestFirst(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, upload("d1", "old", "a.mp4"))
	require.NoError(t, err)
	svc.now = func() time.Time { return noon.Add(time.Minute) }
	_, err = svc.Upload(ctx, upload("d1", "new", "b.mp4"))
	require.NoError(t, err)

	store.signFn = func(key string) (string, error) {
		if key == ObjectKey("d1", "a.mp4", noon) {
			return "", errors.New("sign failed")
		}
		return "https://objects.test/" + key, nil
	}

	out, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "new", out[0].Title)
	require.NotNil(t, out[0].DownloadURL)
	require.Equal(t, "old", out[1].Title)
	require.Nil(t, out[1].DownloadURL)
}

func TestDelete(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Upload(ctx, upload("d1", "t", "a.mp4"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, v.ID))
	require.Empty(t, store.objects)

	err = svc.Delete(ctx, v.ID)
	require.Equal(t, errutil.StatusNotFound, errutil.CodeOf(err))

	err = svc.Delete(ctx, " ")
	require.Equal(t, errutil.StatusValidationFailed, errutil.CodeOf(err))
}

func TestCountCreatedBetween(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, upload("d1", "t", "a.mp4"))
	require.NoError(t, err)
	svc.now = func() time.Time { return noon.Add(-24 * time.Hour) }
	_, err = svc.Upload(ctx, upload("d1", "t", "b.mp4"))
	require.NoError(t, err)

	n, err := svc.CountCreatedBetween(ctx, noon.Add(-time.Hour), noon.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
