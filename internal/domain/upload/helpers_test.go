package upload_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"photoshare/internal/database"
	"photoshare/internal/domain/upload"
	"photoshare/internal/pkg/blob"
	"photoshare/internal/pkg/secretcode"
)

// pngBytes is a valid PNG signature followed by an IHDR chunk header.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	db      *gorm.DB
	repo    upload.Repository
	fs      afero.Fs
	blobs   *blob.Store
	clock   *fakeClock
	service *upload.Service
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	override string
	maxSize  int64
	log      *zap.Logger
}

func withOverride(code string) fixtureOption {
	return func(c *fixtureConfig) { c.override = code }
}

func withMaxSize(n int64) fixtureOption {
	return func(c *fixtureConfig) { c.maxSize = n }
}

func withLogger(log *zap.Logger) fixtureOption {
	return func(c *fixtureConfig) { c.log = log }
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, t.Name())
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	require.NoError(t, upload.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	db := testDB(t)
	fs := afero.NewMemMapFs()
	blobs := blob.NewStore(fs)
	clock := newClock(time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC))
	repo := upload.NewRepository(db)
	svc := upload.NewService(repo, blobs, secretcode.NewAuthorizer(cfg.override, cfg.log), cfg.log, upload.Options{
		MaxFileSize: cfg.maxSize,
		HashCost:    bcrypt.MinCost,
		Now:         clock.Now,
	})

	return &fixture{db: db, repo: repo, fs: fs, blobs: blobs, clock: clock, service: svc}
}

// fileHeader builds a multipart file header the way net/http parses one.
func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func createInput(t *testing.T, title string) upload.CreateInput {
	t.Helper()
	return upload.CreateInput{
		File:         fileHeader(t, "photo.png", "image/png", pngBytes),
		Title:        title,
		UploaderName: "Ana",
	}
}

func (f *fixture) create(t *testing.T, in upload.CreateInput) *upload.CreateResult {
	t.Helper()
	res, err := f.service.Create(context.Background(), in)
	require.NoError(t, err)
	return res
}

func (f *fixture) get(t *testing.T, id uint64) *upload.Upload {
	t.Helper()
	u, err := f.service.Get(context.Background(), id)
	require.NoError(t, err)
	return u
}

// flakyRepo fails selected calls and delegates everything else.
type flakyRepo struct {
	upload.Repository
	createErr  error
	deleteFail map[uint64]error
	lastCreate *upload.Upload
}

func (r *flakyRepo) Create(ctx context.Context, u *upload.Upload) error {
	r.lastCreate = u
	if r.createErr != nil {
		return r.createErr
	}
	return r.Repository.Create(ctx, u)
}

func (r *flakyRepo) Delete(ctx context.Context, id uint64) error {
	if err, ok := r.deleteFail[id]; ok {
		return err
	}
	return r.Repository.Delete(ctx, id)
}

func blobExists(t *testing.T, f *fixture, name string) bool {
	t.Helper()
	ok, err := afero.Exists(f.fs, name)
	require.NoError(t, err)
	return ok
}
