package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/geojournal/internal/apperr"
	"github.com/iudanet/geojournal/internal/models"
	"github.com/iudanet/geojournal/internal/server/events"
	"github.com/iudanet/geojournal/internal/server/storage/sqlite"
)

type memImages struct {
	putErr  error
	objects map[string][]byte
	mu      sync.Mutex
}

func newMemImages() *memImages {
	return &memImages{objects: make(map[string][]byte)}
}

func (m *memImages) Put(_ context.Context, key, _ string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = data
	return nil
}

func (m *memImages) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memImages) URL(origin, key string) string {
	return origin + "/uploads/" + key
}

func (m *memImages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type recordingPublisher struct {
	err    error
	events []events.Event
	mu     sync.Mutex
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	svc       *Service
	store     *sqlite.Storage
	images    *memImages
	publisher *recordingPublisher
}

func setupService(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	imgs := newMemImages()
	pub := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		svc:       NewService(logger, store, imgs, pub, Config{MaxUploadSize: 1 << 20}),
		store:     store,
		images:    imgs,
		publisher: pub,
	}
}

func (e *testEnv) createOwner(t *testing.T, name string) models.Owner {
	t.Helper()
	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        fmt.Sprintf("%s_%s@example.com", name, uuid.NewString()[:6]),
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u.Owner()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func validInput() Input {
	return Input{Title: "  Brandenburg Gate ", Description: "sunset", Latitude: "52.5163", Longitude: "13.3777"}
}

func TestService_Create(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	owner := env.createOwner(t, "alice")

	entry, err := env.svc.Create(ctx, owner, validInput(), &Upload{Filename: "a.png", Data: testPNG(t)}, "http://localhost:5000")
	require.NoError(t, err)

	assert.Equal(t, "Brandenburg Gate", entry.Title)
	assert.Equal(t, owner, entry.Owner)
	assert.Contains(t, entry.ImageURL, "http://localhost:5000/uploads/")
	assert.Equal(t, 1, env.images.count())
	assert.Equal(t, []events.Type{events.EntryCreated}, env.publisher.types())

	got, err := env.svc.Get(ctx, owner.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ImageURL, got.ImageURL)
	assert.Equal(t, owner.Email, got.Owner.Email)
}

func TestService_Create_ReportsEveryField(t *testing.T) {
	env := setupService(t)
	owner := env.createOwner(t, "alice")

	in := Input{Title: "   ", Description: string(bytes.Repeat([]byte("x"), 501)), Latitude: "91", Longitude: "abc"}
	_, err := env.svc.Create(context.Background(), owner, in, &Upload{Data: testPNG(t)}, "")
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)

	fields := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"title", "description", "latitude", "longitude"}, fields)
	assert.Zero(t, env.images.count())
}

func TestService_Create_MissingImage(t *testing.T) {
	env := setupService(t)
	owner := env.createOwner(t, "alice")

	_, err := env.svc.Create(context.Background(), owner, validInput(), nil, "")
	assert.True(t, apperr.Is(err, apperr.KindMissingImage))

	_, err = env.svc.Create(context.Background(), owner, validInput(), &Upload{Filename: "empty.png"}, "")
	assert.True(t, apperr.Is(err, apperr.KindMissingImage))

	res, err := env.svc.List(context.Background(), owner.ID, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
}

func TestService_Create_NotAnImage(t *testing.T) {
	env := setupService(t)
	owner := env.createOwner(t, "alice")

	_, err := env.svc.Create(context.Background(), owner, validInput(), &Upload{Filename: "x.png", Data: []byte("plain text")}, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, env.images.count())
}

func TestService_Create_ImageStoreFailure(t *testing.T) {
	env := setupService(t)
	owner := env.createOwner(t, "alice")
	env.images.putErr = errors.New("disk full")

	_, err := env.svc.Create(context.Background(), owner, validInput(), &Upload{Data: testPNG(t)}, "")
	assert.Equal(t, apperr.KindFatal, apperr.KindOf(err))
}

func TestService_Create_RemovesImageWhenInsertFails(t *testing.T) {
	env := setupService(t)

	// владельца нет в таблице users, вставка упадет на внешнем ключе
	ghost := models.Owner{ID: uuid.NewString(), Name: "ghost", Email: "ghost@example.com"}

	_, err := env.svc.Create(context.Background(), ghost, validInput(), &Upload{Data: testPNG(t)}, "")
	assert.Equal(t, apperr.KindFatal, apperr.KindOf(err))
	assert.Zero(t, env.images.count())
}

func TestService_PublishFailureDoesNotFailCall(t *testing.T) {
	env := setupService(t)
	owner := env.createOwner(t, "alice")
	env.publisher.err = errors.New("broker down")

	_, err := env.svc.Create(context.Background(), owner, validInput(), &Upload{Data: testPNG(t)}, "")
	assert.NoError(t, err)
}

func TestService_OwnershipIsolation(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createOwner(t, "alice")
	bob := env.createOwner(t, "bob")

	entry, err := env.svc.Create(ctx, alice, validInput(), &Upload{Data: testPNG(t)}, "")
	require.NoError(t, err)

	_, err = env.svc.Get(ctx, bob.ID, entry.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	// чужая запись и несуществующая неотличимы
	_, missingErr := env.svc.Get(ctx, bob.ID, uuid.NewString())
	assert.Equal(t, missingErr.Error(), err.Error())

	_, err = env.svc.Update(ctx, bob.ID, entry.ID, validInput())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = env.svc.Delete(ctx, bob.ID, entry.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	res, err := env.svc.List(ctx, bob.ID, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Zero(t, res.Pagination.TotalEntries)

	// запись Алисы не пострадала
	got, err := env.svc.Get(ctx, alice.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Title, got.Title)
}

func TestService_Get_MalformedID(t *testing.T) {
	env := setupService(t)
	owner := env.createOwner(t, "alice")

	_, err := env.svc.Get(context.Background(), owner.ID, "not-a-uuid")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_UpdateRoundTrip(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	owner := env.createOwner(t, "alice")

	entry, err := env.svc.Create(ctx, owner, validInput(), &Upload{Data: testPNG(t)}, "http://h")
	require.NoError(t, err)

	updated, err := env.svc.Update(ctx, owner.ID, entry.ID, Input{Title: "New", Description: "", Latitude: "-33.8568", Longitude: "151.2153"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	got, err := env.svc.Get(ctx, owner.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "", got.Description)
	assert.InDelta(t, -33.8568, got.Latitude, 1e-9)
	assert.InDelta(t, 151.2153, got.Longitude, 1e-9)
	assert.Equal(t, entry.ImageURL, got.ImageURL)
	assert.Equal(t, owner, got.Owner)
	assert.Equal(t, []events.Type{events.EntryCreated, events.EntryUpdated}, env.publisher.types())
}

func TestService_Update_Validation(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	owner := env.createOwner(t, "alice")

	entry, err := env.svc.Create(ctx, owner, validInput(), &Upload{Data: testPNG(t)}, "")
	require.NoError(t, err)

	_, err = env.svc.Update(ctx, owner.ID, entry.ID, Input{Title: "ok", Latitude: "10", Longitude: "181"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err := env.svc.Get(ctx, owner.ID, entry.ID)
	require.NoError(t, err)
	assert.InDelta(t, 13.3777, got.Longitude, 1e-9)
}

func TestService_DeleteTwice(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	owner := env.createOwner(t, "alice")

	entry, err := env.svc.Create(ctx, owner, validInput(), &Upload{Data: testPNG(t)}, "")
	require.NoError(t, err)
	require.Equal(t, 1, env.images.count())

	require.NoError(t, env.svc.Delete(ctx, owner.ID, entry.ID))
	assert.Zero(t, env.images.count())

	err = env.svc.Delete(ctx, owner.ID, entry.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = env.svc.Get(ctx, owner.ID, entry.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
