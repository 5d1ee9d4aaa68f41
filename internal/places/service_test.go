package places

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/media"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/schedule"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/slugs"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/auth"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/config"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/db"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/db/models"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/enums"
	pkgerrors "github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/errors"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/metrics"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage/local"
)

type stubNotifier struct {
	created     []uuid.UUID
	resubmitted []uuid.UUID
	err         error
}

func (n *stubNotifier) PlaceCreated(_ context.Context, _ auth.Actor, place *models.Place) error {
	n.created = append(n.created, place.ID)
	return n.err
}

func (n *stubNotifier) PlaceResubmitted(_ context.Context, _ auth.Actor, place *models.Place, _ enums.PlaceStatus) error {
	n.resubmitted = append(n.resubmitted, place.ID)
	return n.err
}

type failingDirStore struct{}

func (failingDirStore) RemoveDir(context.Context, string) error {
	return errors.New("permission denied")
}

type fixture struct {
	svc      Service
	conn     *gorm.DB
	repo     *Repository
	store    *local.Store
	notifier *stubNotifier
}

type fixtureOption func(*ServiceParams)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "places.db")), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Place{}, &models.PlaceOpeningHour{}))

	store, err := local.New(config.StorageConfig{LocalRoot: t.TempDir(), PublicBaseURL: "/uploads"})
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "places-test", Output: io.Discard})
	repo := NewRepository(conn)
	allocator, err := slugs.NewAllocator(repo, 50)
	require.NoError(t, err)
	relocator, err := media.NewRelocator(store, logg, nil)
	require.NoError(t, err)
	notifier := &stubNotifier{}

	params := ServiceParams{
		Config:     config.PlacesConfig{CreateRetries: 3, DefaultPageSize: 20},
		Logger:     logg,
		DB:         db.FromGorm(conn),
		Repository: repo,
		Slugs:      allocator,
		Relocator:  relocator,
		Store:      store,
		Notifier:   notifier,
		Metrics:    metrics.NewPlaceMetrics(nil),
	}
	for _, opt := range opts {
		opt(&params)
	}

	svc, err := NewService(params)
	require.NoError(t, err)
	return &fixture{svc: svc, conn: conn, repo: repo, store: store, notifier: notifier}
}

func userActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Role: enums.ActorRoleUser}
}

func adminActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Role: enums.ActorRoleAdmin}
}

func str(v string) *string { return &v }

func TestCreateAllocatesSequentialSlugs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := userActor()

	var got []string
	for _, name := range []string{"Café de la Place", "Cafe de la place", "CAFE DE LA PLACE!!"} {
		res, err := f.svc.Create(ctx, actor, CreateInput{Name: name})
		require.NoError(t, err)
		got = append(got, res.Place.Slug)
	}

	assert.Equal(t, []string{"cafe-de-la-place", "cafe-de-la-place-1", "cafe-de-la-place-2"}, got)
}

func TestCreateSetsOwnerAndPendingStatus(t *testing.T) {
	f := newFixture(t)
	actor := userActor()

	res, err := f.svc.Create(context.Background(), actor, CreateInput{Name: "Boulangerie Martin", Kind: "Business"})
	require.NoError(t, err)

	assert.Equal(t, enums.PlaceStatusPending, res.Place.Status)
	require.NotNil(t, res.Place.OwnerID)
	assert.Equal(t, actor.ID, *res.Place.OwnerID)
	assert.Equal(t, enums.PlaceKindBusiness, res.Place.Kind)
	assert.Equal(t, []uuid.UUID{res.Place.ID}, f.notifier.created)
}

func TestCreateForClaimRequiresPrivilege(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), userActor(), CreateInput{Name: "Mairie", ForClaim: true})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	res, err := f.svc.Create(context.Background(), adminActor(), CreateInput{Name: "Mairie", ForClaim: true})
	require.NoError(t, err)
	assert.Equal(t, enums.PlaceStatusActive, res.Place.Status)
	assert.Nil(t, res.Place.OwnerID)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), userActor(), CreateInput{
		Name:     "  ",
		Kind:     "shop",
		Email:    str("not-an-email"),
		Latitude: func() *float64 { v := 91.0; return &v }(),
	})
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok, "expected field details")
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "kind")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "latitude")

	_, err = f.svc.Create(context.Background(), auth.Actor{}, CreateInput{Name: "Anonyme"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestCreateNormalizesSchedule(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Create(context.Background(), userActor(), CreateInput{
		Name: "Garage du Pont",
		OpeningHours: []schedule.DayInput{
			{DayOfWeek: "MONDAY", IsClosed: true, OpenTime: str("09:00")},
			{DayOfWeek: "TUESDAY", Slots: []schedule.SlotInput{
				{OpenTime: str("09:00"), CloseTime: str("12:00")},
				{OpenTime: str("14:00"), CloseTime: str("18:00")},
			}},
			{DayOfWeek: "FRIDAY", OpenTime: str("09:00")},
			{DayOfWeek: "FUNDAY", OpenTime: str("09:00"), CloseTime: str("10:00")},
		},
	})
	require.NoError(t, err)

	hours := res.Place.OpeningHours
	require.Len(t, hours, 3)
	assert.Equal(t, enums.Monday, hours[0].DayOfWeek)
	assert.True(t, hours[0].IsClosed)
	assert.Nil(t, hours[0].OpenTime)
	assert.Nil(t, hours[0].CloseTime)
	for _, h := range hours[1:] {
		assert.Equal(t, enums.Tuesday, h.DayOfWeek)
		assert.False(t, h.IsClosed)
	}

	stored, err := f.repo.FindByID(context.Background(), res.Place.ID)
	require.NoError(t, err)
	require.Len(t, stored.OpeningHours, 3)
	assert.Equal(t, "14:00", *stored.OpeningHours[2].OpenTime)

	snapshot, err := schedule.DecodeSnapshot(stored.RawSchedule)
	require.NoError(t, err)
	assert.Len(t, snapshot.OpeningHours, 4, "snapshot keeps the raw submission")
}

func TestCreateDefaultsLogoAndCoverToFirstGalleryImage(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Create(context.Background(), userActor(), CreateInput{
		Name:    "Librairie",
		Gallery: []string{"g1.jpg", "g2.jpg"},
	})
	require.NoError(t, err)

	require.NotNil(t, res.Place.LogoURL)
	require.NotNil(t, res.Place.CoverURL)
	assert.Equal(t, "g1.jpg", *res.Place.LogoURL)
	assert.Equal(t, "g1.jpg", *res.Place.CoverURL)
	assert.Equal(t, []string{"g1.jpg", "g2.jpg"}, res.Place.Gallery)
}

func TestCreateRelocatesStagedAssets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stagingID := uuid.Must(uuid.NewV7()).String()
	obj, err := f.store.Save(ctx, strings.NewReader("jpeg"), storage.StagingDir(stagingID)+"/photo1.jpg", "image/jpeg")
	require.NoError(t, err)

	res, err := f.svc.Create(ctx, userActor(), CreateInput{
		Name:    "Chez Paul",
		Gallery: []string{obj.URL},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	_, err = os.Stat(filepath.Join(f.store.Root(), "places", "chez-paul", "photo1.jpg"))
	assert.NoError(t, err, "permanent area holds the file")
	_, err = os.Stat(filepath.Join(f.store.Root(), "staging", stagingID))
	assert.True(t, os.IsNotExist(err), "staged area is removed")

	want := "/uploads/places/chez-paul/photo1.jpg"
	assert.Equal(t, []string{want}, res.Place.Gallery)
	require.NotNil(t, res.Place.LogoURL)
	assert.Equal(t, want, *res.Place.LogoURL)

	stored, err := f.repo.FindByID(ctx, res.Place.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{want}, []string(stored.GalleryURLs))
}

type flakyTx struct {
	next txRunner
	err  error
}

func (f *flakyTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if f.err != nil {
		return f.err
	}
	return f.next.WithTx(ctx, fn)
}

func TestCreateRestoresStagedAssetsWhenPersistFails(t *testing.T) {
	tx := &flakyTx{err: errors.New("connection reset")}
	f := newFixture(t, func(p *ServiceParams) {
		tx.next = p.DB
		p.DB = tx
	})
	ctx := context.Background()

	stagingID := uuid.Must(uuid.NewV7()).String()
	obj, err := f.store.Save(ctx, strings.NewReader("jpeg"), storage.StagingDir(stagingID)+"/photo1.jpg", "image/jpeg")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, userActor(), CreateInput{Name: "Chez Paul", Gallery: []string{obj.URL}})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	_, err = os.Stat(filepath.Join(f.store.Root(), "staging", stagingID, "photo1.jpg"))
	assert.NoError(t, err, "staged file is back in its area")
	_, err = os.Stat(filepath.Join(f.store.Root(), "places", "chez-paul", "photo1.jpg"))
	assert.True(t, os.IsNotExist(err), "no copy is left under the place area")

	tx.err = nil
	res, err := f.svc.Create(ctx, userActor(), CreateInput{Name: "Chez Paul", Gallery: []string{obj.URL}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/places/chez-paul/photo1.jpg"}, res.Place.Gallery)
}

type scriptedAllocator struct {
	slugs []string
	calls int
}

func (a *scriptedAllocator) Allocate(context.Context, string) (string, error) {
	slug := a.slugs[a.calls]
	a.calls++
	return slug, nil
}

func TestCreateRetriesWhenSlugTakenConcurrently(t *testing.T) {
	allocator := &scriptedAllocator{slugs: []string{"la-halle", "la-halle-1"}}
	f := newFixture(t, func(p *ServiceParams) { p.Slugs = allocator })
	ctx := context.Background()

	require.NoError(t, f.conn.Create(&models.Place{
		Slug: "la-halle", Name: "La Halle", Kind: enums.PlaceKindBusiness, Status: enums.PlaceStatusActive,
	}).Error)

	stagingID := uuid.Must(uuid.NewV7()).String()
	obj, err := f.store.Save(ctx, strings.NewReader("x"), storage.StagingDir(stagingID)+"/front.jpg", "image/jpeg")
	require.NoError(t, err)

	res, err := f.svc.Create(ctx, userActor(), CreateInput{Name: "La Halle", LogoURL: str(obj.URL)})
	require.NoError(t, err)

	assert.Equal(t, "la-halle-1", res.Place.Slug)
	assert.Equal(t, 2, allocator.calls)
	require.NotNil(t, res.Place.LogoURL)
	assert.Equal(t, "/uploads/places/la-halle-1/front.jpg", *res.Place.LogoURL)
	_, err = os.Stat(filepath.Join(f.store.Root(), "places", "la-halle-1", "front.jpg"))
	assert.NoError(t, err)
}

func TestCreateReturnsConflictWhenRetriesExhausted(t *testing.T) {
	allocator := &scriptedAllocator{slugs: []string{"marche", "marche", "marche"}}
	f := newFixture(t, func(p *ServiceParams) {
		p.Slugs = allocator
		p.Config.CreateRetries = 2
	})

	require.NoError(t, f.conn.Create(&models.Place{
		Slug: "marche", Name: "Marché", Kind: enums.PlaceKindEvent, Status: enums.PlaceStatusActive,
	}).Error)

	_, err := f.svc.Create(context.Background(), userActor(), CreateInput{Name: "Marché"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.True(t, pkgerrors.MetadataFor(pkgerrors.CodeConflict).Retryable)
}

func TestCreateSucceedsWhenNotificationFails(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("outbox unavailable")

	res, err := f.svc.Create(context.Background(), userActor(), CreateInput{Name: "Pharmacie"})
	require.NoError(t, err)
	assert.Equal(t, "pharmacie", res.Place.Slug)
	assert.Len(t, f.notifier.created, 1)
}

func activePlace(t *testing.T, f *fixture, owner auth.Actor, input CreateInput) *PlaceDTO {
	t.Helper()
	res, err := f.svc.Create(context.Background(), owner, input)
	require.NoError(t, err)
	active := enums.PlaceStatusActive
	approved, err := f.svc.Update(context.Background(), adminActor(), res.Place.ID, UpdateInput{Status: &active})
	require.NoError(t, err)
	require.Equal(t, enums.PlaceStatusActive, approved.Place.Status)
	return approved.Place
}

func TestUpdateByOwnerForcesReReview(t *testing.T) {
	f := newFixture(t)
	owner := userActor()
	place := activePlace(t, f, owner, CreateInput{Name: "Fromagerie"})

	res, err := f.svc.Update(context.Background(), owner, place.ID, UpdateInput{Summary: str("Fromages affinés")})
	require.NoError(t, err)
	assert.Equal(t, enums.PlaceStatusPending, res.Place.Status)
	assert.Equal(t, []uuid.UUID{place.ID}, f.notifier.resubmitted)
}

func TestUpdateByAdminKeepsStatus(t *testing.T) {
	f := newFixture(t)
	place := activePlace(t, f, userActor(), CreateInput{Name: "Fromagerie"})

	res, err := f.svc.Update(context.Background(), adminActor(), place.ID, UpdateInput{Summary: str("Fromages affinés")})
	require.NoError(t, err)
	assert.Equal(t, enums.PlaceStatusActive, res.Place.Status)
	assert.Empty(t, f.notifier.resubmitted)
}

func TestUpdatePermissions(t *testing.T) {
	f := newFixture(t)
	owner := userActor()
	res, err := f.svc.Create(context.Background(), owner, CreateInput{Name: "Atelier"})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), userActor(), res.Place.ID, UpdateInput{Name: str("Volé")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.Update(context.Background(), owner, uuid.New(), UpdateInput{Name: str("Absent")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	active := enums.PlaceStatusActive
	_, err = f.svc.Update(context.Background(), owner, res.Place.ID, UpdateInput{Status: &active})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "owners cannot self-approve")
}

func TestUpdatePreservesStoredLogoWhenBlank(t *testing.T) {
	f := newFixture(t)
	owner := userActor()
	res, err := f.svc.Create(context.Background(), owner, CreateInput{Name: "Opticien", LogoURL: str("old.jpg")})
	require.NoError(t, err)

	empty := []string{}
	updated, err := f.svc.Update(context.Background(), owner, res.Place.ID, UpdateInput{
		LogoURL:  str(""),
		CoverURL: str("  "),
		Gallery:  &empty,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Place.LogoURL)
	assert.Equal(t, "old.jpg", *updated.Place.LogoURL)
}

func TestUpdateReplacesScheduleWholesale(t *testing.T) {
	f := newFixture(t)
	owner := userActor()
	res, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name: "Boucherie",
		OpeningHours: []schedule.DayInput{
			{DayOfWeek: "MONDAY", OpenTime: str("08:00"), CloseTime: str("12:00")},
			{DayOfWeek: "TUESDAY", OpenTime: str("08:00"), CloseTime: str("12:00")},
		},
	})
	require.NoError(t, err)

	hours := []schedule.DayInput{{DayOfWeek: "sunday", IsClosed: true}}
	updated, err := f.svc.Update(context.Background(), owner, res.Place.ID, UpdateInput{OpeningHours: &hours})
	require.NoError(t, err)
	require.Len(t, updated.Place.OpeningHours, 1)
	assert.Equal(t, enums.Sunday, updated.Place.OpeningHours[0].DayOfWeek)

	var count int64
	require.NoError(t, f.conn.Model(&models.PlaceOpeningHour{}).Where("place_id = ?", res.Place.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Updates without schedule input leave rows untouched.
	_, err = f.svc.Update(context.Background(), owner, res.Place.ID, UpdateInput{Phone: str("0467000000")})
	require.NoError(t, err)
	require.NoError(t, f.conn.Model(&models.PlaceOpeningHour{}).Where("place_id = ?", res.Place.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteRemovesRowsAndAssets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := userActor()
	res, err := f.svc.Create(ctx, owner, CreateInput{
		Name:         "Cordonnerie",
		OpeningHours: []schedule.DayInput{{DayOfWeek: "MONDAY", IsClosed: true}},
	})
	require.NoError(t, err)
	_, err = f.store.Save(ctx, strings.NewReader("x"), storage.PlaceDir(res.Place.Slug)+"/logo.png", "image/png")
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, userActor(), res.Place.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	deleted, err := f.svc.Delete(ctx, owner, res.Place.ID)
	require.NoError(t, err)
	assert.Empty(t, deleted.Warnings)

	_, err = f.repo.FindByID(ctx, res.Place.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	var count int64
	require.NoError(t, f.conn.Model(&models.PlaceOpeningHour{}).Count(&count).Error)
	assert.Zero(t, count)
	_, err = os.Stat(filepath.Join(f.store.Root(), "places", res.Place.Slug))
	assert.True(t, os.IsNotExist(err))

	_, err = f.svc.Delete(ctx, owner, res.Place.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteReportsStorageFaultAsWarning(t *testing.T) {
	f := newFixture(t, func(p *ServiceParams) { p.Store = failingDirStore{} })
	owner := userActor()
	res, err := f.svc.Create(context.Background(), owner, CreateInput{Name: "Quincaillerie"})
	require.NoError(t, err)

	deleted, err := f.svc.Delete(context.Background(), owner, res.Place.ID)
	require.NoError(t, err)
	require.Len(t, deleted.Warnings, 1)
	assert.Contains(t, deleted.Warnings[0], string(pkgerrors.CodeStorage))
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := userActor()

	pending, err := f.svc.Create(ctx, owner, CreateInput{Name: "En Attente"})
	require.NoError(t, err)
	active := activePlace(t, f, userActor(), CreateInput{Name: "Publiée"})

	got, err := f.svc.Get(ctx, auth.Actor{}, active.Slug)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	_, err = f.svc.Get(ctx, auth.Actor{}, pending.Place.ID.String())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	_, err = f.svc.Get(ctx, userActor(), pending.Place.Slug)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.Get(ctx, owner, pending.Place.Slug)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, adminActor(), pending.Place.ID.String())
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, owner, "does-not-exist")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.Get(ctx, owner, "Not A Slug")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListVisibilityAndPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := userActor()

	_, err := f.svc.Create(ctx, owner, CreateInput{Name: "Brouillon"})
	require.NoError(t, err)
	for _, name := range []string{"Un", "Deux", "Trois"} {
		activePlace(t, f, userActor(), CreateInput{Name: name})
	}

	public, err := f.svc.List(ctx, auth.Actor{}, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, public.Items, 3)
	for _, item := range public.Items {
		assert.Equal(t, enums.PlaceStatusActive, item.Status)
	}

	mine, err := f.svc.List(ctx, owner, ListFilter{Mine: true})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "brouillon", mine.Items[0].Slug)

	_, err = f.svc.List(ctx, auth.Actor{}, ListFilter{Mine: true})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	pending := enums.PlaceStatusPending
	_, err = f.svc.List(ctx, owner, ListFilter{Status: &pending})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	moderated, err := f.svc.List(ctx, adminActor(), ListFilter{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, moderated.Items, 1)

	first, err := f.svc.List(ctx, auth.Actor{}, ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.svc.List(ctx, auth.Actor{}, ListFilter{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, item := range append(first.Items, second.Items...) {
		assert.False(t, seen[item.ID], "page overlap")
		seen[item.ID] = true
	}

	_, err = f.svc.List(ctx, auth.Actor{}, ListFilter{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAssetDir(t *testing.T) {
	f := newFixture(t)
	owner := userActor()
	res, err := f.svc.Create(context.Background(), owner, CreateInput{Name: "Fleuriste"})
	require.NoError(t, err)

	dir, err := f.svc.AssetDir(context.Background(), owner, res.Place.ID)
	require.NoError(t, err)
	assert.Equal(t, "places/fleuriste", dir)

	_, err = f.svc.AssetDir(context.Background(), userActor(), res.Place.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}
