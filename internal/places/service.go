// Package places implements the place lifecycle: creation with slug
// allocation and staged asset relocation, owner/moderator updates with forced
// re-review, deletion, and visibility-aware reads.
package places

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
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
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/pagination"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"

	maxNameLength = 200
)

type placeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Place, error)
	FindBySlug(ctx context.Context, slug string) (*models.Place, error)
	CreateWithTx(tx *gorm.DB, place *models.Place) error
	UpdateWithTx(tx *gorm.DB, place *models.Place) error
	ReplaceOpeningHoursWithTx(tx *gorm.DB, placeID uuid.UUID, rows []models.PlaceOpeningHour) error
	DeleteWithTx(tx *gorm.DB, id uuid.UUID) (bool, error)
	List(ctx context.Context, params listParams) ([]models.Place, *pagination.Cursor, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type slugAllocator interface {
	Allocate(ctx context.Context, name string) (string, error)
}

type assetRelocator interface {
	RelocateStaged(ctx context.Context, stagingIDs []string, slug string) media.Relocation
	Retarget(ctx context.Context, prev media.Relocation, slug string) media.Relocation
	Restore(ctx context.Context, rel media.Relocation) error
}

type assetStore interface {
	RemoveDir(ctx context.Context, dir string) error
}

type reviewNotifier interface {
	PlaceCreated(ctx context.Context, actor auth.Actor, place *models.Place) error
	PlaceResubmitted(ctx context.Context, actor auth.Actor, place *models.Place, previous enums.PlaceStatus) error
}

type placeMetrics interface {
	IncMutation(operation, outcome string)
	IncScheduleDrop(reason string)
	IncDegraded(operation string)
}

// Service exposes the place lifecycle. An anonymous caller is the zero Actor.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateInput) (*Result, error)
	Update(ctx context.Context, actor auth.Actor, placeID uuid.UUID, input UpdateInput) (*Result, error)
	Delete(ctx context.Context, actor auth.Actor, placeID uuid.UUID) (*Result, error)
	Get(ctx context.Context, actor auth.Actor, ref string) (*PlaceDTO, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter) (*ListResult, error)
	AssetDir(ctx context.Context, actor auth.Actor, placeID uuid.UUID) (string, error)
}

// ServiceParams bundles the collaborators of the lifecycle service.
type ServiceParams struct {
	Config     config.PlacesConfig
	Logger     *logger.Logger
	DB         txRunner
	Repository placeRepository
	Slugs      slugAllocator
	Relocator  assetRelocator
	Store      assetStore
	Notifier   reviewNotifier
	Metrics    placeMetrics
	Now        func() time.Time
}

type service struct {
	cfg       config.PlacesConfig
	logg      *logger.Logger
	db        txRunner
	repo      placeRepository
	slugs     slugAllocator
	relocator assetRelocator
	store     assetStore
	notifier  reviewNotifier
	metrics   placeMetrics
	now       func() time.Time
}

// NewService validates the collaborators and builds the lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("place repository required")
	}
	if params.Slugs == nil {
		return nil, fmt.Errorf("slug allocator required")
	}
	if params.Relocator == nil {
		return nil, fmt.Errorf("asset relocator required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("asset store required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("review notifier required")
	}
	if params.Metrics == nil {
		return nil, fmt.Errorf("metrics required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	cfg := params.Config
	if cfg.CreateRetries < 0 {
		cfg.CreateRetries = 0
	}
	return &service{
		cfg:       cfg,
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		slugs:     params.Slugs,
		relocator: params.Relocator,
		store:     params.Store,
		notifier:  params.Notifier,
		metrics:   params.Metrics,
		now:       now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (*Result, error) {
	res, err := s.create(ctx, actor, input)
	s.record(opCreate, res, err)
	return res, err
}

func (s *service) create(ctx context.Context, actor auth.Actor, input CreateInput) (res *Result, err error) {
	if actor.IsAnonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := normalizeCreate(&input); err != nil {
		return nil, err
	}
	if input.ForClaim && !actor.IsPrivileged() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only moderators may create places awaiting a claim")
	}

	slug, err := s.slugs.Allocate(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	rel := media.Relocation{Slug: slug}
	if ids := stagingScope(input); len(ids) > 0 {
		rel = s.relocator.RelocateStaged(ctx, ids, slug)
	}
	defer func() {
		if err == nil || len(rel.Moved) == 0 {
			return
		}
		s.attempt(ctx, "restore staged assets", func() error {
			return s.relocator.Restore(ctx, rel)
		})
	}()

	var entries []schedule.Entry
	if input.OpeningHours != nil {
		entries = s.normalizeSchedule(ctx, input.OpeningHours)
	}

	now := s.now().UTC()
	place := &models.Place{
		ID:          uuid.New(),
		Name:        input.Name,
		Kind:        input.Kind,
		Summary:     input.Summary,
		Description: input.Description,
		Email:       input.Email,
		Phone:       input.Phone,
		Website:     input.Website,
		Street:      input.Street,
		PostalCode:  input.PostalCode,
		City:        input.City,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Social != nil {
		place.Social = datatypes.NewJSONType(input.Social.Normalized())
	}
	if input.ForClaim {
		place.Status = enums.PlaceStatusActive
	} else {
		owner := actor.ID
		place.Status = enums.PlaceStatusPending
		place.OwnerID = &owner
	}

	var rows []models.PlaceOpeningHour
	for attempt := 0; ; attempt++ {
		place.Slug = slug
		images := media.ResolveImages(media.Candidates{
			Logo:    rel.RewritePtr(input.LogoURL),
			Cover:   rel.RewritePtr(input.CoverURL),
			Gallery: rel.RewriteAll(input.Gallery),
		}, nil)
		applyImages(place, images)
		if place.RawSchedule, err = schedule.EncodeSnapshot(schedule.Snapshot{
			OpeningHours: input.OpeningHours,
			Gallery:      images.Gallery,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode schedule snapshot")
		}
		rows = hoursFromEntries(place.ID, entries)

		err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.repo.CreateWithTx(tx, place); err != nil {
				return err
			}
			return s.repo.ReplaceOpeningHoursWithTx(tx, place.ID, rows)
		})
		if err == nil {
			break
		}
		if !db.IsUniqueViolation(err, slugConstraint...) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist place")
		}
		if attempt >= s.cfg.CreateRetries {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "slug was taken concurrently; retry the request")
		}

		s.logg.Warn(s.logg.WithField(ctx, "slug", slug), "slug taken concurrently, reallocating")
		if slug, err = s.slugs.Allocate(ctx, input.Name); err != nil {
			return nil, err
		}
		if len(rel.Moved) > 0 {
			rel = s.relocator.Retarget(ctx, rel, slug)
		} else {
			rel.Slug = slug
		}
	}
	place.OpeningHours = rows

	ctx = s.logg.WithPlaceID(ctx, place.ID.String())
	s.logg.Info(s.logg.WithField(ctx, "slug", place.Slug), "place created")

	s.attempt(ctx, "notify place created", func() error {
		return s.notifier.PlaceCreated(ctx, actor, place)
	})

	return &Result{Place: FromModel(place), Warnings: rel.Warnings()}, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, placeID uuid.UUID, input UpdateInput) (*Result, error) {
	res, err := s.update(ctx, actor, placeID, input)
	s.record(opUpdate, res, err)
	return res, err
}

func (s *service) update(ctx context.Context, actor auth.Actor, placeID uuid.UUID, input UpdateInput) (*Result, error) {
	if actor.IsAnonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	place, err := s.load(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if !canEdit(actor, place) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or a moderator may edit this place")
	}
	if err := normalizeUpdate(&input); err != nil {
		return nil, err
	}
	if input.Status != nil && !actor.IsPrivileged() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only moderators may change the status of a place")
	}

	ctx = s.logg.WithPlaceID(ctx, place.ID.String())
	previousStatus := place.Status
	applyPatch(place, input)

	snapshot, err := schedule.DecodeSnapshot(place.RawSchedule)
	if err != nil {
		s.logg.Warn(ctx, "discarding unreadable schedule snapshot")
		snapshot = schedule.Snapshot{}
	}
	snapshotChanged := false

	if input.LogoURL != nil || input.CoverURL != nil || input.Gallery != nil {
		var gallery []string
		if input.Gallery != nil {
			gallery = *input.Gallery
		}
		images := media.ResolveImages(media.Candidates{
			Logo:    input.LogoURL,
			Cover:   input.CoverURL,
			Gallery: gallery,
		}, &media.ImageSet{
			Logo:    place.LogoURL,
			Cover:   place.CoverURL,
			Gallery: place.GalleryURLs,
		})
		applyImages(place, images)
		snapshot.Gallery = images.Gallery
		snapshotChanged = true
	}

	var rows []models.PlaceOpeningHour
	replaceHours := input.OpeningHours != nil
	if replaceHours {
		rows = hoursFromEntries(place.ID, s.normalizeSchedule(ctx, *input.OpeningHours))
		snapshot.OpeningHours = *input.OpeningHours
		snapshotChanged = true
	}
	if snapshotChanged {
		if place.RawSchedule, err = schedule.EncodeSnapshot(snapshot); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode schedule snapshot")
		}
	}

	resubmitted := false
	if !actor.IsPrivileged() && previousStatus == enums.PlaceStatusActive {
		place.Status = enums.PlaceStatusPending
		resubmitted = true
	}
	place.UpdatedAt = s.now().UTC()

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateWithTx(tx, place); err != nil {
			return err
		}
		if replaceHours {
			return s.repo.ReplaceOpeningHoursWithTx(tx, place.ID, rows)
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update place")
	}
	if replaceHours {
		place.OpeningHours = rows
	}

	s.logg.Info(s.logg.WithField(ctx, "status", string(place.Status)), "place updated")
	if resubmitted {
		s.attempt(ctx, "notify place resubmitted", func() error {
			return s.notifier.PlaceResubmitted(ctx, actor, place, previousStatus)
		})
	}

	return &Result{Place: FromModel(place)}, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, placeID uuid.UUID) (*Result, error) {
	res, err := s.delete(ctx, actor, placeID)
	s.record(opDelete, res, err)
	return res, err
}

func (s *service) delete(ctx context.Context, actor auth.Actor, placeID uuid.UUID) (*Result, error) {
	if actor.IsAnonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	place, err := s.load(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if !canEdit(actor, place) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or a moderator may delete this place")
	}

	ctx = s.logg.WithPlaceID(ctx, place.ID.String())
	deleted := false
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.DeleteWithTx(tx, place.ID)
		deleted = ok
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete place")
	}
	if !deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "slug", place.Slug), "place deleted")

	var warnings []string
	dir := storage.PlaceDir(place.Slug)
	s.attempt(ctx, "remove place assets", func() error {
		if err := s.store.RemoveDir(ctx, dir); err != nil {
			fault := pkgerrors.Wrap(pkgerrors.CodeStorage, err, "remove asset directory "+dir)
			warnings = append(warnings, fault.Error())
			return fault
		}
		return nil
	})

	return &Result{Place: FromModel(place), Warnings: warnings}, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, ref string) (*PlaceDTO, error) {
	ref = strings.TrimSpace(ref)
	var (
		place *models.Place
		err   error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		place, err = s.repo.FindByID(ctx, id)
	} else if slugs.IsValid(ref) {
		place, err = s.repo.FindBySlug(ctx, ref)
	} else {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
	}
	if err != nil {
		return nil, mapLoadError(err)
	}

	if place.Status != enums.PlaceStatusActive && !canEdit(actor, place) {
		if actor.IsAnonymous() {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required to view this place")
		}
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "place is not published")
	}
	return FromModel(place), nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter ListFilter) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, pkgerrors.Validation("invalid cursor", map[string]string{"cursor": "is not a valid page cursor"})
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.Validation("invalid status", map[string]string{"status": "is not a place status"})
	}
	if filter.Kind != nil && !filter.Kind.IsValid() {
		return nil, pkgerrors.Validation("invalid kind", map[string]string{"kind": "is not a place kind"})
	}

	params := listParams{
		Kind:   filter.Kind,
		Limit:  pagination.NormalizeLimit(filter.Limit, s.cfg.DefaultPageSize),
		Cursor: cursor,
	}
	switch {
	case filter.Mine:
		if actor.IsAnonymous() {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required to list your places")
		}
		owner := actor.ID
		params.OwnerID = &owner
		if filter.Status != nil {
			params.Statuses = []enums.PlaceStatus{*filter.Status}
		}
	case actor.IsPrivileged():
		if filter.Status != nil {
			params.Statuses = []enums.PlaceStatus{*filter.Status}
		}
	default:
		if filter.Status != nil && *filter.Status != enums.PlaceStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only moderators may list unpublished places")
		}
		params.Statuses = []enums.PlaceStatus{enums.PlaceStatusActive}
	}

	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list places")
	}

	out := &ListResult{Items: make([]PlaceDTO, 0, len(rows))}
	for i := range rows {
		out.Items = append(out.Items, *FromModel(&rows[i]))
	}
	if next != nil {
		out.NextCursor = pagination.EncodeCursor(*next)
	}
	return out, nil
}

// AssetDir returns the permanent asset directory of a place the actor may edit.
func (s *service) AssetDir(ctx context.Context, actor auth.Actor, placeID uuid.UUID) (string, error) {
	place, err := s.load(ctx, placeID)
	if err != nil {
		return "", err
	}
	if !canEdit(actor, place) {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or a moderator may upload assets for this place")
	}
	return storage.PlaceDir(place.Slug), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	place, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return place, nil
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load place")
}

func (s *service) normalizeSchedule(ctx context.Context, input []schedule.DayInput) []schedule.Entry {
	entries, drops := schedule.Normalize(input)
	for _, drop := range drops {
		s.metrics.IncScheduleDrop(drop.Reason)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"day_of_week": drop.DayOfWeek,
			"input_index": drop.Index,
			"reason":      drop.Reason,
		}), "schedule entry dropped")
	}
	return entries
}

// attempt runs a best-effort side effect: failures and panics are logged and
// never reach the caller.
func (s *service) attempt(ctx context.Context, action string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.logg.Error(ctx, action+" panicked", fmt.Errorf("panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		s.logg.Error(ctx, action+" failed", err)
	}
}

func (s *service) record(operation string, res *Result, err error) {
	if err != nil {
		s.metrics.IncMutation(operation, string(pkgerrors.CodeOf(err)))
		return
	}
	s.metrics.IncMutation(operation, "ok")
	if res != nil && len(res.Warnings) > 0 {
		s.metrics.IncDegraded(operation)
	}
}

func canEdit(actor auth.Actor, place *models.Place) bool {
	if actor.IsAnonymous() {
		return false
	}
	return actor.IsPrivileged() || actor.Owns(place.OwnerID)
}

// stagingScope returns the explicit staging ids plus those referenced by the
// submitted image URLs.
func stagingScope(input CreateInput) []string {
	urls := append([]string{}, input.Gallery...)
	if input.LogoURL != nil {
		urls = append(urls, *input.LogoURL)
	}
	if input.CoverURL != nil {
		urls = append(urls, *input.CoverURL)
	}
	ids := append([]string{}, input.StagingIDs...)
	return append(ids, media.ExtractStagingIDs(urls...)...)
}

func applyImages(place *models.Place, images media.ImageSet) {
	place.LogoURL = images.Logo
	place.CoverURL = images.Cover
	place.GalleryURLs = datatypes.JSONSlice[string](images.Gallery)
}

func applyPatch(place *models.Place, input UpdateInput) {
	if input.Name != nil {
		place.Name = *input.Name
	}
	if input.Kind != nil {
		place.Kind = *input.Kind
	}
	if input.Status != nil {
		place.Status = *input.Status
	}
	patchString(&place.Summary, input.Summary)
	patchString(&place.Description, input.Description)
	patchString(&place.Email, input.Email)
	patchString(&place.Phone, input.Phone)
	patchString(&place.Website, input.Website)
	patchString(&place.Street, input.Street)
	patchString(&place.PostalCode, input.PostalCode)
	patchString(&place.City, input.City)
	if input.Latitude != nil {
		place.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		place.Longitude = input.Longitude
	}
	if input.Social != nil {
		place.Social = datatypes.NewJSONType(input.Social.Normalized())
	}
}

// patchString sets *dst from a supplied value; a blank value clears the field.
func patchString(dst **string, value *string) {
	if value == nil {
		return
	}
	*dst = trimmedOrNil(value)
}
