package places

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/db/models"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/enums"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/pagination"
)

// slugConstraint names the unique index on places.slug; the sqlite driver
// reports the column instead.
var slugConstraint = []string{"places_slug_key", "places.slug"}

// Repository handles place persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to place operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listParams struct {
	Statuses []enums.PlaceStatus
	Kind     *enums.PlaceKind
	OwnerID  *uuid.UUID
	Limit    int
	Cursor   *pagination.Cursor
}

// SlugExists reports whether any place already uses slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Place{}).
		Where("slug = ?", slug).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByID loads a place with its schedule rows in canonical order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	var place models.Place
	if err := r.withHours(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&place).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

// FindBySlug loads a place by slug with its schedule rows.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Place, error) {
	var place models.Place
	if err := r.withHours(r.db.WithContext(ctx)).
		Where("slug = ?", slug).
		First(&place).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

// CreateWithTx inserts the place row. Schedule rows are written separately.
func (r *Repository) CreateWithTx(tx *gorm.DB, place *models.Place) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if place == nil {
		return fmt.Errorf("place is required")
	}
	return tx.Omit(clause.Associations).Create(place).Error
}

// UpdateWithTx writes every column of an existing place row. It returns
// gorm.ErrRecordNotFound when the row is gone, so a concurrent delete is
// never undone by an upsert.
func (r *Repository) UpdateWithTx(tx *gorm.DB, place *models.Place) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if place == nil || place.ID == uuid.Nil {
		return fmt.Errorf("place with id is required")
	}
	res := tx.Model(place).Select("*").Omit(clause.Associations, "id", "created_at").Updates(place)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceOpeningHoursWithTx deletes every schedule row of the place and
// inserts rows in their place.
func (r *Repository) ReplaceOpeningHoursWithTx(tx *gorm.DB, placeID uuid.UUID, rows []models.PlaceOpeningHour) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Where("place_id = ?", placeID).Delete(&models.PlaceOpeningHour{}).Error; err != nil {
		return fmt.Errorf("delete opening hours: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].PlaceID = placeID
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert opening hours: %w", err)
	}
	return nil
}

// DeleteWithTx removes the schedule rows then the place. It reports whether
// a place row was deleted.
func (r *Repository) DeleteWithTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	if tx == nil {
		return false, gorm.ErrInvalidTransaction
	}
	if err := tx.Where("place_id = ?", id).Delete(&models.PlaceOpeningHour{}).Error; err != nil {
		return false, fmt.Errorf("delete opening hours: %w", err)
	}
	res := tx.Where("id = ?", id).Delete(&models.Place{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List returns one page ordered by creation time, newest first, plus the
// cursor of the next page when more rows exist.
func (r *Repository) List(ctx context.Context, params listParams) ([]models.Place, *pagination.Cursor, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	q := r.withHours(r.db.WithContext(ctx).Model(&models.Place{}))

	if len(params.Statuses) > 0 {
		q = q.Where("status IN ?", params.Statuses)
	}
	if params.OwnerID != nil {
		q = q.Where("owner_id = ?", *params.OwnerID)
	}
	if params.Kind != nil {
		q = q.Where("kind = ?", *params.Kind)
	}
	if c := params.Cursor; c != nil {
		q = q.Where("((created_at < ?) OR (created_at = ? AND id < ?))", c.CreatedAt, c.CreatedAt, c.ID)
	}

	var rows []models.Place
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (r *Repository) withHours(q *gorm.DB) *gorm.DB {
	return q.Preload("OpeningHours", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}
