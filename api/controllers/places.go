package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/api/middleware"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/api/responses"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/api/validators"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/places"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/schedule"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/auth"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/enums"
	pkgerrors "github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/errors"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/types"
)

const maxPageSize = 100

// PlaceService is the lifecycle surface the HTTP handlers depend on.
type PlaceService interface {
	Create(ctx context.Context, actor auth.Actor, input places.CreateInput) (*places.Result, error)
	Update(ctx context.Context, actor auth.Actor, placeID uuid.UUID, input places.UpdateInput) (*places.Result, error)
	Delete(ctx context.Context, actor auth.Actor, placeID uuid.UUID) (*places.Result, error)
	Get(ctx context.Context, actor auth.Actor, ref string) (*places.PlaceDTO, error)
	List(ctx context.Context, actor auth.Actor, filter places.ListFilter) (*places.ListResult, error)
}

type slotRequest struct {
	OpenTime  *string `json:"open_time,omitempty"`
	CloseTime *string `json:"close_time,omitempty"`
}

type openingHourRequest struct {
	DayOfWeek string        `json:"day_of_week"`
	OpenTime  *string       `json:"open_time,omitempty"`
	CloseTime *string       `json:"close_time,omitempty"`
	IsClosed  bool          `json:"is_closed"`
	Slots     []slotRequest `json:"slots,omitempty"`
}

type placeCreateRequest struct {
	Name         string               `json:"name" validate:"required,max=200"`
	Kind         string               `json:"kind"`
	Summary      *string              `json:"summary,omitempty"`
	Description  *string              `json:"description,omitempty"`
	Email        *string              `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string              `json:"phone,omitempty"`
	Website      *string              `json:"website,omitempty"`
	Street       *string              `json:"street,omitempty"`
	PostalCode   *string              `json:"postal_code,omitempty"`
	City         *string              `json:"city,omitempty"`
	Latitude     *float64             `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64             `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Social       *types.Social        `json:"social,omitempty"`
	LogoURL      *string              `json:"logo_url,omitempty"`
	CoverURL     *string              `json:"cover_url,omitempty"`
	Gallery      []string             `json:"gallery,omitempty" validate:"omitempty,max=50"`
	OpeningHours []openingHourRequest `json:"opening_hours,omitempty"`
	StagingIDs   []string             `json:"staging_ids,omitempty" validate:"omitempty,max=20,dive,uuid"`
	ForClaim     bool                 `json:"for_claim,omitempty"`
}

func (r placeCreateRequest) toInput() places.CreateInput {
	return places.CreateInput{
		Name:         r.Name,
		Kind:         enums.PlaceKind(strings.ToLower(strings.TrimSpace(r.Kind))),
		Summary:      r.Summary,
		Description:  r.Description,
		Email:        r.Email,
		Phone:        r.Phone,
		Website:      r.Website,
		Street:       r.Street,
		PostalCode:   r.PostalCode,
		City:         r.City,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Social:       r.Social,
		LogoURL:      r.LogoURL,
		CoverURL:     r.CoverURL,
		Gallery:      r.Gallery,
		OpeningHours: toDayInputs(r.OpeningHours),
		StagingIDs:   r.StagingIDs,
		ForClaim:     r.ForClaim,
	}
}

type placeUpdateRequest struct {
	Name         *string               `json:"name,omitempty" validate:"omitempty,max=200"`
	Kind         *string               `json:"kind,omitempty"`
	Status       *string               `json:"status,omitempty"`
	Summary      *string               `json:"summary,omitempty"`
	Description  *string               `json:"description,omitempty"`
	Email        *string               `json:"email,omitempty" validate:"omitempty,len=0|email"`
	Phone        *string               `json:"phone,omitempty"`
	Website      *string               `json:"website,omitempty"`
	Street       *string               `json:"street,omitempty"`
	PostalCode   *string               `json:"postal_code,omitempty"`
	City         *string               `json:"city,omitempty"`
	Latitude     *float64              `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64              `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Social       *types.Social         `json:"social,omitempty"`
	LogoURL      *string               `json:"logo_url,omitempty"`
	CoverURL     *string               `json:"cover_url,omitempty"`
	Gallery      *[]string             `json:"gallery,omitempty" validate:"omitempty,max=50"`
	OpeningHours *[]openingHourRequest `json:"opening_hours,omitempty"`
}

func (r placeUpdateRequest) toInput() (places.UpdateInput, error) {
	input := places.UpdateInput{
		Name:        r.Name,
		Summary:     r.Summary,
		Description: r.Description,
		Email:       r.Email,
		Phone:       r.Phone,
		Website:     r.Website,
		Street:      r.Street,
		PostalCode:  r.PostalCode,
		City:        r.City,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Social:      r.Social,
		LogoURL:     r.LogoURL,
		CoverURL:    r.CoverURL,
		Gallery:     r.Gallery,
	}
	if r.Kind != nil {
		kind := enums.PlaceKind(strings.ToLower(strings.TrimSpace(*r.Kind)))
		input.Kind = &kind
	}
	if r.Status != nil {
		status, err := enums.ParsePlaceStatus(*r.Status)
		if err != nil {
			return places.UpdateInput{}, pkgerrors.Validation("invalid status", map[string]string{"status": "is invalid"})
		}
		input.Status = &status
	}
	if r.OpeningHours != nil {
		days := toDayInputs(*r.OpeningHours)
		if days == nil {
			days = []schedule.DayInput{}
		}
		input.OpeningHours = &days
	}
	return input, nil
}

func toDayInputs(rows []openingHourRequest) []schedule.DayInput {
	if rows == nil {
		return nil
	}
	out := make([]schedule.DayInput, 0, len(rows))
	for _, row := range rows {
		day := schedule.DayInput{
			DayOfWeek: row.DayOfWeek,
			OpenTime:  row.OpenTime,
			CloseTime: row.CloseTime,
			IsClosed:  row.IsClosed,
		}
		for _, slot := range row.Slots {
			day.Slots = append(day.Slots, schedule.SlotInput{OpenTime: slot.OpenTime, CloseTime: slot.CloseTime})
		}
		out = append(out, day)
	}
	return out
}

// PlaceList returns a cursor page of places visible to the caller.
func PlaceList(svc PlaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseListFilter(r *http.Request) (places.ListFilter, error) {
	var filter places.ListFilter

	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxPageSize)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit

	mine, err := validators.ParseQueryBool(r, "mine")
	if err != nil {
		return filter, err
	}
	filter.Mine = mine

	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParsePlaceStatus(raw)
		if err != nil {
			return filter, pkgerrors.Validation("invalid status filter", map[string]string{"status": "is invalid"})
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("kind")); raw != "" {
		kind, err := enums.ParsePlaceKind(raw)
		if err != nil {
			return filter, pkgerrors.Validation("invalid kind filter", map[string]string{"kind": "is invalid"})
		}
		filter.Kind = &kind
	}
	filter.Cursor = strings.TrimSpace(query.Get("cursor"))
	return filter, nil
}

// PlaceGet resolves a place by id or slug.
func PlaceGet(svc PlaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimSpace(chi.URLParam(r, "ref"))
		place, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, place)
	}
}

// PlaceCreate submits a new place.
func PlaceCreate(svc PlaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload placeCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PlaceUpdate applies a partial update.
func PlaceUpdate(svc PlaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID, err := validators.ParseUUIDParam(r, "placeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), placeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PlaceDelete removes a place and its assets.
func PlaceDelete(svc PlaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID, err := validators.ParseUUIDParam(r, "placeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), placeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
