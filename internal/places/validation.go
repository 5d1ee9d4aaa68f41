package places

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/enums"
	pkgerrors "github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/errors"
)

var validate = validator.New()

type fieldErrors map[string]string

// check runs one validator tag against value and records msg under field on
// failure.
func (f fieldErrors) check(field string, value any, tag, msg string) {
	if err := validate.Var(value, tag); err != nil {
		f[field] = msg
	}
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return pkgerrors.Validation(message, f)
}

// normalizeCreate trims the input in place and reports every invalid field.
func normalizeCreate(input *CreateInput) error {
	fields := fieldErrors{}

	input.Name = strings.TrimSpace(input.Name)
	checkName(fields, input.Name)

	if input.Kind == "" {
		input.Kind = enums.PlaceKindBusiness
	} else if kind, err := enums.ParsePlaceKind(string(input.Kind)); err != nil {
		fields["kind"] = kindMessage()
	} else {
		input.Kind = kind
	}

	for _, f := range []**string{
		&input.Summary, &input.Description, &input.Email, &input.Phone,
		&input.Website, &input.Street, &input.PostalCode, &input.City,
	} {
		*f = trimmedOrNil(*f)
	}
	checkEmail(fields, input.Email)
	checkCoordinates(fields, input.Latitude, input.Longitude)

	for i, id := range input.StagingIDs {
		fields.check(fmt.Sprintf("staging_ids[%d]", i), strings.TrimSpace(id), "uuid", "must be a staging id")
	}

	return fields.err("invalid place")
}

// normalizeUpdate validates supplied fields. Blank strings are kept: they
// clear the field, or for images mean "not supplied".
func normalizeUpdate(input *UpdateInput) error {
	fields := fieldErrors{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		checkName(fields, name)
		input.Name = &name
	}
	if input.Kind != nil {
		kind, err := enums.ParsePlaceKind(string(*input.Kind))
		if err != nil {
			fields["kind"] = kindMessage()
		} else {
			input.Kind = &kind
		}
	}
	if input.Status != nil {
		status, err := enums.ParsePlaceStatus(string(*input.Status))
		if err != nil {
			fields["status"] = "must be one of DRAFT, PENDING, ACTIVE, INACTIVE, ARCHIVED"
		} else {
			input.Status = &status
		}
	}
	checkEmail(fields, trimmedOrNil(input.Email))
	checkCoordinates(fields, input.Latitude, input.Longitude)

	return fields.err("invalid place update")
}

func checkName(fields fieldErrors, name string) {
	if name == "" {
		fields["name"] = "is required"
		return
	}
	fields.check("name", name, fmt.Sprintf("max=%d", maxNameLength), fmt.Sprintf("must be at most %d characters", maxNameLength))
}

func checkEmail(fields fieldErrors, email *string) {
	if email != nil {
		fields.check("email", *email, "email", "must be a valid email address")
	}
}

func checkCoordinates(fields fieldErrors, lat, lng *float64) {
	if lat != nil {
		fields.check("latitude", *lat, "latitude", "must be between -90 and 90")
	}
	if lng != nil {
		fields.check("longitude", *lng, "longitude", "must be between -180 and 180")
	}
}

func kindMessage() string {
	return "must be one of business, association, event"
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
