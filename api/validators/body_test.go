package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/errors"
)

type sampleBody struct {
	Name       string   `json:"name" validate:"required,max=10"`
	StagingIDs []string `json:"staging_ids" validate:"omitempty,dive,uuid"`
}

func TestDecodeJSONBodyReportsJSONFieldNames(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"staging_ids":["nope"]}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", pkgerrors.As(err).Details())
	}
	if details["name"] != "is required" {
		t.Fatalf("unexpected name detail %q", details["name"])
	}
	if details["staging_ids[0]"] != "must be a valid uuid" {
		t.Fatalf("unexpected staging detail %#v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"ok","extra":true}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"cafe"}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Name != "cafe" {
		t.Fatalf("unexpected name %q", body.Name)
	}
}
