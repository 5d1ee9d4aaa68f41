package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/api/middleware"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/api/responses"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/media"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/auth"
	pkgerrors "github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/errors"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
)

// multipart envelope allowance on top of the file cap
const multipartOverhead = 1 << 20

// Uploader stores one image for the acting user.
type Uploader interface {
	Upload(ctx context.Context, actor auth.Actor, input media.UploadInput) (*media.UploadOutput, error)
	MaxBytes() int64
}

// UploadCreate accepts a multipart form with a "file" part and optional
// "place_id" or "staging_id" fields.
func UploadCreate(svc Uploader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, svc.MaxBytes()+multipartOverhead)
		if err := r.ParseMultipartForm(svc.MaxBytes()); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("file too large", map[string]string{"file": "exceeds the upload limit"}))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("file is required", map[string]string{"file": "is required"}))
			return
		}
		defer file.Close()

		input := media.UploadInput{
			StagingID: strings.TrimSpace(r.FormValue("staging_id")),
			FileName:  header.Filename,
			MimeType:  header.Header.Get("Content-Type"),
			SizeBytes: header.Size,
			Body:      file,
		}
		if raw := strings.TrimSpace(r.FormValue("place_id")); raw != "" {
			placeID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("invalid place_id", map[string]string{"place_id": "must be a valid uuid"}))
				return
			}
			input.PlaceID = &placeID
		}

		out, err := svc.Upload(r.Context(), middleware.ActorFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}
