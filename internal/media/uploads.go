package media

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/auth"
	pkgerrors "github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/errors"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage"
	"github.com/google/uuid"
)

const maxFileNameLength = 120

// PlaceAssetResolver returns the permanent asset directory of a place the
// actor may edit, or a NotFound/Forbidden error.
type PlaceAssetResolver interface {
	AssetDir(ctx context.Context, actor auth.Actor, placeID uuid.UUID) (string, error)
}

// UploadInput describes one uploaded image.
type UploadInput struct {
	PlaceID   *uuid.UUID
	StagingID string
	FileName  string
	MimeType  string
	SizeBytes int64
	Body      io.Reader
}

// UploadOutput is returned to the client after a successful upload.
type UploadOutput struct {
	StagingID string `json:"staging_id,omitempty"`
	PlaceID   string `json:"place_id,omitempty"`
	Path      string `json:"path"`
	URL       string `json:"url"`
	CloudURL  string `json:"cloud_url,omitempty"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// Uploader stores images either in a staging area or directly in the
// permanent area of an existing place.
type Uploader struct {
	store    storage.Store
	places   PlaceAssetResolver
	maxBytes int64
	logg     *logger.Logger
	newID    func() (uuid.UUID, error)
}

// NewUploader constructs the staged upload service.
func NewUploader(store storage.Store, places PlaceAssetResolver, maxBytes int64, logg *logger.Logger) (*Uploader, error) {
	if store == nil {
		return nil, fmt.Errorf("storage store required")
	}
	if places == nil {
		return nil, fmt.Errorf("place asset resolver required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	return &Uploader{
		store:    store,
		places:   places,
		maxBytes: maxBytes,
		logg:     logg,
		newID:    uuid.NewV7,
	}, nil
}

// MaxBytes exposes the configured upload cap.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

func (u *Uploader) Upload(ctx context.Context, actor auth.Actor, input UploadInput) (*UploadOutput, error) {
	if actor.IsAnonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.Body == nil {
		return nil, pkgerrors.Validation("file is required", map[string]string{"file": "required"})
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.Validation("file is empty", map[string]string{"file": "must not be empty"})
	}
	if input.SizeBytes > u.maxBytes {
		return nil, pkgerrors.Validation("file too large", map[string]string{
			"file": fmt.Sprintf("must be at most %d bytes", u.maxBytes),
		})
	}

	mimeType, err := sniffMimeType(input.MimeType)
	if err != nil || !isAllowedImage(mimeType) {
		return nil, pkgerrors.Validation("unsupported file type", map[string]string{
			"file": "must be one of " + allowedImageDescription,
		})
	}

	out := &UploadOutput{MimeType: mimeType, SizeBytes: input.SizeBytes}

	var dir string
	switch {
	case input.PlaceID != nil:
		if strings.TrimSpace(input.StagingID) != "" {
			return nil, pkgerrors.Validation("place_id and staging_id are exclusive", map[string]string{
				"staging_id": "must be empty when place_id is set",
			})
		}
		dir, err = u.places.AssetDir(ctx, actor, *input.PlaceID)
		if err != nil {
			return nil, err
		}
		out.PlaceID = input.PlaceID.String()
	default:
		stagingID, err := u.stagingID(input.StagingID)
		if err != nil {
			return nil, err
		}
		dir = storage.StagingDir(stagingID)
		out.StagingID = stagingID
	}

	name, err := u.objectName(input.FileName, mimeType)
	if err != nil {
		return nil, err
	}

	body := io.LimitReader(input.Body, u.maxBytes+1)
	obj, err := u.store.Save(ctx, body, path.Join(dir, name), mimeType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "store upload")
	}

	out.Path = obj.Path
	out.URL = obj.URL
	out.CloudURL = obj.CloudURL
	out.FileName = name

	if u.logg != nil {
		u.logg.Info(u.logg.WithFields(ctx, map[string]any{
			"path":       obj.Path,
			"mime_type":  mimeType,
			"size_bytes": input.SizeBytes,
		}), "asset uploaded")
	}
	return out, nil
}

func (u *Uploader) stagingID(provided string) (string, error) {
	provided = strings.TrimSpace(provided)
	if provided == "" {
		id, err := u.newID()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate staging id")
		}
		return id.String(), nil
	}
	id, err := uuid.Parse(provided)
	if err != nil || id.Version() != 7 {
		return "", pkgerrors.Validation("invalid staging_id", map[string]string{
			"staging_id": "must be a staging id returned by a previous upload",
		})
	}
	return id.String(), nil
}

// objectName prefixes the sanitized client file name with a short random token
// so repeated uploads of the same file never overwrite each other.
func (u *Uploader) objectName(fileName, mimeType string) (string, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate file token")
	}
	prefix := hex.EncodeToString(token[:4])

	clean := sanitizeFileName(fileName)
	if clean == "" {
		return prefix + extensionFor(mimeType), nil
	}
	if runes := []rune(clean); len(runes) > maxFileNameLength {
		clean = strings.TrimLeft(string(runes[len(runes)-maxFileNameLength:]), "-_.")
	}
	if path.Ext(clean) == "" {
		clean += extensionFor(mimeType)
	}
	return prefix + "-" + clean, nil
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "" || clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || r == '?' || r == '#' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
