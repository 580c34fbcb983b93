package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/social-api/internal/apperr"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var allowedImageTypes = map[string]struct{}{
	"jpg": {}, "png": {},
}

// MediaCleaner removes objects that no committed record references any more.
// Implementations must not block on the object store.
type MediaCleaner interface {
	Cleanup(ctx context.Context, keys ...string)
}

// readImage loads an uploaded file and checks its magic bytes are JPEG or PNG.
func readImage(file *multipart.FileHeader) ([]byte, string, error) {
	if file == nil {
		return nil, "", apperr.Validation("No file uploaded")
	}

	content, err := file.Open()
	if err != nil {
		slog.Info(err.Error())
		return nil, "", apperr.Validation("Unable to read uploaded file")
	}
	defer content.Close()

	fileBytes, err := io.ReadAll(content)
	if err != nil {
		slog.Info(err.Error())
		return nil, "", apperr.Validation("Unable to read uploaded file")
	}

	return sniffImage(fileBytes)
}

func sniffImage(fileBytes []byte) ([]byte, string, error) {
	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, "", apperr.Validation("Invalid file type, only JPEG and PNG types are allowed")
	}
	if _, ok := allowedImageTypes[fileType.Extension]; !ok {
		return nil, "", apperr.Validation("Invalid file type, only JPEG and PNG types are allowed")
	}
	return fileBytes, fileType.MIME.Value, nil
}

// uploadImage validates file and stores it under prefix, returning its URL and key.
func uploadImage(ctx context.Context, store ObjectStore, prefix string, file *multipart.FileHeader) (string, string, error) {
	fileBytes, mimeType, err := readImage(file)
	if err != nil {
		return "", "", err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", "", apperr.Internal("Unable to generate object key", err)
	}
	key := fmt.Sprintf("%s/%s", prefix, id)

	url, err := store.Upload(ctx, key, fileBytes, mimeType)
	if err != nil {
		return "", "", apperr.Upstream("File upload failed", err)
	}
	return url, key, nil
}
