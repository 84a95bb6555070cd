package object

import (
	"context"
	"errors"
	"io"
	"path"

	"legal-backend/internal/shared/util"
)

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Store saves and retrieves uploaded documents and their derived text.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// DocumentKey lays out the key of an uploaded file:
// documents/<hashed user>/<document id>/<sanitized name>.
func DocumentKey(userID, documentID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join("documents", util.OwnerKey(userID), documentID, name), nil
}

// TextKey is where the extracted text of the upload at key is kept.
func TextKey(key string) string {
	return key + ".txt"
}
