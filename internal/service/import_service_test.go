package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/climb-tracker/internal/healthstore"
	"alcyxob/climb-tracker/internal/storage"
)

func newImportService() (ImportService, *storage.MemoryStorage) {
	files := storage.NewMemoryStorage("uploads")
	ingest := NewIngestService(healthstore.NewMemorySource(), nil)
	return NewImportService(files, ingest, 0), files
}

func TestImport_CreateUploadURL(t *testing.T) {
	svc, _ := newImportService()

	ticket, err := svc.CreateUploadURL(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.ObjectKey, "imports/u1/"))
	assert.True(t, strings.HasSuffix(ticket.ObjectKey, ".fit"))
	assert.NotEmpty(t, ticket.UploadURL)
	assert.Equal(t, fitContentType, ticket.ContentType)

	_, err = svc.CreateUploadURL(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestImport_ConfirmRejectsForeignKeys(t *testing.T) {
	svc, files := newImportService()
	files.Put("imports/u2/a.fit", []byte("x"))

	for _, key := range []string{
		"imports/u2/a.fit",
		"imports/u1/../u2/a.fit",
		"imports/u1/a.txt",
		"other/u1/a.fit",
	} {
		_, err := svc.ConfirmImport(context.Background(), "u1", key)
		assert.ErrorIs(t, err, ErrImportAccessDenied, key)
	}
	assert.True(t, files.Has("imports/u2/a.fit"))
}

func TestImport_ConfirmMissingObject(t *testing.T) {
	svc, _ := newImportService()

	_, err := svc.ConfirmImport(context.Background(), "u1", "imports/u1/missing.fit")
	assert.ErrorIs(t, err, ErrImportNotFound)
}

func TestImport_ConfirmInvalidFile(t *testing.T) {
	svc, files := newImportService()
	files.Put("imports/u1/bad.fit", []byte("not a fit file at all"))

	_, err := svc.ConfirmImport(context.Background(), "u1", "imports/u1/bad.fit")
	assert.ErrorIs(t, err, ErrInvalidImport)
	assert.True(t, files.Has("imports/u1/bad.fit"), "undecodable uploads are kept")
}

// presignOnly has no PutObject, like the S3 backend.
type presignOnly struct{ storage.FileStorage }

func TestImport_UploadObject(t *testing.T) {
	ctx := context.Background()
	svc, files := newImportService()

	ticket, err := svc.CreateUploadURL(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, svc.UploadObject(ctx, "u1", ticket.ObjectKey, []byte("payload")))
	assert.True(t, files.Has(ticket.ObjectKey))

	err = svc.UploadObject(ctx, "u1", "imports/u2/a.fit", []byte("x"))
	assert.ErrorIs(t, err, ErrImportAccessDenied)
	assert.False(t, files.Has("imports/u2/a.fit"))

	err = svc.UploadObject(ctx, "u1", "imports/u1/big.fit", make([]byte, storage.MaxObjectSize+1))
	assert.ErrorIs(t, err, storage.ErrObjectTooLarge)

	s3Like := NewImportService(presignOnly{files}, NewIngestService(healthstore.NewMemorySource(), nil), 0)
	err = s3Like.UploadObject(ctx, "u1", "imports/u1/c.fit", []byte("x"))
	assert.ErrorIs(t, err, ErrDirectUploadUnsupported)
}
