package backupapi

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bigid-apps/quickstart/internal/bigid"
	"github.com/bigid-apps/quickstart/internal/bigid/bigidtest"
)

func newBackupClient(t *testing.T) *Client {
	return NewClient(bigid.NewClient(bigid.Options{
		Service:    "backup",
		BearerAuth: true,
		Logger:     zaptest.NewLogger(t),
	}))
}

func TestBackupFiles(t *testing.T) {
	fake := bigidtest.NewServer(t)
	client := newBackupClient(t)
	ec := bigidtest.Context("https://bigidapi/api/v1/", "Backup files (DSPM)",
		bigidtest.Param(ParamURL, fake.BaseURL()),
		bigidtest.Param(ParamToken, "backup-token"),
	)
	files := []File{{ID: "6492b505fff133057d0893c7", Path: "s3 west documents.bucket/a.pdf"}}

	t.Run("should post files with a bearer token", func(t *testing.T) {
		fake.HandleJSON(http.MethodPost, "files/", http.StatusCreated, bigidtest.BackupAnswer(
			[]bigidtest.Object{bigidtest.BackupFile("6492b505fff133057d0893c7", "s3 west documents.bucket/a.pdf")},
			nil,
		))

		result, err := client.BackupFiles(context.Background(), TargetFrom(ec), files)
		require.NoError(t, err)

		want := Result{BackupsCreated: files, BackupsFound: []File{}, NumCreated: 1}
		if diff := cmp.Diff(want, result); diff != "" {
			t.Errorf("BackupFiles() mismatch (-want +got):\n%s", diff)
		}

		call := fake.Calls(http.MethodPost, "files/")[0]
		assert.Equal(t, "Bearer backup-token", call.Header.Get("Authorization"))
		assert.JSONEq(t, `{"data":[{"id":"6492b505fff133057d0893c7","path":"s3 west documents.bucket/a.pdf"}]}`, string(call.Body))
	})

	t.Run("should report a bad status from the backup API", func(t *testing.T) {
		fake.Handle(http.MethodPost, "files/", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"Invalid token."}`, http.StatusUnauthorized)
		})

		_, err := client.BackupFiles(context.Background(), TargetFrom(ec), files)
		require.Error(t, err)
		assert.Equal(t, `Failed to back up files. Bad response from backup API. Status: 401. Errors: {"detail":"Invalid token."}.`, err.Error())
		assert.True(t, errors.Is(err, bigid.ErrBadStatus))
	})

	t.Run("should reject a malformed answer", func(t *testing.T) {
		fake.HandleJSON(http.MethodPost, "files/", http.StatusCreated, bigidtest.Object{
			"backups_created": []interface{}{bigidtest.Object{"id": "1"}},
		})

		_, err := client.BackupFiles(context.Background(), TargetFrom(ec), files)
		assert.True(t, errors.Is(err, bigid.ErrMalformedResponse), "got %v", err)
		assert.Contains(t, err.Error(), "Malformed response from backup API")
		assert.NotContains(t, err.Error(), "BigID")
	})

	t.Run("should not call the API without files", func(t *testing.T) {
		before := fake.Count(http.MethodPost, "files/")
		result, err := client.BackupFiles(context.Background(), TargetFrom(ec), nil)
		require.NoError(t, err)
		assert.Zero(t, result.NumCreated)
		assert.Equal(t, before, fake.Count(http.MethodPost, "files/"))
	})

	t.Run("should require the URL parameter", func(t *testing.T) {
		bare := bigidtest.Context("https://bigidapi/api/v1/", "Backup files (DSPM)")
		_, err := client.BackupFiles(context.Background(), TargetFrom(bare), files)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"Backup API URL"`)
	})
}

func TestResultAdd(t *testing.T) {
	var total Result
	total.Add(Result{BackupsCreated: []File{{ID: "1", Path: "a"}}, BackupsFound: []File{{ID: "2", Path: "b"}, {ID: "3", Path: "c"}}, NumCreated: 1, NumFound: 2})
	total.Add(Result{BackupsCreated: []File{{ID: "4", Path: "d"}}, BackupsFound: []File{{ID: "5", Path: "e"}, {ID: "6", Path: "f"}}, NumCreated: 1, NumFound: 2})

	assert.Equal(t, 2, total.NumCreated)
	assert.Equal(t, 4, total.NumFound)
	assert.Len(t, total.BackupsCreated, 2)
	assert.Len(t, total.BackupsFound, 4)
}
