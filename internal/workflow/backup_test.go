package workflow

import (
	"context"
	"errors"
	"net/http"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bigid-apps/quickstart/internal/backupapi"
	"github.com/bigid-apps/quickstart/internal/bigid"
	"github.com/bigid-apps/quickstart/internal/bigid/bigidtest"
	"github.com/bigid-apps/quickstart/internal/cases"
	"github.com/bigid-apps/quickstart/internal/execution"
)

const (
	casesRoute     = "actionable-insights/all-cases"
	policiesRoute  = "compliance-rules"
	catalogRoute   = "data-catalog/"
	sourceRoute    = "ds_connections/s3 west documents"
	tagPairsRoute  = "data-catalog/tags/all-pairs"
	tagWriteRoute  = "data-catalog/manual-fields/tags"
	statusRoute    = "tpa/4444/executions/1111"
	backupRoute    = "files/"
	firstCaseID    = "9999a999999aa9999a99a999"
	secondCaseID   = "8888b888888bb8888b88b888"
	backupTagName  = "Backed Up"
	objectFullName = "s3 west documents.bigid-presaleswest-sandbox-pub/documents/RFI/031518_wifi-rfi.pdf"
)

type workflowFixture struct {
	bigid  *bigidtest.Server
	backup *bigidtest.Server
	runner *Runner
	ec     *execution.Context
}

// newWorkflowFixture serves two open cases with one affected object each.
// The catalog answers the two enrichment lookups with the object and every
// later lookup with nothing, as if the backup emptied both cases.
func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	host := bigidtest.NewServer(t)
	host.HandleJSON(http.MethodGet, casesRoute, http.StatusOK, bigidtest.CasesPage(
		bigidtest.Case(),
		bigidtest.CaseWith(bigidtest.Object{"id": secondCaseID, "caseLabel": "Passwords detected on s3-v2 (2)"}),
	))
	host.HandleJSON(http.MethodGet, policiesRoute, http.StatusOK, bigidtest.Policies("Passwords"))
	withObject := bigidtest.JSON(http.StatusOK, bigidtest.CatalogPage(bigidtest.DefaultObject()))
	host.Handle(http.MethodGet, catalogRoute, bigidtest.Sequence(
		withObject, withObject,
		bigidtest.JSON(http.StatusOK, bigidtest.CatalogPage()),
	))
	host.HandleJSON(http.MethodGet, sourceRoute, http.StatusOK, bigidtest.RoleConnection("s3 west documents"))
	host.HandleJSON(http.MethodGet, tagPairsRoute, http.StatusOK, bigidtest.TagPairs(
		bigidtest.TagPair("t-1", "v-false", backupTagName, "False"),
		bigidtest.TagPair("t-1", "v-true", backupTagName, "True"),
		bigidtest.TagPair("t-2", "v-other", backupTagName+" Later", "True"),
	))
	host.HandleJSON(http.MethodPost, tagWriteRoute, http.StatusOK, bigidtest.Object{"status": "success"})
	host.HandleJSON(http.MethodPatch, "actionable-insights/case-status/"+firstCaseID, http.StatusOK, bigidtest.Object{})
	host.HandleJSON(http.MethodPatch, "actionable-insights/case-status/"+secondCaseID, http.StatusOK, bigidtest.Object{})
	host.HandleJSON(http.MethodPut, statusRoute, http.StatusOK, bigidtest.Object{})

	backup := bigidtest.NewServer(t)
	backup.HandleJSON(http.MethodPost, backupRoute, http.StatusCreated, bigidtest.BackupAnswer(
		[]bigidtest.Object{bigidtest.BackupFile("6492b505fff133057d0893c7", objectFullName)},
		[]bigidtest.Object{bigidtest.BackupFile("a", "old/a"), bigidtest.BackupFile("b", "old/b")},
	))

	logger := zaptest.NewLogger(t)
	hostClient := bigid.NewClient(bigid.Options{Logger: logger})
	backupClient := backupapi.NewClient(bigid.NewClient(bigid.Options{Service: "backup", BearerAuth: true, Logger: logger}))
	runner := NewRunner(hostClient, cases.NewService(hostClient, cases.DefaultPageLimit, logger), backupClient, logger)

	ec := bigidtest.Context(host.BaseURL(), "Backup files (DSPM)",
		bigidtest.Param(ParamDataSourceTypes, "all"),
		bigidtest.Param(ParamPolicyName, "  Passwords "),
		bigidtest.Param(ParamBackupTag, " "+backupTagName+" "),
		bigidtest.Param(backupapi.ParamURL, backup.BaseURL()),
		bigidtest.Param(backupapi.ParamToken, "backup-token"),
	)
	return &workflowFixture{bigid: host, backup: backup, runner: runner, ec: ec}
}

func statusUpdates(t *testing.T, f *workflowFixture) []execution.Response {
	t.Helper()
	var out []execution.Response
	for _, call := range f.bigid.Calls(http.MethodPut, statusRoute) {
		var r execution.Response
		require.NoError(t, json.Unmarshal(call.Body, &r))
		out = append(out, r)
	}
	return out
}

func TestBackupFilesAction(t *testing.T) {
	t.Run("should summarize backups, tags and remediations", func(t *testing.T) {
		f := newWorkflowFixture(t)

		message, err := f.runner.BackupFilesAction(context.Background(), f.ec)
		require.NoError(t, err)
		assert.Equal(t, "4 file(s) already backed up. 2 file(s) backed up. 2 tag(s) updated. 2 case(s) remediated.", message)

		assert.Equal(t, 2, f.backup.Count(http.MethodPost, backupRoute))
		assert.Equal(t, 2, f.bigid.Count(http.MethodPost, tagWriteRoute))
		assert.Equal(t, 1, f.bigid.Count(http.MethodGet, tagPairsRoute), "the tag is resolved once per run")
		assert.Equal(t, 1, f.bigid.Count(http.MethodPatch, "actionable-insights/case-status/"+firstCaseID))
		assert.Equal(t, 1, f.bigid.Count(http.MethodPatch, "actionable-insights/case-status/"+secondCaseID))
	})

	t.Run("should report progress per case and then completion", func(t *testing.T) {
		f := newWorkflowFixture(t)
		message, err := f.runner.BackupFilesAction(context.Background(), f.ec)
		require.NoError(t, err)

		assert.Equal(t, []execution.Response{
			{ExecutionID: "1111", Status: execution.StatusInProgress, Progress: 0.5, Message: "Backing up files from case 1/2"},
			{ExecutionID: "1111", Status: execution.StatusInProgress, Progress: 1, Message: "Backing up files from case 2/2"},
			{ExecutionID: "1111", Status: execution.StatusCompleted, Progress: 1, Message: message},
		}, statusUpdates(t, f))
	})

	t.Run("should send trimmed filters and exact payloads", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.runner.BackupFilesAction(context.Background(), f.ec)
		require.NoError(t, err)

		var filter []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(f.bigid.Calls(http.MethodGet, casesRoute)[0].Query["filter"][0]), &filter))
		require.Len(t, filter, 2, "all data sources means no data source clause")
		assert.Equal(t, []interface{}{"Passwords"}, filter[1]["value"])

		assert.Equal(t, backupTagName, f.bigid.Calls(http.MethodGet, tagPairsRoute)[0].Query.Get("search"))

		tagCall := f.bigid.Calls(http.MethodPost, tagWriteRoute)[0]
		assert.JSONEq(t,
			`{"data":[{"type":"OBJECT","fullyQualifiedName":"`+objectFullName+`","tags":[{"tagId":"t-1","valueId":"v-true"}]}]}`,
			string(tagCall.Body))

		backupCall := f.backup.Calls(http.MethodPost, backupRoute)[0]
		assert.Equal(t, "Bearer backup-token", backupCall.Header.Get("Authorization"))
		assert.JSONEq(t, `{"data":[{"id":"6492b505fff133057d0893c7","path":"`+objectFullName+`"}]}`, string(backupCall.Body))

		patch := f.bigid.Calls(http.MethodPatch, "actionable-insights/case-status/"+firstCaseID)[0]
		assert.JSONEq(t, `{"caseStatus":"remediated","auditReason":"All affected objects were backed up."}`, string(patch.Body))
	})

	t.Run("should reject a failed tag write with the object name", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.bigid.Handle(http.MethodPost, tagWriteRoute, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"tag is read only"}`))
		})

		_, err := f.runner.BackupFilesAction(context.Background(), f.ec)
		require.Error(t, err)
		assert.Equal(t,
			"Failed to update tags for object "+objectFullName+`. Bad response from BigID API. Status: 400. Errors: {"message":"tag is read only"}.`,
			err.Error())
		assert.True(t, errors.Is(err, bigid.ErrBadStatus))

		// Nothing after the failure runs, but the first backup already happened.
		assert.Equal(t, 1, f.backup.Count(http.MethodPost, backupRoute))
		updates := statusUpdates(t, f)
		require.Len(t, updates, 1)
		assert.Equal(t, execution.StatusInProgress, updates[0].Status)
	})

	t.Run("should fail when the tag does not exist", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.bigid.HandleJSON(http.MethodGet, tagPairsRoute, http.StatusOK, bigidtest.TagPairs(
			bigidtest.TagPair("t-1", "v-false", backupTagName, "False"),
		))

		_, err := f.runner.BackupFilesAction(context.Background(), f.ec)
		require.Error(t, err)
		assert.Equal(t, "Failed to fetch tags from BigID. BigID API found no tag with name: Backed Up and value: True.", err.Error())
		assert.True(t, errors.Is(err, bigid.ErrNotFound))
		assert.Equal(t, 0, f.backup.Count(http.MethodPost, backupRoute))
	})

	t.Run("should abort when the backup API fails", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.backup.Handle(http.MethodPost, backupRoute, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := f.runner.BackupFilesAction(context.Background(), f.ec)
		require.Error(t, err)
		assert.Equal(t, "Failed to back up files. Bad response from backup API. Status: 500.", err.Error())
		assert.Equal(t, 0, f.bigid.Count(http.MethodPost, tagWriteRoute))
	})

	t.Run("should abort when a status update fails", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.bigid.Handle(http.MethodPut, statusRoute, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := f.runner.BackupFilesAction(context.Background(), f.ec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Failed to update action status in BigID.")
		assert.Equal(t, 0, f.backup.Count(http.MethodPost, backupRoute))
	})

	t.Run("should pass case lookup failures through", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.bigid.HandleJSON(http.MethodGet, casesRoute, http.StatusOK, bigidtest.CasesPage())

		_, err := f.runner.BackupFilesAction(context.Background(), f.ec)
		require.Error(t, err)
		assert.Equal(t, "Failed to fetch cases from BigID. No BigID cases were found. Please ensure you selected valid data sources. Data sources: all. Policy: Passwords.", err.Error())
	})
}

func TestRemediateCasesWithNoAffectedObjects(t *testing.T) {
	f := newWorkflowFixture(t)
	// Only the second case has been emptied.
	withObject := bigidtest.JSON(http.StatusOK, bigidtest.CatalogPage(bigidtest.DefaultObject()))
	f.bigid.Handle(http.MethodGet, catalogRoute, bigidtest.Sequence(
		withObject,
		bigidtest.JSON(http.StatusOK, bigidtest.CatalogPage()),
	))
	list := []cases.Case{
		{ID: firstCaseID, CaseLabel: "first", DataSourceName: "s3 west documents", PolicyName: "Passwords"},
		{ID: secondCaseID, CaseLabel: "second", DataSourceName: "s3 west documents", PolicyName: "Passwords"},
	}

	n, err := f.runner.RemediateCasesWithNoAffectedObjects(context.Background(), f.ec, list, RemediationReason)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, f.bigid.Count(http.MethodPatch, "actionable-insights/case-status/"+firstCaseID))
	assert.Equal(t, 1, f.bigid.Count(http.MethodPatch, "actionable-insights/case-status/"+secondCaseID))
}

func TestRemediateEscapesCaseID(t *testing.T) {
	f := newWorkflowFixture(t)
	f.bigid.HandleJSON(http.MethodGet, catalogRoute, http.StatusOK, bigidtest.CatalogPage())
	const id = "case/1 a"
	f.bigid.HandleJSON(http.MethodPatch, "actionable-insights/case-status/"+id, http.StatusOK, bigidtest.Object{})
	list := []cases.Case{{ID: id, CaseLabel: "odd", DataSourceName: "s3 west documents", PolicyName: "Passwords"}}

	n, err := f.runner.RemediateCasesWithNoAffectedObjects(context.Background(), f.ec, list, RemediationReason)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	calls := f.bigid.Calls(http.MethodPatch, "actionable-insights/case-status/"+id)
	require.Len(t, calls, 1)
	assert.Equal(t, bigidtest.APIPrefix+"actionable-insights/case-status/case%2F1%20a", calls[0].EscapedPath)
}

func TestSummaryMessage(t *testing.T) {
	s := Summary{Backups: backupapi.Result{NumFound: 4, NumCreated: 2}, TagsUpdated: 2, Remediated: 2}
	assert.Equal(t, "4 file(s) already backed up. 2 file(s) backed up. 2 tag(s) updated. 2 case(s) remediated.", s.Message())
	assert.Equal(t, "0 file(s) already backed up. 0 file(s) backed up. 0 tag(s) updated. 0 case(s) remediated.", Summary{}.Message())
}
