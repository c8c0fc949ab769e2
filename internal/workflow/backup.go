// File: internal/workflow/backup.go
package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bigid-apps/quickstart/internal/backupapi"
	"github.com/bigid-apps/quickstart/internal/bigid"
	"github.com/bigid-apps/quickstart/internal/cases"
	"github.com/bigid-apps/quickstart/internal/execution"
)

// Action parameters read by BackupFilesAction.
const (
	ParamDataSourceTypes = "Data Source Types"
	ParamPolicyName      = "Policy Name"
	ParamBackupTag       = "Backup Tag"
)

// RemediationReason is the audit text recorded on cases closed by a backup.
const RemediationReason = "All affected objects were backed up."

// HostAPI is the BigID accessor surface the workflow writes through.
type HostAPI interface {
	cases.API
	PostJSON(ctx context.Context, target bigid.Target, path string, body interface{}) (*bigid.Response, error)
	Patch(ctx context.Context, target bigid.Target, urlOrPath string, body interface{}) (*bigid.Response, error)
	UpdateActionStatus(ctx context.Context, ec *execution.Context, status execution.Response) error
}

// CaseSource provides enriched cases and fresh affected-object lookups.
type CaseSource interface {
	GetBigIDCases(ctx context.Context, ec *execution.Context, dataSources []string, policyName string) ([]cases.Case, error)
	GetAffectedObjects(ctx context.Context, ec *execution.Context, c *cases.Case) ([]cases.CatalogObject, error)
}

// Backuper stores files in the backup API.
type Backuper interface {
	BackupFiles(ctx context.Context, target bigid.Target, files []backupapi.File) (backupapi.Result, error)
}

// Runner runs the backup and tagging workflow. Each step waits for the
// previous one; any failure ends the run and leaves the remote changes
// already made in place.
type Runner struct {
	api     HostAPI
	cases   CaseSource
	backups Backuper
	logger  *zap.Logger
}

func NewRunner(api HostAPI, source CaseSource, backups Backuper, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{api: api, cases: source, backups: backups, logger: logger.Named("workflow")}
}

// Summary counts what a backup run did.
type Summary struct {
	Backups     backupapi.Result
	TagsUpdated int
	Remediated  int
}

// Message is the text reported to BigID when the run completes.
func (s Summary) Message() string {
	return fmt.Sprintf("%d file(s) already backed up. %d file(s) backed up. %d tag(s) updated. %d case(s) remediated.",
		s.Backups.NumFound, s.Backups.NumCreated, s.TagsUpdated, s.Remediated)
}

// BackupFilesAction backs up the affected objects of the matching open
// cases, tags them, closes the cases left without affected objects and
// returns the summary message.
func (r *Runner) BackupFilesAction(ctx context.Context, ec *execution.Context) (string, error) {
	dataSources := cases.ParseDataSourceFilter(execution.GetStringActionParam(ec, ParamDataSourceTypes))
	policyName := strings.TrimSpace(execution.GetStringActionParam(ec, ParamPolicyName))
	tagName := strings.TrimSpace(execution.GetStringActionParam(ec, ParamBackupTag))

	list, err := r.cases.GetBigIDCases(ctx, ec, dataSources, policyName)
	if err != nil {
		return "", err
	}
	tag, err := r.ResolveTag(ctx, ec, tagName, TagValueTrue)
	if err != nil {
		return "", err
	}

	var summary Summary
	backupTarget := backupapi.TargetFrom(ec)
	total := len(list)

	for i := range list {
		c := &list[i]
		progress := execution.InProgress(ec.ExecutionID, float64(i+1)/float64(total),
			fmt.Sprintf("Backing up files from case %d/%d", i+1, total))
		if err := r.api.UpdateActionStatus(ctx, ec, progress); err != nil {
			return "", err
		}

		files := make([]backupapi.File, 0, len(c.AffectedObjects))
		for _, obj := range c.AffectedObjects {
			files = append(files, backupapi.File{ID: obj.ID, Path: obj.FullyQualifiedName})
		}
		result, err := r.backups.BackupFiles(ctx, backupTarget, files)
		if err != nil {
			return "", err
		}
		summary.Backups.Add(result)

		tagged, err := r.SetTagsOnObjects(ctx, ec, tag, c.AffectedObjects)
		if err != nil {
			return "", err
		}
		summary.TagsUpdated += tagged

		r.logger.Info("Case backed up.",
			zap.String("case", c.CaseLabel),
			zap.Int("created", result.NumCreated),
			zap.Int("found", result.NumFound),
			zap.Int("tagged", tagged))
	}

	summary.Remediated, err = r.RemediateCasesWithNoAffectedObjects(ctx, ec, list, RemediationReason)
	if err != nil {
		return "", err
	}

	message := summary.Message()
	if err := r.api.UpdateActionStatus(ctx, ec, execution.Completed(ec.ExecutionID, message)); err != nil {
		return "", err
	}
	r.logger.Info(message)
	return message, nil
}
