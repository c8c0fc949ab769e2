// File: internal/app/dspm.go
package app

import (
	"context"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/bigid-apps/quickstart/internal/bigid"
	"github.com/bigid-apps/quickstart/internal/cases"
	"github.com/bigid-apps/quickstart/internal/execution"
	"github.com/bigid-apps/quickstart/internal/workflow"
)

// CaseLister is the case lookup used by the Get DSPM Cases action.
type CaseLister interface {
	GetBigIDCases(ctx context.Context, ec *execution.Context, dataSources []string, policyName string) ([]cases.Case, error)
}

// BackupRunner runs the Backup files (DSPM) action.
type BackupRunner interface {
	BackupFilesAction(ctx context.Context, ec *execution.Context) (string, error)
}

// NewDSPMApp wires the DSPM actions.
func NewDSPMApp(lister CaseLister, runner BackupRunner, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("dspm")

	return &App{
		Name:     "dspm",
		Manifest: dspmManifest(),
		Actions: map[string]ActionFunc{
			ActionBackupFiles: func(ctx context.Context, ec *execution.Context) (string, error) {
				if err := bigid.InspectToken(ec.BigIDToken); err != nil {
					return "", err
				}
				return runner.BackupFilesAction(ctx, ec)
			},
			ActionGetCases: func(ctx context.Context, ec *execution.Context) (string, error) {
				return printCasesAsJSON(ctx, ec, lister, logger)
			},
		},
	}
}

func printCasesAsJSON(ctx context.Context, ec *execution.Context, lister CaseLister, logger *zap.Logger) (string, error) {
	if err := bigid.InspectToken(ec.BigIDToken); err != nil {
		return "", err
	}
	dataSources := cases.ParseDataSourceFilter(execution.GetStringActionParam(ec, workflow.ParamDataSourceTypes))
	list, err := lister.GetBigIDCases(ctx, ec, dataSources, "")
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	logger.Info(string(out))
	return "Printed cases as JSON successfully!", nil
}
