// File: internal/app/simple.go
package app

import (
	"context"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/bigid-apps/quickstart/internal/execution"
)

// NewSimpleApp wires the starter app with its single do-nothing action.
func NewSimpleApp(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("simple")

	return &App{
		Name:     "simple",
		Manifest: simpleManifest(),
		Actions: map[string]ActionFunc{
			ActionTest: func(ctx context.Context, ec *execution.Context) (string, error) {
				redacted := ec.Redacted()
				out, err := json.Marshal(&redacted)
				if err != nil {
					return "", err
				}
				logger.Info("Test Action was called from a BigID server! Our ExecutionContext is " + string(out))
				return "Did nothing successfully!", nil
			},
		},
	}
}
