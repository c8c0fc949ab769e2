// File: internal/service/factory.go
package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bigid-apps/quickstart/internal/app"
	"github.com/bigid-apps/quickstart/internal/backupapi"
	"github.com/bigid-apps/quickstart/internal/bigid"
	"github.com/bigid-apps/quickstart/internal/cases"
	"github.com/bigid-apps/quickstart/internal/config"
	"github.com/bigid-apps/quickstart/internal/network"
	"github.com/bigid-apps/quickstart/internal/observability"
	"github.com/bigid-apps/quickstart/internal/workflow"
)

// ComponentFactory builds the Components for the configured app.
type ComponentFactory interface {
	Create(cfg config.Interface, logger *zap.Logger) (*Components, error)
}

type concreteFactory struct{}

// NewComponentFactory returns the production factory.
func NewComponentFactory() ComponentFactory {
	return &concreteFactory{}
}

// Create wires the outbound clients, the case pipeline and the workflow into
// the app selected by cfg.Server().App.
func (f *concreteFactory) Create(cfg config.Interface, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := observability.NewMetrics()
	components := &Components{Metrics: metrics}

	var a *app.App
	switch name := cfg.Server().App; name {
	case config.AppSimple:
		a = app.NewSimpleApp(logger)

	case config.AppDSPM:
		bigidCfg := cfg.BigID()
		hostTransport := newTransport(bigidCfg.IgnoreTLSErrors, logger)
		host := bigid.NewClient(bigid.Options{
			Timeout:    bigidCfg.RequestTimeout,
			RateLimit:  bigidCfg.RateLimit,
			RateBurst:  bigidCfg.RateBurst,
			HTTPClient: hostTransport.Client,
			Metrics:    metrics,
			Logger:     logger,
		})

		backupCfg := cfg.Backup()
		backupTransport := newTransport(backupCfg.IgnoreTLSErrors, logger)
		backups := backupapi.NewClient(bigid.NewClient(bigid.Options{
			Service:    "backup",
			BearerAuth: true,
			Timeout:    backupCfg.RequestTimeout,
			HTTPClient: backupTransport.Client,
			Metrics:    metrics,
			Logger:     logger,
		}))
		components.transports = append(components.transports, hostTransport, backupTransport)

		caseService := cases.NewService(host, bigidCfg.CatalogPageLimit, logger)
		runner := workflow.NewRunner(host, caseService, backups, logger)
		a = app.NewDSPMApp(caseService, runner, logger)

	default:
		return nil, fmt.Errorf("unknown app %q", name)
	}

	components.App = a
	components.Controller = app.NewController(a, metrics, logger)
	logger.Debug("Components initialized.", zap.String("app", a.Name), zap.Strings("actions", a.ActionNames()))
	return components, nil
}

func newTransport(ignoreTLSErrors bool, logger *zap.Logger) *network.Client {
	clientCfg := network.NewDefaultClientConfig()
	clientCfg.IgnoreTLSErrors = ignoreTLSErrors
	clientCfg.Logger = logger
	return network.NewClient(clientCfg)
}
