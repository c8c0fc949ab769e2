// File: internal/service/components.go
package service

import (
	"github.com/bigid-apps/quickstart/internal/app"
	"github.com/bigid-apps/quickstart/internal/network"
	"github.com/bigid-apps/quickstart/internal/observability"
)

// Components holds everything needed to dispatch actions for one app.
type Components struct {
	App        *app.App
	Controller *app.Controller
	Metrics    *observability.Metrics

	// transports are the outbound clients created for the BigID and backup
	// APIs.
	transports []*network.Client
}

// Shutdown releases idle outbound connections. In-flight calls are left to
// finish on their own deadlines.
func (c *Components) Shutdown() {
	logger := observability.GetLogger()
	for _, t := range c.transports {
		t.CloseIdleConnections()
	}
	logger.Debug("Outbound connections released.")
}
