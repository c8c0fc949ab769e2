// File: internal/app/controller.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bigid-apps/quickstart/internal/execution"
	"github.com/bigid-apps/quickstart/internal/observability"
)

// ActionFunc runs one action and returns the message for a successful
// response.
type ActionFunc func(ctx context.Context, ec *execution.Context) (string, error)

// App is one deployable app: its manifest and its action table.
type App struct {
	Name     string
	Manifest Manifest
	Actions  map[string]ActionFunc
}

// ActionNames lists the app's actions in sorted order.
func (a *App) ActionNames() []string {
	names := make([]string, 0, len(a.Actions))
	for name := range a.Actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result is the envelope to return and the HTTP status to return it with.
type Result struct {
	StatusCode int
	Response   execution.Response
}

// Controller dispatches invocations to the app's actions.
type Controller struct {
	app     *App
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewController(app *App, metrics *observability.Metrics, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{app: app, metrics: metrics, logger: logger.Named("controller")}
}

// App returns the dispatched app.
func (c *Controller) App() *App { return c.app }

// Execute runs the action named in ec. Unknown actions are reported in the
// envelope with HTTP 200; failed actions with HTTP 500.
func (c *Controller) Execute(ctx context.Context, ec *execution.Context) Result {
	logger := c.logger.With(
		zap.String("invocation_id", uuid.NewString()),
		zap.String("action", ec.ActionName),
		zap.String("execution_id", ec.ExecutionID))

	action, ok := c.app.Actions[ec.ActionName]
	if !ok {
		logger.Warn("Unresolved action.", zap.Strings("known_actions", c.app.ActionNames()))
		c.count("unresolved", execution.StatusError)
		return Result{
			StatusCode: http.StatusOK,
			Response:   execution.Failed(ec.ExecutionID, fmt.Sprintf("Got unresolved action = %s", ec.ActionName)),
		}
	}

	logger.Info("Executing action.")
	message, err := c.run(ctx, action, ec)
	if err != nil {
		logger.Error("Action failed.", zap.Error(err))
		c.count(ec.ActionName, execution.StatusError)
		msg := err.Error()
		if msg == "" {
			msg = "unknown error"
		}
		return Result{StatusCode: http.StatusInternalServerError, Response: execution.Failed(ec.ExecutionID, msg)}
	}

	logger.Info("Action completed.", zap.String("message", message))
	c.count(ec.ActionName, execution.StatusCompleted)
	return Result{StatusCode: http.StatusOK, Response: execution.Completed(ec.ExecutionID, message)}
}

// run calls action and reports a panic as an error.
func (c *Controller) run(ctx context.Context, action ActionFunc, ec *execution.Context) (message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = errors.New("")
			}
		}
	}()
	return action(ctx, ec)
}

func (c *Controller) count(action string, status execution.Status) {
	if c.metrics == nil {
		return
	}
	c.metrics.Actions.WithLabelValues(c.app.Name, action, string(status)).Inc()
}
