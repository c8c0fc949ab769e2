// File: internal/bigid/status.go
package bigid

import (
	"context"
	"fmt"

	"github.com/bigid-apps/quickstart/internal/execution"
)

// UpdateActionStatus pushes a progress envelope for ec back to BigID, to the
// context's callback URL when it has one.
func (c *Client) UpdateActionStatus(ctx context.Context, ec *execution.Context, status execution.Response) error {
	target := ec.UpdateResultCallback
	if target == "" {
		target = fmt.Sprintf("tpa/%s/executions/%s", ec.TpaID, ec.ExecutionID)
	}
	if _, err := c.Put(ctx, TargetFrom(ec), target, status); err != nil {
		return Annotate("Failed to update action status in BigID.", err)
	}
	return nil
}
