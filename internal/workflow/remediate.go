// File: internal/workflow/remediate.go
package workflow

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/bigid-apps/quickstart/internal/bigid"
	"github.com/bigid-apps/quickstart/internal/cases"
	"github.com/bigid-apps/quickstart/internal/execution"
)

type caseStatusUpdate struct {
	CaseStatus  string `json:"caseStatus"`
	AuditReason string `json:"auditReason"`
}

// RemediateCasesWithNoAffectedObjects re-reads the affected objects of each
// case and marks the ones left with none as remediated. It returns how many
// cases were closed.
func (r *Runner) RemediateCasesWithNoAffectedObjects(ctx context.Context, ec *execution.Context, list []cases.Case, auditReason string) (int, error) {
	remediated := 0
	for i := range list {
		c := &list[i]
		objects, err := r.cases.GetAffectedObjects(ctx, ec, c)
		if err != nil {
			return remediated, err
		}
		if len(objects) > 0 {
			r.logger.Debug("Case still has affected objects.", zap.String("case", c.CaseLabel), zap.Int("objects", len(objects)))
			continue
		}

		body := caseStatusUpdate{CaseStatus: cases.StatusRemediated, AuditReason: auditReason}
		if _, err := r.api.Patch(ctx, bigid.TargetFrom(ec), caseStatusPath(c.ID), body); err != nil {
			return remediated, bigid.Annotate("Failed to remediate case "+c.CaseLabel+".", err)
		}
		r.logger.Info("Case remediated.", zap.String("case", c.CaseLabel), zap.String("id", c.ID))
		remediated++
	}
	return remediated, nil
}

func caseStatusPath(id string) string {
	return "actionable-insights/case-status/" + url.PathEscape(id)
}
