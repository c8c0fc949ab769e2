// File: internal/cases/pipeline.go
package cases

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/bigid-apps/quickstart/internal/bigid"
	"github.com/bigid-apps/quickstart/internal/execution"
)

// DefaultPageLimit is how many affected objects are requested per case.
const DefaultPageLimit = 32

// API is the read side of the BigID accessor.
type API interface {
	Get(ctx context.Context, target bigid.Target, pathAndQuery string) (*bigid.Response, error)
}

// Service assembles enriched cases from the BigID API. Calls run one after
// another; nothing is shared between GetBigIDCases calls.
type Service struct {
	api       API
	pageLimit int
	logger    *zap.Logger
}

func NewService(api API, pageLimit int, logger *zap.Logger) *Service {
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, pageLimit: pageLimit, logger: logger.Named("cases")}
}

// GetBigIDCases returns the open cases matching the filters, each with its
// compliance status, affected objects and, for role-based AWS sources, its
// region and role ARN. A nil dataSources means every source; an empty
// policyName means every policy.
//
// The first failure aborts the run and is returned prefixed with
// "Failed to fetch cases from BigID.".
func (s *Service) GetBigIDCases(ctx context.Context, ec *execution.Context, dataSources []string, policyName string) ([]Case, error) {
	cases, err := s.getBigIDCases(ctx, ec, dataSources, policyName)
	if err != nil {
		return nil, bigid.Annotate("Failed to fetch cases from BigID.", err)
	}
	return cases, nil
}

func (s *Service) getBigIDCases(ctx context.Context, ec *execution.Context, dataSources []string, policyName string) ([]Case, error) {
	path, err := casesPath(dataSources, policyName)
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Get(ctx, bigid.TargetFrom(ec), path)
	if err != nil {
		return nil, err
	}
	var page casesPage
	if err := bigid.Decode(resp, &page); err != nil {
		return nil, err
	}
	if *page.Data.TotalCount == 0 {
		return nil, noCasesError(dataSources, policyName)
	}

	// Connections by source name, for this run only.
	connections := make(map[string]*DataSourceConnection)
	accepted := make([]Case, 0, len(page.Data.Cases))

	for i := range page.Data.Cases {
		c := page.Data.Cases[i]

		policy, err := s.GetCompliancePolicy(ctx, ec, c.PolicyName)
		if err != nil {
			return nil, err
		}
		c.ComplianceStatus = policy.Status

		if c.NumberOfAffectedObjects > 0 {
			objects, err := s.GetAffectedObjects(ctx, ec, &c)
			if err != nil {
				return nil, err
			}
			c.AffectedObjects = objects
		}

		if len(c.AffectedObjects) == 0 {
			if c.CaseStatus != StatusOpen {
				s.logger.Info("Skipping case without affected objects.",
					zap.String("case", c.CaseLabel), zap.String("status", c.CaseStatus))
				continue
			}
			return nil, bigid.Integrityf("Open case has no affected objects: %s", c.CaseLabel)
		}

		sourceName := c.AffectedObjects[0].Source
		conn, ok := connections[sourceName]
		if !ok {
			conn, err = s.GetDataSource(ctx, ec, sourceName)
			if err != nil {
				return nil, err
			}
			connections[sourceName] = conn
		}
		annotateRegion(&c, conn)

		s.logger.Debug("Case enriched.",
			zap.String("case", c.CaseLabel),
			zap.Int("objects", len(c.AffectedObjects)),
			zap.String("compliance_status", c.ComplianceStatus))
		accepted = append(accepted, c)
	}
	return accepted, nil
}

func noCasesError(dataSources []string, policyName string) error {
	sources := AllDataSources
	if dataSources != nil {
		sources = strings.Join(dataSources, ",")
	}
	msg := "No BigID cases were found. Please ensure you selected valid data sources. Data sources: " + sources + "."
	if policyName != "" {
		return bigid.NotFoundf("%s Policy: %s.", msg, policyName)
	}
	return bigid.NotFoundf("%s", msg)
}

func annotateRegion(c *Case, conn *DataSourceConnection) {
	if conn.AuthStrategy != AuthStrategyRole {
		return
	}
	region := conn.ResourceProperties.ResourceEntry
	c.AWSRegion = orNotFound(region)
	c.AWSArn = orNotFound(conn.AuthenticationProperties.RoleResourceName)
	if region == "" {
		return
	}
	for i := range c.AffectedObjects {
		c.AffectedObjects[i].AWSRegion = region
	}
}

func orNotFound(s string) string {
	if s == "" {
		return NotFound
	}
	return s
}

// GetCompliancePolicy looks a policy up by name.
func (s *Service) GetCompliancePolicy(ctx context.Context, ec *execution.Context, name string) (*Policy, error) {
	policy, err := s.getCompliancePolicy(ctx, ec, name)
	if err != nil {
		return nil, bigid.Annotate("Failed to fetch policies from BigID. API Status:", err)
	}
	return policy, nil
}

func (s *Service) getCompliancePolicy(ctx context.Context, ec *execution.Context, name string) (*Policy, error) {
	resp, err := s.api.Get(ctx, bigid.TargetFrom(ec), policyPath(name))
	if err != nil {
		return nil, err
	}
	var policies []Policy
	if err := bigid.Decode(resp, &policies); err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return nil, bigid.NotFoundf("BigID API found no policies with name: %s.", name)
	}
	return &policies[0], nil
}

// GetAffectedObjects fetches the catalog objects of c's source that violate
// c's policy, up to the page limit.
func (s *Service) GetAffectedObjects(ctx context.Context, ec *execution.Context, c *Case) ([]CatalogObject, error) {
	resp, err := s.api.Get(ctx, bigid.TargetFrom(ec), affectedObjectsPath(c, s.pageLimit))
	if err != nil {
		return nil, bigid.Annotate("Failed to fetch affected objects from BigID. API Status:", err)
	}
	var page catalogPage
	if err := bigid.Decode(resp, &page); err != nil {
		return nil, bigid.Annotate("Failed to fetch affected objects from BigID. API Status:", err)
	}
	return page.Results, nil
}

// GetDataSource fetches one data source connection by name.
func (s *Service) GetDataSource(ctx context.Context, ec *execution.Context, name string) (*DataSourceConnection, error) {
	resp, err := s.api.Get(ctx, bigid.TargetFrom(ec), dataSourcePath(name))
	if err != nil {
		return nil, bigid.Annotate("Failed to get data source with name "+name+".", err)
	}
	var envelope connectionEnvelope
	if err := bigid.Decode(resp, &envelope); err != nil {
		return nil, bigid.Annotate("Failed to get data source with name "+name+".", err)
	}
	return envelope.DSConnection, nil
}
