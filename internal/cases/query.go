// File: internal/cases/query.go
package cases

import (
	"fmt"
	"net/url"

	json "github.com/json-iterator/go"

	"github.com/bigid-apps/quickstart/internal/bigid"
	"github.com/bigid-apps/quickstart/internal/execution"
)

// AllDataSources is the action parameter value meaning "no filter".
const AllDataSources = "all"

// Query is one clause of an actionable-insights filter.
type Query struct {
	Field    string      `json:"field"`
	Value    interface{} `json:"value"`
	Operator string      `json:"operator"`
}

// ParseDataSourceFilter turns the "Data Source Types" parameter into a
// filter. A nil result means every data source.
func ParseDataSourceFilter(raw string) []string {
	tokens := execution.TokenizeStringList(raw)
	if tokens[0] == AllDataSources || tokens[0] == "" {
		return nil
	}
	return tokens
}

// BuildCasesQuery returns the filter for open cases, optionally narrowed to
// data source types and a policy name.
func BuildCasesQuery(dataSources []string, policyName string) []Query {
	query := []Query{{Field: "caseStatus", Value: StatusOpen, Operator: "equal"}}
	if dataSources != nil {
		query = append(query, Query{Field: "dataSourceType", Value: dataSources, Operator: "in"})
	}
	if policyName != "" {
		query = append(query, Query{Field: "policyName", Value: []string{policyName}, Operator: "in"})
	}
	return query
}

func casesPath(dataSources []string, policyName string) (string, error) {
	filter, err := json.Marshal(BuildCasesQuery(dataSources, policyName))
	if err != nil {
		return "", fmt.Errorf("encoding cases filter: %w", err)
	}
	return "actionable-insights/all-cases?requireTotalCount=true&filter=" + bigid.QueryEscape(string(filter)), nil
}

func affectedObjectsPath(c *Case, limit int) string {
	filter := fmt.Sprintf(`SYSTEM = "%s" AND policy IN ("%s")`, c.DataSourceName, c.PolicyName)
	return fmt.Sprintf("data-catalog/?format=json&requireTotalCount=true&limit=%d&filter=%s", limit, bigid.QueryEscape(filter))
}

func policyPath(name string) string {
	return "compliance-rules?name=" + bigid.QueryEscape(name)
}

func dataSourcePath(name string) string {
	return "ds_connections/" + url.PathEscape(name)
}
