// File: internal/cases/model.go
package cases

// Case statuses reported by actionable-insights.
const (
	StatusOpen         = "open"
	StatusAcknowledged = "acknowledged"
	StatusSilenced     = "silenced"
	StatusRemediated   = "remediated"
)

// AuthStrategyRole marks an AWS data source reached through an assumed role.
const AuthStrategyRole = "roleAuthentication"

// NotFound fills region and ARN fields the data source does not carry.
const NotFound = "Not Found"

// Case is one policy violation. ComplianceStatus and AffectedObjects are
// not part of the case list answer; GetBigIDCases fills them in, along with
// AWSRegion and AWSArn for role-based sources.
type Case struct {
	ID                      string          `json:"id" validate:"required"`
	CaseStatus              string          `json:"caseStatus" validate:"required"`
	CaseLabel               string          `json:"caseLabel"`
	CaseType                string          `json:"caseType"`
	DataSourceName          string          `json:"dataSourceName"`
	DataSourceType          string          `json:"dataSourceType"`
	DataSourceOwner         string          `json:"dataSourceOwner"`
	Assignee                string          `json:"assignee"`
	PolicyName              string          `json:"policyName" validate:"required"`
	PolicyType              string          `json:"policyType"`
	PolicyOwner             string          `json:"policyOwner"`
	PolicyDescription       string          `json:"policyDescription"`
	SeverityLevel           string          `json:"severityLevel"`
	Compliance              string          `json:"compliance"`
	NumberOfAffectedObjects int             `json:"numberOfAffectedObjects" validate:"gte=0"`
	PolicyLastTriggered     string          `json:"policyLastTriggered"`
	CreatedAt               string          `json:"created_at"`
	UpdatedAt               string          `json:"updated_at"`
	ComplianceStatus        string          `json:"complianceStatus"`
	AffectedObjects         []CatalogObject `json:"affectedObjects"`
	AWSRegion               string          `json:"awsRegion,omitempty"`
	AWSArn                  string          `json:"awsArn,omitempty"`
}

// ObjectTag is a tag already attached to a catalog object.
type ObjectTag struct {
	TagID    string `json:"tagId"`
	ValueID  string `json:"valueId"`
	TagName  string `json:"tagName"`
	TagValue string `json:"tagValue"`
}

// CatalogObject is one scanned file or asset.
type CatalogObject struct {
	ID                 string      `json:"id" validate:"required"`
	FullyQualifiedName string      `json:"fullyQualifiedName" validate:"required"`
	Source             string      `json:"source" validate:"required"`
	Type               string      `json:"type"`
	ObjectName         string      `json:"objectName"`
	FullObjectName     string      `json:"fullObjectName"`
	ContainerName      string      `json:"containerName"`
	ObjectType         string      `json:"objectType"`
	SizeInBytes        int64       `json:"sizeInBytes"`
	TotalPIICount      int         `json:"total_pii_count"`
	Attribute          []string    `json:"attribute"`
	Tags               []ObjectTag `json:"tags"`
	ScanDate           string      `json:"scanDate"`
	AWSRegion          string      `json:"awsRegion,omitempty"`
}

// DataSourceConnection is a configured data source as ds_connections
// returns it. Only the fields used for region annotation are kept.
type DataSourceConnection struct {
	ID                       string `json:"_id"`
	Name                     string `json:"name"`
	Type                     string `json:"type"`
	AuthStrategy             string `json:"authStrategy"`
	AuthenticationProperties struct {
		RoleResourceName string `json:"roleResourceName"`
		RoleSessionName  string `json:"roleSessionName"`
	} `json:"authenticationProperties"`
	ResourceProperties struct {
		ResourceEntry string `json:"resourceEntry"`
	} `json:"resourceProperties"`
}

// Policy is a compliance rule. Only Status feeds into cases.
type Policy struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	IsEnabled bool   `json:"is_enabled"`
}

// Endpoint schemas.

type casesPage struct {
	Data struct {
		Cases      []Case `json:"cases" validate:"dive"`
		TotalCount *int   `json:"totalCount" validate:"required"`
	} `json:"data"`
}

type catalogPage struct {
	Results []CatalogObject `json:"results" validate:"required,dive"`
}

type connectionEnvelope struct {
	DSConnection *DataSourceConnection `json:"ds_connection" validate:"required"`
}
