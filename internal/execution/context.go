// File: internal/execution/context.go
package execution

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/json-iterator/go"
)

// Param is one named parameter as BigID sends it.
type Param struct {
	ParamName  string `json:"paramName" validate:"required"`
	ParamValue string `json:"paramValue"`
}

// Context is the invocation context BigID posts to the execute endpoint.
// The core treats it as read-only.
type Context struct {
	ActionName   string  `json:"actionName" validate:"required"`
	ExecutionID  string  `json:"executionId" validate:"required"`
	GlobalParams []Param `json:"globalParams" validate:"dive"`
	ActionParams []Param `json:"actionParams" validate:"dive"`
	BigIDToken   string  `json:"bigidToken"`
	BigIDBaseURL string  `json:"bigidBaseUrl" validate:"omitempty,url"`
	TpaID        string  `json:"tpaId"`
	// UpdateResultCallback, when set, receives progress updates instead of
	// the default tpa executions endpoint.
	UpdateResultCallback string `json:"updateResultCallback,omitempty" validate:"omitempty,url"`
}

// ParamKind selects which parameter list GetParamValue scans.
type ParamKind int

const (
	ParamGlobal ParamKind = iota
	ParamAction
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode reads and validates a Context from r.
func Decode(r io.Reader) (*Context, error) {
	var ec Context
	if err := json.NewDecoder(r).Decode(&ec); err != nil {
		return nil, fmt.Errorf("invalid execution context: %w", err)
	}
	if err := ec.Validate(); err != nil {
		return nil, err
	}
	return &ec, nil
}

// Validate checks the fields the dispatcher and the BigID accessor depend on.
func (ec *Context) Validate() error {
	if err := validate.Struct(ec); err != nil {
		return fmt.Errorf("invalid execution context: %w", err)
	}
	return nil
}

// Redacted returns a copy safe to log: the BigID token is masked.
func (ec *Context) Redacted() Context {
	out := *ec
	if out.BigIDToken != "" {
		out.BigIDToken = "[REDACTED]"
	}
	return out
}

// GetParamValue returns the value of the first parameter called name in the
// list selected by kind. Names match exactly.
func GetParamValue(ec *Context, name string, kind ParamKind) (string, bool) {
	params := ec.GlobalParams
	if kind == ParamAction {
		params = ec.ActionParams
	}
	for _, p := range params {
		if p.ParamName == name {
			return p.ParamValue, true
		}
	}
	return "", false
}

// GetStringParam is GetParamValue with "" for a missing parameter.
func GetStringParam(ec *Context, name string, kind ParamKind) string {
	value, _ := GetParamValue(ec, name, kind)
	return value
}

// GetStringActionParam looks name up among the action parameters.
func GetStringActionParam(ec *Context, name string) string {
	return GetStringParam(ec, name, ParamAction)
}

var listSeparator = regexp.MustCompile(` *, *`)

// TokenizeStringList trims s and splits it on commas, dropping the spaces
// around each comma. Tabs and other whitespace inside tokens are kept.
func TokenizeStringList(s string) []string {
	return listSeparator.Split(strings.TrimSpace(s), -1)
}
