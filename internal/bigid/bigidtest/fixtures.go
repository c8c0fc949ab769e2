package bigidtest

import (
	"github.com/bigid-apps/quickstart/internal/execution"
)

// Every fixture builder returns a new value, so tests may change what they
// get without affecting each other.

// Object is a JSON object payload.
type Object = map[string]interface{}

// Context returns an execution context aimed at baseURL.
func Context(baseURL, actionName string, actionParams ...execution.Param) *execution.Context {
	return &execution.Context{
		ActionName:  actionName,
		ExecutionID: "1111",
		GlobalParams: []execution.Param{
			{ParamName: "EXAMPLE_PARAM", ParamValue: "woloz"},
		},
		ActionParams: actionParams,
		BigIDToken:   "3333",
		BigIDBaseURL: baseURL,
		TpaID:        "4444",
	}
}

// Param is shorthand for an execution.Param.
func Param(name, value string) execution.Param {
	return execution.Param{ParamName: name, ParamValue: value}
}

// Case returns an open case for the Passwords policy on an s3-v2 source.
func Case() Object {
	return Object{
		"caseStatus":              "open",
		"caseLabel":               "Passwords detected on s3-v2",
		"policyLastTriggered":     "2023-07-10T20:45:39.947Z",
		"caseType":                "dataSourcePolicyCase",
		"dataSourceName":          "s3 west documents",
		"dataSourceType":          "s3-v2",
		"dataSourceOwner":         nil,
		"assignee":                "bigid",
		"policyName":              "Passwords",
		"severityLevel":           "critical",
		"policyOwner":             "bigid",
		"policyType":              "catalog",
		"compliance":              "Passwords",
		"numberOfAffectedObjects": 232,
		"policyDescription":       "Passwords such as cleartext passwords are private and confidential personal information.",
		"caseStatusUpdateDates":   Object{"open": "2023-07-08T08:00:22.022Z"},
		"created_at":              "2023-07-08T08:00:22.022Z",
		"updated_at":              "2023-07-13T08:00:22.321Z",
		"id":                      "9999a999999aa9999a99a999",
	}
}

// CaseWith returns Case with fields overridden.
func CaseWith(overrides Object) Object {
	c := Case()
	for k, v := range overrides {
		c[k] = v
	}
	return c
}

// CasesPage wraps cases the way actionable-insights/all-cases does.
func CasesPage(cases ...Object) Object {
	list := make([]interface{}, 0, len(cases))
	for _, c := range cases {
		list = append(list, c)
	}
	return Object{
		"status":     "success",
		"statusCode": 200,
		"data": Object{
			"cases":      list,
			"totalCount": len(cases),
		},
		"message": nil,
	}
}

// Policies is a compliance-rules answer holding one policy per name.
func Policies(names ...string) []interface{} {
	out := make([]interface{}, 0, len(names))
	for _, name := range names {
		out = append(out, Object{
			"id":          "6491ac2a4bb6db3f0c0f2b7a",
			"name":        name,
			"displayName": name,
			"status":      "VIOLATED",
			"type":        "catalog",
			"severity":    "critical",
			"is_enabled":  true,
			"owner":       "bigid",
			"findings": Object{
				"violated":    true,
				"findingsAmt": 266,
				"calcDate":    "2023-07-10T20:45:39.947Z",
			},
		})
	}
	return out
}

// CatalogObject returns one data-catalog result.
func CatalogObject(id, fullyQualifiedName, source string) Object {
	return Object{
		"fullyQualifiedName": fullyQualifiedName,
		"scanner_type_group": "unstructured",
		"total_pii_count":    38,
		"owner":              "Morris Williams, III",
		"id":                 id,
		"source":             source,
		"type":               "s3-v2",
		"objectType":         "file",
		"objectName":         "031518_wifi-rfi.pdf",
		"fullObjectName":     "bigid-presaleswest-sandbox-pub/documents/RFI/031518_wifi-rfi.pdf",
		"containerName":      "bigid-presaleswest-sandbox-pub",
		"sizeInBytes":        419393,
		"scanDate":           "2023-06-21T08:17:26.911Z",
		"attribute":          []interface{}{"Email", "Phone"},
		"tags":               []interface{}{},
	}
}

// DefaultObject is the catalog object found in the s3 west documents source.
func DefaultObject() Object {
	return CatalogObject(
		"6492b505fff133057d0893c7",
		"s3 west documents.bigid-presaleswest-sandbox-pub/documents/RFI/031518_wifi-rfi.pdf",
		"s3 west documents",
	)
}

// CatalogPage wraps objects the way data-catalog/ does.
func CatalogPage(objects ...Object) Object {
	list := make([]interface{}, 0, len(objects))
	for _, o := range objects {
		list = append(list, o)
	}
	return Object{
		"results":          list,
		"totalRowsCounter": len(objects),
	}
}

// RoleConnection is a ds_connections answer for an AWS role-based source.
func RoleConnection(name string) Object {
	return Object{
		"ds_connection": Object{
			"_id":          "99a99a9a999a9aaaa99a9999",
			"name":         name,
			"type":         "s3-v2",
			"enabled":      "yes",
			"authStrategy": "roleAuthentication",
			"authenticationProperties": Object{
				"@authenticationType": "roleAuthentication",
				"roleResourceName":    "arn:aws:iam::123456789012:role/BigID-DataDiscovery-app-dev",
				"roleSessionName":     "bigid-scanner",
			},
			"resourceProperties": Object{
				"resourceEntry": "us-east-1",
			},
		},
	}
}

// KeyConnection is a ds_connections answer for a source using static keys.
func KeyConnection(name string) Object {
	return Object{
		"ds_connection": Object{
			"_id":          "88b88b8b888b8bbbb88b8888",
			"name":         name,
			"type":         "s3-v2",
			"enabled":      "yes",
			"authStrategy": "accessKeyAuthentication",
		},
	}
}

// TagPairs is a data-catalog/tags/all-pairs answer.
func TagPairs(pairs ...Object) Object {
	list := make([]interface{}, 0, len(pairs))
	for _, p := range pairs {
		list = append(list, p)
	}
	return Object{"data": list}
}

// TagPair returns one tag name/value pair.
func TagPair(tagID, valueID, name, value string) Object {
	return Object{
		"tagId":    tagID,
		"valueId":  valueID,
		"tagName":  name,
		"tagValue": value,
	}
}

// BackupAnswer is a files/ answer from the backup API.
func BackupAnswer(created, found []Object) Object {
	toList := func(objs []Object) []interface{} {
		out := make([]interface{}, 0, len(objs))
		for _, o := range objs {
			out = append(out, o)
		}
		return out
	}
	return Object{
		"backups_created": toList(created),
		"backups_found":   toList(found),
		"num_created":     len(created),
		"num_found":       len(found),
	}
}

// BackupFile is one {id, path} record of the backup API.
func BackupFile(id, path string) Object {
	return Object{"id": id, "path": path}
}
