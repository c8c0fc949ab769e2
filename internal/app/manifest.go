// File: internal/app/manifest.go
package app

// Manifest describes an app to BigID: what it is and which actions it
// offers with which parameters.
type Manifest struct {
	AppName                string       `json:"app_name" yaml:"app_name"`
	Description            string       `json:"description" yaml:"description"`
	Category               string       `json:"category" yaml:"category"`
	LicenseType            string       `json:"license_type" yaml:"license_type"`
	Vendor                 string       `json:"vendor" yaml:"vendor"`
	LicenseVerificationKey string       `json:"license_verification_key" yaml:"license_verification_key"`
	GlobalParams           []ParamSpec  `json:"global_params" yaml:"global_params"`
	Actions                []ActionSpec `json:"actions" yaml:"actions"`
}

// ActionSpec is one action entry of a Manifest.
type ActionSpec struct {
	ActionID     string      `json:"action_id" yaml:"action_id"`
	Description  string      `json:"description" yaml:"description"`
	IsSync       bool        `json:"is_sync" yaml:"is_sync"`
	ActionParams []ParamSpec `json:"action_params" yaml:"action_params"`
}

// ParamSpec declares a global or action parameter.
type ParamSpec struct {
	ParamName        string   `json:"param_name" yaml:"param_name"`
	ParamType        string   `json:"param_type" yaml:"param_type"`
	InputType        string   `json:"input_type,omitempty" yaml:"input_type,omitempty"`
	InputItems       []string `json:"input_items,omitempty" yaml:"input_items,omitempty"`
	IsCleartext      bool     `json:"is_cleartext" yaml:"is_cleartext"`
	ParamDescription string   `json:"param_description" yaml:"param_description"`
	DefaultValue     string   `json:"default_value" yaml:"default_value"`
	ParamPriority    string   `json:"param_priority" yaml:"param_priority"`
	IsMandatory      bool     `json:"is_mandatory" yaml:"is_mandatory"`
}

func stringParam(name, description, defaultValue string, cleartext, mandatory bool) ParamSpec {
	return ParamSpec{
		ParamName:        name,
		ParamType:        "String",
		IsCleartext:      cleartext,
		ParamDescription: description,
		DefaultValue:     defaultValue,
		ParamPriority:    "primary",
		IsMandatory:      mandatory,
	}
}

// Action ids.
const (
	ActionBackupFiles = "Backup files (DSPM)"
	ActionGetCases    = "Get DSPM Cases"
	ActionTest        = "Test Action"
)

func dspmManifest() Manifest {
	dataSources := stringParam("Data Source Types",
		`Comma separated data source types to take cases from, e.g. "s3-v2, gcs-v2", or "all".`, "all", true, true)
	return Manifest{
		AppName:     "Quickstart DSPM - Go",
		Description: "A starter utility application that backs up and tags the files behind open DSPM cases.",
		Category:    "utility",
		LicenseType: "FREE",
		Vendor:      "BigID",
		GlobalParams: []ParamSpec{
			stringParam("EXAMPLE_PARAM", "An example global parameter.", "", true, false),
		},
		Actions: []ActionSpec{
			{
				ActionID:     ActionGetCases,
				Description:  "Logs the open DSPM cases, with their affected objects, as JSON.",
				IsSync:       true,
				ActionParams: []ParamSpec{dataSources},
			},
			{
				ActionID:    ActionBackupFiles,
				Description: "Backs up the affected objects of open DSPM cases, tags them and remediates emptied cases.",
				IsSync:      true,
				ActionParams: []ParamSpec{
					dataSources,
					stringParam("Policy Name", "Only take cases raised by this policy. Leave empty for all policies.", "", true, false),
					stringParam("Backup Tag", `Name of the tag set to "True" on every backed up object.`, "Backed Up", true, true),
					stringParam("Backup API URL", "Base URL of the backup API, ending with a slash.", "", true, true),
					stringParam("Backup API Token", "Token for the backup API.", "", false, true),
				},
			},
		},
	}
}

func simpleManifest() Manifest {
	selection := stringParam("Sample Selection Parameter", "Shows you how to do a selection", "True", true, true)
	selection.InputType = "singleSelection"
	selection.InputItems = []string{"True", "False"}
	return Manifest{
		AppName:      "Quickstart Simple - Go",
		Description:  "A simple starter utility application. Made for easily getting started running scripts in BigID.",
		Category:     "utility",
		LicenseType:  "FREE",
		Vendor:       "BigID",
		GlobalParams: []ParamSpec{},
		Actions: []ActionSpec{
			{
				ActionID:    ActionTest,
				Description: "Does nothing. ",
				IsSync:      true,
				ActionParams: []ParamSpec{
					selection,
					stringParam("Sample Input Parameter", "Input whatever you want!", "", true, true),
				},
			},
		},
	}
}
