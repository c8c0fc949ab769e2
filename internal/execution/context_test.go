package execution

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() *Context {
	return &Context{
		ActionName:  "Get DSPM Cases",
		ExecutionID: "1111",
		GlobalParams: []Param{
			{ParamName: "EXAMPLE_PARAM", ParamValue: "woloz"},
		},
		ActionParams: []Param{
			{ParamName: "Data Source Types", ParamValue: "s3-v2, hooha"},
			{ParamName: "Policy Name", ParamValue: " Passwords "},
			{ParamName: "Data Source Types", ParamValue: "shadowed"},
		},
		BigIDToken:   "3333",
		BigIDBaseURL: "https://bigidapi/api/v1/",
		TpaID:        "4444",
	}
}

func TestGetParamValue(t *testing.T) {
	ec := newTestContext()

	t.Run("should find global params", func(t *testing.T) {
		value, ok := GetParamValue(ec, "EXAMPLE_PARAM", ParamGlobal)
		assert.True(t, ok)
		assert.Equal(t, "woloz", value)
	})

	t.Run("should keep global and action lists apart", func(t *testing.T) {
		_, ok := GetParamValue(ec, "EXAMPLE_PARAM", ParamAction)
		assert.False(t, ok)
	})

	t.Run("should return the first match", func(t *testing.T) {
		value, ok := GetParamValue(ec, "Data Source Types", ParamAction)
		assert.True(t, ok)
		assert.Equal(t, "s3-v2, hooha", value)
	})

	t.Run("should match names exactly", func(t *testing.T) {
		_, ok := GetParamValue(ec, "data source types", ParamAction)
		assert.False(t, ok)
		_, ok = GetParamValue(ec, "Data Source Types ", ParamAction)
		assert.False(t, ok)
	})

	t.Run("should not trim values", func(t *testing.T) {
		assert.Equal(t, " Passwords ", GetStringActionParam(ec, "Policy Name"))
	})

	t.Run("should return empty string when absent", func(t *testing.T) {
		assert.Equal(t, "", GetStringParam(ec, "missing", ParamGlobal))
		assert.Equal(t, "", GetStringActionParam(ec, "missing"))
	})
}

func TestTokenizeStringList(t *testing.T) {
	t.Run("should drop spaces around commas", func(t *testing.T) {
		assert.Equal(t,
			[]string{"spam", "ham", "eggs", "foo", "bar"},
			TokenizeStringList("spam  ,   ham,   eggs,foo ,bar"))
	})

	t.Run("should be idempotent over its joined output", func(t *testing.T) {
		first := TokenizeStringList("  spam  ,   ham,   eggs,foo ,bar  ")
		assert.Equal(t, first, TokenizeStringList(strings.Join(first, ",")))
	})

	t.Run("should keep a single token", func(t *testing.T) {
		assert.Equal(t, []string{"all"}, TokenizeStringList(" all "))
	})

	t.Run("should keep inner spaces", func(t *testing.T) {
		assert.Equal(t, []string{"s3 west", "azure blob"}, TokenizeStringList("s3 west , azure blob"))
	})
}

func TestDecode(t *testing.T) {
	t.Run("should decode a BigID payload", func(t *testing.T) {
		body := `{
			"actionName": "Test Action",
			"executionId": "1111",
			"globalParams": [{"paramName": "EXAMPLE_PARAM", "paramValue": "woloz"}],
			"actionParams": [{"paramName": "Data Source Types", "paramValue": "all"}],
			"bigidToken": "3333",
			"bigidBaseUrl": "https://bigidapi/api/v1/",
			"tpaId": "4444",
			"updateResultCallback": "https://bigidapi/api/v1/tpa/4444/executions/1111"
		}`
		ec, err := Decode(strings.NewReader(body))
		require.NoError(t, err)

		assert.Equal(t, "Test Action", ec.ActionName)
		assert.Equal(t, "https://bigidapi/api/v1/tpa/4444/executions/1111", ec.UpdateResultCallback)
		assert.Equal(t, "all", GetStringActionParam(ec, "Data Source Types"))
	})

	t.Run("should reject malformed json", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"actionName":`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid execution context")
	})

	t.Run("should require an action name and execution id", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"executionId": "1"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ActionName")

		_, err = Decode(strings.NewReader(`{"actionName": "Test Action"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ExecutionID")
	})

	t.Run("should reject a base url that is not a url", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"actionName": "a", "executionId": "1", "bigidBaseUrl": "not a url"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BigIDBaseURL")
	})
}

func TestRedacted(t *testing.T) {
	ec := newTestContext()
	redacted := ec.Redacted()

	assert.Equal(t, "[REDACTED]", redacted.BigIDToken)
	assert.Equal(t, "3333", ec.BigIDToken, "original must not change")
	assert.Equal(t, ec.ExecutionID, redacted.ExecutionID)
}

func TestResponses(t *testing.T) {
	assert.Equal(t, Response{ExecutionID: "1", Status: StatusCompleted, Progress: 1, Message: "done"}, Completed("1", "done"))
	assert.Equal(t, Response{ExecutionID: "1", Status: StatusError, Message: "boom"}, Failed("1", "boom"))
	assert.Equal(t, 0.5, InProgress("1", 0.5, "half").Progress)
}

// FuzzTokenizeStringList checks that tokens never carry spaces next to the
// separators and that joining them back reproduces the trimmed input.
func FuzzTokenizeStringList(f *testing.F) {
	f.Add("s3-v2, gcs-v2")
	f.Add("  a ,b  ,  c ")
	f.Add("")
	f.Add(",,")
	f.Add("tab\tinside, x")

	f.Fuzz(func(t *testing.T, s string) {
		tokens := TokenizeStringList(s)
		require.NotEmpty(t, tokens)
		for i, tok := range tokens {
			if i > 0 {
				assert.False(t, strings.HasPrefix(tok, " "), "token %q", tok)
			}
			if i < len(tokens)-1 {
				assert.False(t, strings.HasSuffix(tok, " "), "token %q", tok)
			}
		}
		assert.Equal(t,
			strings.ReplaceAll(strings.Join(tokens, ","), " ", ""),
			strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	})
}

// FuzzDecode feeds arbitrary bodies to Decode; it must either fail or return
// a context that validates.
func FuzzDecode(f *testing.F) {
	f.Add(`{"actionName":"Test Action","executionId":"1"}`)
	f.Add(`{"actionName":""}`)
	f.Add(`not json`)

	f.Fuzz(func(t *testing.T, body string) {
		ec, err := Decode(strings.NewReader(body))
		if err != nil {
			assert.Nil(t, ec)
			return
		}
		assert.NoError(t, ec.Validate())
	})
}
