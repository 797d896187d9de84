package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyValid(t *testing.T) {
	for _, status := range []Status{StatusSuccess, StatusInfo, StatusWarning} {
		raw := `{"status":"` + string(status) + `","comments":["a","b"],"code":"package module"}`
		r, ok := Classify(raw).(ValidResponse)
		require.True(t, ok, "status %s", status)
		assert.Equal(t, status, r.Status)
		assert.Equal(t, []string{"a", "b"}, r.Comments)
		assert.Equal(t, "package module", r.Code)
	}
}

func TestClassifyDefaultsComments(t *testing.T) {
	r, ok := Classify(`{"status":"success","code":"x"}`).(ValidResponse)
	require.True(t, ok)
	assert.NotNil(t, r.Comments)
	assert.Empty(t, r.Comments)
}

func TestClassifyPending(t *testing.T) {
	r, ok := Classify(`{"status":"error","comments":["too vague"]}`).(PendingResponse)
	require.True(t, ok)
	assert.Equal(t, []string{"too vague"}, r.Comments)
}

func TestClassifyInvalid(t *testing.T) {
	cases := map[string]struct {
		raw    string
		detail string
	}{
		"not json":        {raw: "hello", detail: ""},
		"array":           {raw: `["status"]`, detail: "Expected a JSON object."},
		"missing status":  {raw: `{"code":"x"}`, detail: "Missing status."},
		"status number":   {raw: `{"status":1}`, detail: "Invalid status."},
		"unknown status":  {raw: `{"status":"maybe"}`, detail: "Invalid status."},
		"bad comments":    {raw: `{"status":"success","comments":[1],"code":"x"}`, detail: "Invalid comments."},
		"missing code":    {raw: `{"status":"success"}`, detail: "Invalid code."},
		"code not string": {raw: `{"status":"warning","code":4}`, detail: "Invalid code."},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, ok := Classify(tc.raw).(InvalidResponse)
			require.True(t, ok)
			assert.Equal(t, tc.raw, r.Response)
			assert.Equal(t, invalidJSONMessage, r.Errors[0])
			assert.Equal(t, contractReminder, r.Errors[len(r.Errors)-1])
			if tc.detail != "" {
				assert.Equal(t, tc.detail, r.Errors[1])
			}
		})
	}
}

func TestClassifyAcceptsSerialized(t *testing.T) {
	responses := []GenerationResponse{
		ValidResponse{Status: StatusInfo, Comments: []string{"c"}, Code: "x"},
		PendingResponse{Comments: []string{"why"}},
		InvalidResponse{Response: "raw", Errors: []string{"e1", "e2"}},
	}
	for _, r := range responses {
		assert.Equal(t, r, Classify(Serialize(r)))
	}
}

func TestClassifyStored(t *testing.T) {
	r, err := ClassifyStored(map[string]any{"status": "error", "comments": []any{"x"}})
	require.NoError(t, err)
	assert.Equal(t, PendingResponse{Comments: []string{"x"}}, r)

	for name, record := range map[string]map[string]any{
		"no status":          {},
		"unknown status":     {"status": "maybe"},
		"pending no comment": {"status": "error"},
		"valid no code":      {"status": "success", "comments": []any{}},
		"invalid no errors":  {"status": "invalid", "response": "x", "errors": []any{}},
		"invalid no text":    {"status": "invalid", "errors": []any{"e"}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ClassifyStored(record)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestValidResponseInvalidate(t *testing.T) {
	v := ValidResponse{Status: StatusSuccess, Comments: []string{}, Code: "x"}

	inv := v.Invalidate([]string{"broke"})
	assert.Equal(t, []string{"broke"}, inv.Errors)
	assert.Equal(t, v, Classify(inv.Response))

	assert.Equal(t, []string{"Unknown error."}, v.Invalidate(nil).Errors)
}

func TestStateAndStatus(t *testing.T) {
	assert.Equal(t, StateValid, StateOf(ValidResponse{Status: StatusWarning}))
	assert.Equal(t, StatePending, StateOf(PendingResponse{}))
	assert.Equal(t, StateInvalid, StateOf(InvalidResponse{}))

	assert.Equal(t, StatusWarning, StatusOf(ValidResponse{Status: StatusWarning}))
	assert.Equal(t, StatusError, StatusOf(PendingResponse{}))
	assert.Equal(t, StatusInvalid, StatusOf(InvalidResponse{}))

	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "raw", OriginalResponse(InvalidResponse{Response: "raw"}))
}
