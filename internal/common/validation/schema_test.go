package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const questionSchema = `{
  "type": "object",
  "required": ["question"],
  "properties": {
    "question": {"type": "string", "minLength": 1, "maxLength": 500}
  },
  "additionalProperties": false
}`

func TestSchemaValidate(t *testing.T) {
	s := MustCompile(questionSchema)

	tests := []struct {
		name  string
		doc   interface{}
		valid bool
		field string
	}{
		{"valid", map[string]interface{}{"question": "Quelle a été ma consommation hier ?"}, true, ""},
		{"missing question", map[string]interface{}{}, false, "(root)"},
		{"wrong type", map[string]interface{}{"question": 42}, false, "question"},
		{"extra property", map[string]interface{}{"question": "x", "user": "bob"}, false, "(root)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Validate(tt.doc)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.True(t, res.HasErrors(tt.field), "errors: %v", res.GetErrorMessages())
			}
		})
	}
}

func TestSchemaValidateJSON_Malformed(t *testing.T) {
	res := MustCompile(questionSchema).ValidateJSON([]byte(`{"question":`))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "INVALID_DOCUMENT", res.Errors[0].Code)
}

func TestCompileRejectsBadSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}
