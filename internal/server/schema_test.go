package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestSchemasCompile(t *testing.T) {
	for _, s := range []requestSchema{credentialsSchema, starsSchema, deleteUserSchema, checkSchema} {
		_, err := getCompiledSchema(s)
		assert.NoError(t, err, s.Name)
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"username":"Alice"}`, false},
		{"extra fields ignored", `{"username":"Alice","x":1}`, false},
		{"empty username", `{"username":""}`, true},
		{"wrong type", `{"username":5}`, true},
		{"not an object", `[]`, true},
		{"truncated", `{"username":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var dst deleteUserRequest
			err := decodeBody(httptest.NewRecorder(), req, deleteUserSchema, &dst)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Alice", dst.Username)
		})
	}
}

func TestDecodeBodyTooLarge(t *testing.T) {
	body := `{"username":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	var dst deleteUserRequest
	err := decodeBody(httptest.NewRecorder(), req, deleteUserSchema, &dst)
	assert.ErrorIs(t, err, errBadRequest)
}

func TestWholeNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"5", 5, true},
		{"5.0", 5, true},
		{"0", 0, true},
		{"1.5", 0, false},
		{"1e3", 0, false},
	}
	for _, tt := range tests {
		got, ok := wholeNumber(json.Number(tt.in))
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
