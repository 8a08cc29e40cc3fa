package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const maxBodyBytes = 1 << 16

// requestSchema names a JSON Schema for one request body.
type requestSchema struct {
	Name       string
	Definition string
}

var (
	credentialsSchema = requestSchema{
		Name: "credentials",
		Definition: `{
			"type": "object",
			"required": ["username", "password"],
			"properties": {
				"username": {"type": "string"},
				"password": {"type": "string"}
			}
		}`,
	}

	starsSchema = requestSchema{
		Name: "update_stars",
		Definition: `{
			"type": "object",
			"required": ["stars"],
			"properties": {
				"stars": {"type": "integer", "minimum": 0}
			}
		}`,
	}

	deleteUserSchema = requestSchema{
		Name: "delete_user",
		Definition: `{
			"type": "object",
			"required": ["username"],
			"properties": {
				"username": {"type": "string", "minLength": 1}
			}
		}`,
	}

	checkSchema = requestSchema{
		Name: "check",
		Definition: `{
			"type": "object",
			"required": ["answer", "expected", "kind"],
			"properties": {
				"answer": {"type": "string"},
				"expected": {"type": "string", "minLength": 1},
				"kind": {"enum": ["exact", "approximate"]}
			}
		}`,
	}
)

// errBadRequest marks a body that is not JSON or violates its schema.
var errBadRequest = errors.New("bad request body")

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// decodeBody reads the request body, validates it against schema and
// decodes it into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, schema requestSchema, dst any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}

	compiled, err := getCompiledSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// getCompiledSchema returns a cached compiled schema or compiles and caches it.
func getCompiledSchema(schema requestSchema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, err := jsonschema.UnmarshalJSON(strings.NewReader(schema.Definition))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
