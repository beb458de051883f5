package progress

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://progress-envelope.json"

// envelopeSchema describes a current-version blob. Older versions are
// accepted as long as state.progress is an object; Decode migrates them.
const envelopeSchema = `{
  "type": "object",
  "required": ["state"],
  "properties": {
    "version": {"type": "integer", "minimum": 0},
    "state": {
      "type": "object",
      "required": ["progress"],
      "properties": {
        "progress": {
          "type": "object",
          "properties": {
            "dayStreak": {"type": "integer", "minimum": 0},
            "totalXP": {"type": "integer", "minimum": 0},
            "hearts": {"type": "integer", "minimum": 0},
            "maxHearts": {"type": "integer", "minimum": 1},
            "questionsAnswered": {"type": "integer", "minimum": 0},
            "correctAnswers": {"type": "integer", "minimum": 0},
            "lastPracticeDate": {"type": ["string", "null"]},
            "categoryProgress": {
              "type": "object",
              "additionalProperties": {
                "type": "object",
                "properties": {
                  "completed": {"type": "integer", "minimum": 0},
                  "total": {"type": "integer", "minimum": 0},
                  "bestScore": {"type": "integer", "minimum": 0}
                }
              }
            },
            "history": {
              "type": "array",
              "maxItems": 180,
              "items": {
                "type": "object",
                "required": ["dateKey"],
                "properties": {
                  "dateKey": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
                  "totalXP": {"type": "integer", "minimum": 0},
                  "questionsAnswered": {"type": "integer", "minimum": 0},
                  "correctAnswers": {"type": "integer", "minimum": 0},
                  "dayStreak": {"type": "integer", "minimum": 0}
                }
              }
            }
          }
        }
      }
    }
  }
}`

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func envelopeValidator() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(envelopeSchema), &doc); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// Validate checks an externally supplied blob before it replaces local data.
func Validate(data []byte) error {
	schema, err := envelopeValidator()
	if err != nil {
		return fmt.Errorf("compile progress schema: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
