package window

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/ringwindow/errors"
)

// sampleSchema describes the wire form accepted by Ingest
const sampleSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["subject", "value"],
	"properties": {
		"id": {"type": "string"},
		"subject": {"type": "string", "minLength": 1},
		"value": {"type": "number"},
		"timestamp": {"type": "string", "format": "date-time"},
		"labels": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	}
}`

var loadSampleSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(sampleSchema))
})

// wireSample distinguishes a missing value from zero
type wireSample struct {
	ID        string            `json:"id"`
	Subject   string            `json:"subject"`
	Value     *float64          `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Labels    map[string]string `json:"labels"`
}

// Ingest decodes a JSON sample and adds it. Payloads that fail decoding or,
// when enabled, schema validation are counted as rejected and reported as
// ErrInvalidData.
func (w *Window) Ingest(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "Window", "Ingest", "check context")
	}

	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.RecordIngestDuration(w.name, time.Since(start))
		}
	}()

	if w.validateSchema {
		if err := validatePayload(data); err != nil {
			return w.reject("schema", errors.WrapInvalid(err, "Window", "Ingest", "validate schema"))
		}
	}

	var ws wireSample
	if err := json.Unmarshal(data, &ws); err != nil {
		return w.reject("decode", errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrInvalidData, err), "Window", "Ingest", "decode sample"))
	}
	if ws.Value == nil {
		return w.reject("decode", errors.WrapInvalid(
			fmt.Errorf("%w: value is required", errors.ErrInvalidData), "Window", "Ingest", "decode sample"))
	}

	return w.Add(Sample{
		ID:        ws.ID,
		Subject:   ws.Subject,
		Value:     *ws.Value,
		Timestamp: ws.Timestamp,
		Labels:    ws.Labels,
	})
}

func validatePayload(data []byte) error {
	schema, err := loadSampleSchema()
	if err != nil {
		return fmt.Errorf("load sample schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidData, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return fmt.Errorf("%w: %s", errors.ErrInvalidData, strings.Join(msgs, "; "))
	}
	return nil
}
