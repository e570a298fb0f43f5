package testutil

import (
	"encoding/json"
	"fmt"
	"time"
)

// BaseTime is the fixed timestamp sample fixtures start from
var BaseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// ValidSamples are well-formed sample payloads, oldest first
var ValidSamples = []string{
	`{"id": "s1", "subject": "samples.cpu", "value": 0.25, "timestamp": "2026-01-01T00:00:00Z"}`,
	`{"id": "s2", "subject": "samples.cpu", "value": 0.50, "timestamp": "2026-01-01T00:00:01Z"}`,
	`{"id": "s3", "subject": "samples.cpu", "value": 0.75, "timestamp": "2026-01-01T00:00:02Z", "labels": {"host": "edge-1"}}`,
	`{"subject": "samples.mem", "value": 1024}`,
}

// InvalidSamples fail decoding or schema validation
var InvalidSamples = map[string]string{
	"not json":       `value=1`,
	"truncated":      `{"subject": "samples.cpu", "value": `,
	"missing value":  `{"subject": "samples.cpu"}`,
	"string value":   `{"subject": "samples.cpu", "value": "high"}`,
	"empty subject":  `{"subject": "", "value": 1}`,
	"numeric labels": `{"subject": "samples.cpu", "value": 1, "labels": {"host": 7}}`,
}

// SamplePayload encodes a sample payload for subject with value at
// BaseTime plus offset seconds.
func SamplePayload(subject string, value float64, offset int) []byte {
	data, err := json.Marshal(map[string]any{
		"id":        fmt.Sprintf("%s-%d", subject, offset),
		"subject":   subject,
		"value":     value,
		"timestamp": BaseTime.Add(time.Duration(offset) * time.Second),
	})
	if err != nil {
		panic(err)
	}
	return data
}
