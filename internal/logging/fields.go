package logging

import (
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for remote job identifiers.
	FieldJobID = "job_id"
	// FieldStage is the standardized structured logging key for controller stages.
	FieldStage = "stage"
	// FieldCorrelationID is the standardized structured logging key for per-action correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a log line for filtering (e.g. "job_submitted").
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

type infoField struct {
	label string
	value string
}

// infoAttrLimit caps the fields shown per info line; debug lines show everything.
const infoAttrLimit = 8

var highlightKeys = []string{
	FieldAlert,
	FieldEventType,
	"status",
	"attempt",
	"error",
	FieldErrorHint,
	FieldImpact,
	"asset_url",
	"result_url",
	"output_path",
	"strategy",
}

func selectFields(attrs []kv, debug bool) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, infoAttrLimit)
	hidden := 0

	take := func(idx int) {
		used[idx] = true
		attr := attrs[idx]
		if skipKey(attr.key) {
			return
		}
		if !debug && (isDebugOnlyKey(attr.key) || len(result) >= infoAttrLimit) {
			hidden++
			return
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: formatValueForKey(attr.key, attr.value)})
	}

	for _, key := range highlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				take(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			take(idx)
		}
	}
	return result, hidden
}

func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindBool {
		if v.Bool() {
			return "yes"
		}
		return "no"
	}
	value := formatValue(v)
	if key == "error" && len(value) > 200 {
		value = value[:200] + "…"
	}
	return value
}

func skipKey(key string) bool {
	switch key {
	case "", FieldComponent, FieldJobID, FieldStage:
		return true
	default:
		return false
	}
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case FieldCorrelationID, FieldSignedURL, "latency", "content_type":
		return true
	}
	return strings.HasSuffix(key, "_path") && key != "output_path"
}

func displayLabel(key string) string {
	switch key {
	case FieldAlert:
		return "Alert"
	case FieldEventType:
		return "Event"
	case FieldErrorHint:
		return "Hint"
	case FieldImpact:
		return "Impact"
	case "asset_url":
		return "Asset"
	case "result_url":
		return "Result"
	case "output_path":
		return "Saved"
	}
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '.' })
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
