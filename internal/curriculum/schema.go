package curriculum

var pathSegment = map[string]any{
	"type":      []any{"string", "integer"},
	"minLength": 1,
}

// DocumentSchema is the JSON schema authored curriculum documents must
// satisfy before they are compiled. Only the path is required; everything
// else degrades gracefully when absent.
var DocumentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"path": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"grade":    pathSegment,
				"subject":  pathSegment,
				"topic":    pathSegment,
				"subtopic": pathSegment,
			},
			"required": []any{"grade", "subject", "topic", "subtopic"},
		},
		"objective":   map[string]any{"type": []any{"string", "null"}},
		"first_probe": map[string]any{"type": []any{"string", "null"}},
		"step_probes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"probe":    map[string]any{"type": []any{"string", "null"}},
					"expected": map[string]any{"type": []any{"string", "number", "null"}},
				},
			},
		},
		"summary_templates": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"quick_checks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string"},
					"answer":   map[string]any{"type": []any{"string", "number"}},
					"answer_type": map[string]any{
						"type": "string",
						"enum": []any{"integer", "decimal", "fraction", "text"},
					},
				},
			},
		},
		// YAML reads an unquoted 1.10 as the float 1.1, so dotted versions
		// must be quoted.
		"metadata": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"version": map[string]any{"type": []any{"string", "integer"}},
			},
		},
	},
	"required": []any{"path"},
}
