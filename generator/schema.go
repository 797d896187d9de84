package generator

func responseSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "code",
			"strict": true,
			"schema": map[string]any{
				"type":                 "object",
				"properties":           properties,
				"required":             required,
				"additionalProperties": false,
			},
		},
	}
}

var (
	stringSchema      = map[string]any{"type": "string"}
	stringArraySchema = map[string]any{"type": "array", "items": stringSchema}

	generationSchema = responseSchema(map[string]any{
		"status":   stringSchema,
		"comments": stringArraySchema,
		"code":     stringSchema,
	}, "status", "comments", "code")

	adjustmentSchema = responseSchema(map[string]any{
		"status":      stringSchema,
		"comments":    stringArraySchema,
		"description": stringSchema,
		"code":        stringSchema,
	}, "status", "comments", "description", "code")
)
