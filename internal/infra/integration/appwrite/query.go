package appwrite

import "encoding/json"

// Operadores de consulta no formato JSON aceito pela API de documentos.

func QueryEqual(attribute string, value any) string {
	return marshalQuery(map[string]any{
		"method":    "equal",
		"attribute": attribute,
		"values":    []any{value},
	})
}

func QueryLimit(limit int) string {
	return marshalQuery(map[string]any{
		"method": "limit",
		"values": []any{limit},
	})
}

func QueryOrderDesc(attribute string) string {
	return marshalQuery(map[string]any{
		"method":    "orderDesc",
		"attribute": attribute,
	})
}

func marshalQuery(q map[string]any) string {
	b, _ := json.Marshal(q)
	return string(b)
}
