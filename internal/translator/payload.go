package translator

import (
	"encoding/json"
	"fmt"

	"github.com/valpere/keytrans/internal/postprocess"
)

// decodePayload turns a model reply into a TranslateResponse. The reply must
// be a bare JSON object; with lenient set, reasoning blocks, lead-in prose and
// a code fence around it are removed first. Absent fields take their zero
// value. A field that is present must have the expected type, null included.
func decodePayload(content string, lenient bool) (*TranslateResponse, error) {
	if lenient {
		content = postprocess.ExtractJSON(content)
	}

	var raw interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, payloadError(fmt.Errorf("model reply is not valid JSON: %w", err))
	}

	data, ok := raw.(map[string]interface{})
	if !ok {
		return nil, payloadError(fmt.Errorf("model reply is a JSON %s, expected an object", jsonKind(raw)))
	}

	resp := &TranslateResponse{Keywords: []string{}}

	if v, present := data["translation"]; present {
		s, ok := v.(string)
		if !ok {
			return nil, payloadError(fmt.Errorf("field \"translation\" is a JSON %s, expected a string", jsonKind(v)))
		}
		resp.Translation = s
	}

	if v, present := data["keywords"]; present {
		items, ok := v.([]interface{})
		if !ok {
			return nil, payloadError(fmt.Errorf("field \"keywords\" is a JSON %s, expected an array", jsonKind(v)))
		}
		for i, item := range items {
			kw, ok := item.(string)
			if !ok {
				return nil, payloadError(fmt.Errorf("keywords[%d] is a JSON %s, expected a string", i, jsonKind(item)))
			}
			resp.Keywords = append(resp.Keywords, kw)
		}
	}

	return resp, nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
