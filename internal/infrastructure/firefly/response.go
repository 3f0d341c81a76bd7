package firefly

import (
	"encoding/json"

	"github.com/basel-ax/fireflyweb/internal/domain"
)

// ClassifyResponse turns a raw response body into a tagged domain.Response.
// Bodies that are not a JSON object, or carry none of the known keys, are
// reported as malformed.
func ClassifyResponse(statusCode int, body []byte) *domain.Response {
	resp := &domain.Response{Kind: domain.ResponseMalformed, StatusCode: statusCode}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return resp
	}

	if data, ok := raw["outputs"]; ok {
		items, ok := decodeItems(data)
		if !ok {
			return resp
		}
		resp.Kind = domain.ResponseOutputs
		resp.Items = items
		return resp
	}

	if data, ok := raw["images"]; ok {
		items, ok := decodeItems(data)
		if !ok {
			return resp
		}
		resp.Items = items
		if isReferenceList(items) {
			resp.Kind = domain.ResponseReference
		} else {
			resp.Kind = domain.ResponseImages
		}
		return resp
	}

	_, hasCode := raw["error_code"]
	_, hasMessage := raw["message"]
	if hasCode || hasMessage {
		resp.Kind = domain.ResponseAPIError
		resp.ErrorCode = stringField(raw["error_code"])
		resp.Message = stringField(raw["message"])
	}
	return resp
}

func decodeItems(data json.RawMessage) ([]domain.ResultItem, bool) {
	var items []domain.ResultItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

// isReferenceList reports whether every item is a bare asset reference, as
// returned by the storage endpoint
func isReferenceList(items []domain.ResultItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if it.ID == "" || it.Image != nil || it.Base64 != "" {
			return false
		}
	}
	return true
}

// stringField accepts both string and numeric error codes
func stringField(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return string(data)
}
