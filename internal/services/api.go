package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Call performs an arbitrary Last.fm API method and returns the raw response.
//
// The API key and JSON format are added to params. Non-2xx statuses and error payloads are
// returned as-is; only transport failures produce an error.
func (s *LastFMService) Call(ctx context.Context, method string, params map[string]string) (*APIResponse, error) {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	resp, body, err := s.do(ctx, method, values)
	if err != nil {
		return nil, err
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
