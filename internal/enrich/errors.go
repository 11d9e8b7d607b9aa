package enrich

import (
	"encoding/json"
	"fmt"
)

// parseServiceError extracts a human-readable error from API responses.
func parseServiceError(statusCode int, body []byte) string {
	// Try to parse JSON error
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		msg := errResp.Error.Message
		if msg == "" {
			msg = errResp.Message
		}
		if msg != "" {
			return fmt.Sprintf("%d: %s", statusCode, msg)
		}
	}

	// Friendly messages for common status codes
	switch statusCode {
	case 401:
		return "401: authentication failed — check your API key"
	case 403:
		return "403: access denied — your API key may not have the required permissions"
	case 404:
		return "404: model or endpoint not found"
	case 429:
		return "429: rate limited — too many requests, please wait"
	case 500:
		return "500: internal server error on the provider side"
	case 502, 503:
		return fmt.Sprintf("%d: provider service temporarily unavailable", statusCode)
	case 529:
		return "529: provider is overloaded, please try again later"
	}

	// Fallback
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return fmt.Sprintf("HTTP %d: %s", statusCode, s)
}
