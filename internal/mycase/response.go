package mycase

import (
	"encoding/json"
	"mycase-search/internal/dispatch"
	"mycase-search/lib/htmlutil"
	"strings"
)

// RawResponse is stored in place of the parsed document when the body is
// not valid JSON.
type RawResponse struct {
	Raw        string            `json:"raw"`
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	// Title is the <title> of an HTML body, usually a block or challenge page.
	Title string `json:"title,omitempty"`
}

// ParseResponse returns the body as a json.RawMessage if it is a valid JSON
// document, otherwise it returns a RawResponse.
func ParseResponse(res dispatch.Result) any {
	trimmed := strings.TrimSpace(res.Body)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}

	return RawResponse{
		Raw:        res.Body,
		StatusCode: res.StatusCode,
		Headers:    res.Headers,
		Title:      htmlTitle(res),
	}
}

func htmlTitle(res dispatch.Result) string {
	contentType := ""
	for k, v := range res.Headers {
		if strings.EqualFold(k, "content-type") {
			contentType = v
			break
		}
	}
	if !strings.Contains(contentType, "html") && !strings.Contains(strings.ToLower(res.Body), "<title") {
		return ""
	}

	return htmlutil.Title(res.Body)
}
