package mycase

import (
	"fmt"
	"strconv"
	"strings"
)

// InputError is returned when the invocation input cannot produce a request.
// No network call is ever made after an InputError.
type InputError struct {
	Field string
}

func (e InputError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// SearchRequest holds the parameters of a single case search.
type SearchRequest struct {
	CourtItemID string
	QueryText   string
	PageIndex   string
	PageSize    string
	Advanced    string
	ActiveFlag  string
	FileStart   string
	FileEnd     string
}

const (
	DefaultPageIndex  = "1"
	DefaultPageSize   = "20"
	DefaultAdvanced   = "true"
	DefaultActiveFlag = "All"
)

// FromInput reads a SearchRequest out of a raw input object, applying
// defaults to every optional field that is absent, null or empty. Values are
// sent as given, a courtItemID of only whitespace counts as missing.
func FromInput(input map[string]any) (SearchRequest, error) {
	courtItemID := inputString(input, "courtItemID")
	if strings.TrimSpace(courtItemID) == "" {
		return SearchRequest{}, InputError{Field: "courtItemID"}
	}

	return SearchRequest{
		CourtItemID: courtItemID,
		QueryText:   inputString(input, "queryText"),
		PageIndex:   withDefault(inputString(input, "pageIndex"), DefaultPageIndex),
		PageSize:    withDefault(inputString(input, "pageSize"), DefaultPageSize),
		Advanced:    withDefault(inputString(input, "advanced"), DefaultAdvanced),
		ActiveFlag:  withDefault(inputString(input, "activeFlag"), DefaultActiveFlag),
		FileStart:   inputString(input, "fileStart"),
		FileEnd:     inputString(input, "fileEnd"),
	}, nil
}

func withDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func inputString(input map[string]any, key string) string {
	value, ok := input[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Payload is the JSON body expected by the search endpoint.
type Payload struct {
	CourtItemID string `json:"CourtItemID"`
	QueryText   string `json:"QueryText"`
	PageIndex   string `json:"PageIndex"`
	PageSize    string `json:"PageSize"`
	Advanced    string `json:"Advanced"`
	ActiveFlag  string `json:"ActiveFlag"`
	FileStart   string `json:"FileStart"`
	FileEnd     string `json:"FileEnd"`
}

func (r SearchRequest) Payload() Payload {
	return Payload{
		CourtItemID: r.CourtItemID,
		QueryText:   r.QueryText,
		PageIndex:   r.PageIndex,
		PageSize:    r.PageSize,
		Advanced:    r.Advanced,
		ActiveFlag:  r.ActiveFlag,
		FileStart:   r.FileStart,
		FileEnd:     r.FileEnd,
	}
}
