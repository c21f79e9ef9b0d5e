package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// Problem type URIs, relative to the API host.
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeTimeout         = "/errors/timeout"
	TypePayloadTooLarge = "/errors/payload-too-large"
	TypeMethod          = "/errors/method-not-allowed"

	TypeFileNotFound      = "/errors/dataset/file-not-found"
	TypeUnsupportedFormat = "/errors/dataset/unsupported-format"
	TypeUnprocessable     = "/errors/dataset/unprocessable"
	TypeNoResultData      = "/errors/dataset/no-result-data"
	TypeWebSocketUpgrade  = "/errors/websocket/upgrade-failed"
)

// problemTypes maps an APIError code to its problem type. Unlisted codes are
// reported as TypeInternal.
var problemTypes = map[string]string{
	CodeInvalidRequest:    TypeValidation,
	CodeValidationFailed:  TypeValidation,
	CodeTooManyFiles:      TypeValidation,
	CodeNotFound:          TypeNotFound,
	CodeUnknownTable:      TypeNotFound,
	CodeFileNotFound:      TypeFileNotFound,
	CodeNoResultData:      TypeNoResultData,
	CodeUnsupportedFormat: TypeUnsupportedFormat,
	CodeUnprocessable:     TypeUnprocessable,
	CodePayloadTooLarge:   TypePayloadTooLarge,
	CodeRateLimited:       TypeRateLimit,
	CodeWebSocketUpgrade:  TypeWebSocketUpgrade,
}

// ProblemDetails is an RFC 7807 response body. Extensions are written as
// top-level members next to the standard ones.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

// Render implements render.Renderer
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(pd.Extensions)+5)
	for k, v := range pd.Extensions {
		out[k] = v
	}
	out["type"], out["title"], out["status"] = pd.Type, pd.Title, pd.Status
	if pd.Detail != "" {
		out["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		out["instance"] = pd.Instance
	}
	return json.Marshal(out)
}

// NewProblemDetails builds a problem for status. An empty title falls back to
// the status text.
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	if title == "" {
		title = http.StatusText(status)
	}
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension sets an extension member and returns pd for chaining
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}
