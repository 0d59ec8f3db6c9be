// Package middleware maps HTTP request and response bodies through docbind
// schemas, negotiating JSON, XML or YAML from the Content-Type and Accept
// headers. Framework adapters live in the gin and echo submodules.
package middleware

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/docbind"
)

// MaxBodyBytes bounds request bodies read by Decode.
const MaxBodyBytes = 4 << 20

var mediaTypes = map[string]docbind.Format{
	"application/json":   docbind.FormatHash,
	"text/json":          docbind.FormatHash,
	"application/xml":    docbind.FormatXML,
	"text/xml":           docbind.FormatXML,
	"application/yaml":   docbind.FormatYAML,
	"application/x-yaml": docbind.FormatYAML,
	"text/yaml":          docbind.FormatYAML,
}

// FormatFor maps a media type (parameters allowed) to a document format.
func FormatFor(mediaType string) (docbind.Format, bool) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return 0, false
	}
	if f, ok := mediaTypes[mt]; ok {
		return f, true
	}
	switch {
	case strings.HasSuffix(mt, "+json"):
		return docbind.FormatHash, true
	case strings.HasSuffix(mt, "+xml"):
		return docbind.FormatXML, true
	case strings.HasSuffix(mt, "+yaml"):
		return docbind.FormatYAML, true
	}
	return 0, false
}

// ContentType is the response media type for a format.
func ContentType(f docbind.Format) string {
	switch f {
	case docbind.FormatXML:
		return "application/xml; charset=utf-8"
	case docbind.FormatYAML:
		return "application/yaml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// RequestFormat reads the body format from Content-Type. A missing header
// means JSON.
func RequestFormat(r *http.Request) (docbind.Format, bool) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return docbind.FormatHash, true
	}
	return FormatFor(ct)
}

// ResponseFormat picks the first supported media type listed in Accept,
// falling back to JSON.
func ResponseFormat(r *http.Request) docbind.Format {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if f, ok := FormatFor(strings.TrimSpace(part)); ok {
			return f
		}
	}
	return docbind.FormatHash
}

// ErrUnsupportedMediaType is returned by Decode for unknown Content-Types.
var ErrUnsupportedMediaType = errors.New("middleware: unsupported media type")

// Decode populates obj from the request body.
func Decode(r *http.Request, obj any, opts ...docbind.CallOption) error {
	f, ok := RequestFormat(r)
	if !ok {
		return ErrUnsupportedMediaType
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		return err
	}
	return docbind.Parse(r.Context(), f, data, obj, opts...)
}

// Write renders obj in the format the request accepts.
func Write(w http.ResponseWriter, r *http.Request, status int, obj any, opts ...docbind.CallOption) error {
	f := ResponseFormat(r)
	body, err := docbind.Render(r.Context(), f, obj, opts...)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", ContentType(f))
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// StatusFor maps a mapping error to an HTTP status: schema problems are
// server errors, everything else is a bad request.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, docbind.ErrConfiguration):
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// ErrorPayload shapes an error for JSON responses.
func ErrorPayload(err error) map[string]any {
	iss, ok := docbind.AsIssues(err)
	if !ok {
		return map[string]any{"error": err.Error()}
	}
	out := make([]map[string]string, 0, len(iss))
	for _, it := range iss {
		m := map[string]string{"path": it.Path, "code": it.Code, "message": it.Message}
		if it.Hint != "" {
			m["hint"] = it.Hint
		}
		out = append(out, m)
	}
	return map[string]any{"issues": out}
}

// WriteError writes err as a JSON error payload.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", ContentType(docbind.FormatHash))
	w.WriteHeader(StatusFor(err))
	_ = json.NewEncoder(w).Encode(ErrorPayload(err))
}

// ctxKeyEntity is a typed context key for a decoded *T. Using a generic
// struct type ensures uniqueness per T.
type ctxKeyEntity[T any] struct{}

// ContextWithEntity attaches a decoded entity to the context.
func ContextWithEntity[T any](ctx context.Context, v *T) context.Context {
	return context.WithValue(ctx, ctxKeyEntity[T]{}, v)
}

// EntityFromContext retrieves an entity stored by ContextWithEntity.
func EntityFromContext[T any](ctx context.Context) (*T, bool) {
	v, ok := ctx.Value(ctxKeyEntity[T]{}).(*T)
	return v, ok
}

// Entity is the constraint for types decoded by Bind: a pointer to T that
// declares its own schema.
type Entity[T any] interface {
	*T
	docbind.Representable
}

// DecodeNew decodes the request body into a fresh *T.
func DecodeNew[T any, PT Entity[T]](r *http.Request, opts ...docbind.CallOption) (*T, error) {
	v := new(T)
	if err := Decode(r, PT(v), opts...); err != nil {
		return nil, err
	}
	return v, nil
}

// Bind decodes the request body into a fresh *T, stores it in the request
// context and calls next. Decoding failures are answered with an error
// payload.
func Bind[T any, PT Entity[T]](next http.Handler, opts ...docbind.CallOption) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := DecodeNew[T, PT](r, opts...)
		if err != nil {
			WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithEntity(r.Context(), v)))
	})
}
