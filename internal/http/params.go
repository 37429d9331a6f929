package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/stock-manager/internal/apperr"
)

// maxBodyBytes leaves room for images embedded as data URLs.
const maxBodyBytes = 8 << 20

func pathID(r *http.Request) (uuid.UUID, error) {
	var id uuid.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		}); err != nil {
		return uuid.Nil, apperr.InvalidParamErr.WithMsgf("invalid format for parameter id: %v", err).WrapParent(err)
	}
	return id, nil
}

// queryParam binds an optional query parameter into dest, which must be a
// pointer to a pointer.
func queryParam(query url.Values, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
		return apperr.InvalidParamErr.WithMsgf("invalid format for parameter %s: %v", name, err).WrapParent(err)
	}
	return nil
}

// queryTime parses an optional timestamp query parameter. RFC 3339 is tried
// first so cursors handed out by the API round-trip exactly; other common
// layouts are accepted and read as UTC.
func queryTime(query url.Values, name string) (*time.Time, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t, nil
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return nil, apperr.InvalidParamErr.WithMsgf("invalid format for parameter %s: %q is not a timestamp", name, raw).WrapParent(err)
	}
	return &t, nil
}

// decodeJSON decodes a request body into dest, rejecting unknown fields and
// values of the wrong type.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		var (
			syntaxErr    *json.SyntaxError
			typeErr      *json.UnmarshalTypeError
			maxBytesErr  *http.MaxBytesError
			malformedErr = apperr.MalformedBodyErr.WrapParent(err)
		)
		switch {
		case errors.Is(err, io.EOF):
			return malformedErr.WithMsgf("request body is empty")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return malformedErr.WithMsgf("request body is not valid JSON")
		case errors.As(err, &typeErr):
			return malformedErr.WithMsgf("field %s must be of type %s", typeErr.Field, jsonTypeName(typeErr.Type.String()))
		case errors.As(err, &maxBytesErr):
			return malformedErr.WithMsgf("request body exceeds %d bytes", maxBytesErr.Limit)
		default:
			return malformedErr.WithMsgf("invalid request body: %v", err)
		}
	}

	if dec.More() {
		return apperr.MalformedBodyErr.WithMsgf("request body must hold a single JSON object")
	}

	return nil
}

func jsonTypeName(goType string) string {
	switch goType {
	case "int64", "*int64", "int", "int32":
		return "integer"
	case "string", "*string", "model.HistoryAction":
		return "string"
	case "uuid.UUID", "*uuid.UUID":
		return "uuid string"
	default:
		return goType
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}
