package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	dErrors "supaboard/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

// Preparable is a request struct that trims its own input and validates it.
type Preparable[T any] interface {
	*T
	Normalize()
	Validate() error
}

// DecodeInput reads a JSON or form-encoded body into T, then normalizes and
// validates it. Form fields are matched by the struct's json tags.
func DecodeInput[T any, PT Preparable[T]](w http.ResponseWriter, r *http.Request) (*T, error) {
	var v T
	if err := decodeBody(w, r, &v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	p := PT(&v)
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return err
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
				return err
			}
		} else if err := r.ParseForm(); err != nil {
			return err
		}
		fields := make(map[string]string, len(r.PostForm))
		for k, vals := range r.PostForm {
			if len(vals) > 0 {
				fields[k] = vals[0]
			}
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dst)
	default:
		err := json.NewDecoder(r.Body).Decode(dst)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
}
