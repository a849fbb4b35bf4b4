package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/validatex"
)

// Request describes one API call relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is sent as JSON. Struct bodies are validated first.
	Body any
	// File switches the request to multipart/form-data.
	File *FilePart
	// SkipRefresh returns a 401 as is, without the refresh-and-retry step.
	// Used by endpoints where a 401 means bad input rather than an expired
	// session.
	SkipRefresh bool

	anonymous bool
}

// FilePart is a single file in a multipart upload.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// payload is an encoded body. It is built once and can be sent any number
// of times, which the retry after a refresh relies on.
type payload struct {
	data        []byte
	contentType string
}

func (r *Request) encode() (payload, error) {
	if r.Method == "" || r.Path == "" {
		return payload{}, errors.New("request method and path are required")
	}

	if r.File != nil {
		return r.encodeMultipart()
	}

	if r.Body == nil {
		return payload{contentType: common.ContentTypeJSON}, nil
	}

	if fields := validateValue(r.Body); fields != nil {
		return payload{}, validationError(fields)
	}

	data, err := json.Marshal(r.Body)
	if err != nil {
		return payload{}, fmt.Errorf("failed to encode request body: %w", err)
	}
	return payload{data: data, contentType: common.ContentTypeJSON}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (r *Request) encodeMultipart() (payload, error) {
	f := r.File
	if len(f.Data) == 0 {
		return payload{}, errors.New("upload is empty")
	}
	field := f.Field
	if field == "" {
		field = "file"
	}
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.FileName)))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return payload{}, err
	}
	if _, err := part.Write(f.Data); err != nil {
		return payload{}, err
	}
	if err := w.Close(); err != nil {
		return payload{}, err
	}
	return payload{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

// validateValue runs struct validation on v when v is (a pointer to) a struct.
func validateValue(v any) map[string][]string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validatex.Struct(v)
}
