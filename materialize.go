package endpoint

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// Materializer writes a pipeline Result to the response.
type Materializer struct {
	codecs *codecRegistry
}

// NewMaterializer returns a Materializer that knows the built-in JSON, XML
// and YAML encoders plus any given ones.
func NewMaterializer(encoders ...Encoder) *Materializer {
	return &Materializer{codecs: newCodecRegistry(encoders, nil)}
}

// Materialize writes res to w. A Handled result writes nothing. Otherwise
// the status and Content-Type come from the result's Response, and the body
// is written raw for string, []byte and io.Reader values and encoded by
// content type for anything else.
//
// The body is encoded before anything is written, so an error leaves w
// untouched. Materialize must be called at most once per request.
func (m *Materializer) Materialize(w http.ResponseWriter, _ *http.Request, res Result) error {
	resp := res.Response()
	if resp == nil {
		return nil
	}

	var (
		body   io.Reader
		closer io.Closer
	)
	switch v := resp.Body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(v)
	case []byte:
		body = bytes.NewReader(v)
	case io.Reader:
		body = v
		if c, ok := v.(io.Closer); ok {
			closer = c
		}
	default:
		var buf bytes.Buffer
		if err := m.codecs.encoderFor(resp.ContentType).Encode(&buf, v); err != nil {
			return fmt.Errorf("encode %s body: %w", resp.ContentType, err)
		}
		body = &buf
	}
	if closer != nil {
		defer closer.Close() //nolint:errcheck // read side
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.StatusCode)
	if body == nil {
		return nil
	}
	//nolint:errcheck,gosec // best-effort after WriteHeader
	io.Copy(w, body)
	return nil
}
