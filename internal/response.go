package internal

import (
	"bytes"
	"net/http"
)

// Response buffers action output until the dispatcher flushes it.
//
// Writes accumulate in memory so that before-output hooks can rewrite the
// body and errors raised late in the chain can still replace it. SendError and
// Redirect bypass the buffer and commit the response immediately.
type Response struct {
	w           http.ResponseWriter
	beforeWrite []func()
	buf         bytes.Buffer
	status      int
	committed   bool
}

// NewResponse wraps w.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w, status: http.StatusOK}
}

// Header returns the header map sent on commit.
func (r *Response) Header() http.Header {
	return r.w.Header()
}

// Write appends to the buffered body.
func (r *Response) Write(p []byte) (int, error) {
	if r.committed {
		return 0, ErrResponseCommitted
	}
	return r.buf.Write(p)
}

// WriteString appends s to the buffered body.
func (r *Response) WriteString(s string) (int, error) {
	if r.committed {
		return 0, ErrResponseCommitted
	}
	return r.buf.WriteString(s)
}

// SetStatus sets the status sent on flush.
func (r *Response) SetStatus(code int) {
	r.status = code
}

// Status returns the status that was or will be sent.
func (r *Response) Status() int {
	return r.status
}

// Body returns the buffered body.
func (r *Response) Body() []byte {
	return r.buf.Bytes()
}

// SetBody replaces the buffered body.
func (r *Response) SetBody(b []byte) {
	r.buf.Reset()
	r.buf.Write(b)
}

// Reset discards the buffered body and status.
func (r *Response) Reset() {
	r.buf.Reset()
	r.status = http.StatusOK
}

// Committed reports whether headers have been sent.
func (r *Response) Committed() bool {
	return r.committed
}

// OnBeforeWrite registers fn to run once, right before headers are sent.
func (r *Response) OnBeforeWrite(fn func()) {
	r.beforeWrite = append(r.beforeWrite, fn)
}

// SendError discards buffered output and sends a plain error page for code.
func (r *Response) SendError(code int) error {
	if r.committed {
		return ErrResponseCommitted
	}
	r.buf.Reset()
	r.status = code
	r.commit()

	h := r.w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	r.w.WriteHeader(code)
	_, err := r.w.Write([]byte(http.StatusText(code)))
	return err
}

// Redirect discards buffered output and redirects to url.
func (r *Response) Redirect(req *http.Request, url string, code int) error {
	if r.committed {
		return ErrResponseCommitted
	}
	r.buf.Reset()
	r.status = code
	r.commit()
	http.Redirect(r.w, req, url, code)
	return nil
}

// Flush sends the status and buffered body.
func (r *Response) Flush() error {
	if r.committed {
		return ErrResponseCommitted
	}
	r.commit()
	if r.w.Header().Get("Content-Type") == "" && r.buf.Len() > 0 {
		r.w.Header().Set("Content-Type", http.DetectContentType(r.buf.Bytes()))
	}
	r.w.WriteHeader(r.status)
	_, err := r.w.Write(r.buf.Bytes())
	return err
}

func (r *Response) commit() {
	r.committed = true
	hooks := r.beforeWrite
	r.beforeWrite = nil
	for _, fn := range hooks {
		fn()
	}
}
