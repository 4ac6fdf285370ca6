package session

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// saveWriter runs save exactly once before the response headers go out.
type saveWriter struct {
	http.ResponseWriter
	save  func()
	saved bool
}

func (w *saveWriter) flushSession() {
	if w.saved {
		return
	}
	w.saved = true
	w.save()
}

func (w *saveWriter) WriteHeader(code int) {
	w.flushSession()
	w.ResponseWriter.WriteHeader(code)
}

func (w *saveWriter) Write(b []byte) (int, error) {
	w.flushSession()
	return w.ResponseWriter.Write(b)
}

func (w *saveWriter) Flush() {
	w.flushSession()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *saveWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.flushSession()
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("session: response writer cannot hijack")
}

func (w *saveWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
