// Package gzip оборачивает тело запроса и ответа для прозрачного сжатия.
package gzip

import (
	"compress/gzip"
	"io"
	"net/http"
	"sync"
)

var writers = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

// CompressWriter сжимает ответ, если статус успешный.
// Ответы об ошибках уходят как есть.
type CompressWriter struct {
	w          http.ResponseWriter
	zw         *gzip.Writer
	compressed bool
	wroteHead  bool
}

func NewCompressWriter(w http.ResponseWriter) *CompressWriter {
	return &CompressWriter{w: w}
}

func (c *CompressWriter) Header() http.Header {
	return c.w.Header()
}

func (c *CompressWriter) WriteHeader(statusCode int) {
	if c.wroteHead {
		return
	}
	c.wroteHead = true

	if statusCode < 300 {
		c.w.Header().Set("Content-Encoding", "gzip")
		c.w.Header().Add("Vary", "Accept-Encoding")
		c.w.Header().Del("Content-Length")

		zw := writers.Get().(*gzip.Writer)
		zw.Reset(c.w)
		c.zw = zw
		c.compressed = true
	}
	c.w.WriteHeader(statusCode)
}

func (c *CompressWriter) Write(p []byte) (int, error) {
	if !c.wroteHead {
		c.WriteHeader(http.StatusOK)
	}
	if c.compressed {
		return c.zw.Write(p)
	}
	return c.w.Write(p)
}

// Close дописывает gzip-футер и возвращает writer в пул.
func (c *CompressWriter) Close() error {
	if !c.compressed {
		return nil
	}
	err := c.zw.Close()
	writers.Put(c.zw)
	c.zw = nil
	c.compressed = false
	return err
}

// CompressReader распаковывает тело запроса.
type CompressReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func NewCompressReader(r io.ReadCloser) (*CompressReader, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &CompressReader{r: r, zr: zr}, nil
}

func (c *CompressReader) Read(p []byte) (int, error) {
	return c.zr.Read(p)
}

func (c *CompressReader) Close() error {
	if err := c.zr.Close(); err != nil {
		return err
	}
	return c.r.Close()
}
