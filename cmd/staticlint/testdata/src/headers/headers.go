package headers

import "net/http"

const name = "Trace-Id"

func set(h http.Header, id string) {
	h.Set("X-Request-Id", id) // want `use requestid.Header instead of "X-Request-Id"`
	h.Set("x-request-id", id) // want `use requestid.Header instead of "x-request-id"`
	h.Set(name, id)
}
