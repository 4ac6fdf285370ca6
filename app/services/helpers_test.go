package services

import (
	"net/http"
	"net/http/httptest"
)

func httptestRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/", nil)
}
