// Package httputil writes JSON bodies on fasthttp responses.
package httputil

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON marshals v as the response body with the given status.
// Marshal failures become a 500 with a fixed error body.
func JSON(ctx *fasthttp.RequestCtx, v any, statusCode int) {
	body, err := json.Marshal(v)
	if err != nil {
		statusCode = fasthttp.StatusInternalServerError
		body = []byte(`{"error":"Internal server error"}`)
	}
	ctx.SetStatusCode(statusCode)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(body)
}

// JSONError is a convenience wrapper for error responses
func JSONError(ctx *fasthttp.RequestCtx, message string, statusCode int) {
	JSON(ctx, ErrorResponse{Error: message}, statusCode)
}
