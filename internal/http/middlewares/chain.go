package middlewares

import "net/http"

// Middleware envuelve un handler: RequireJWT, WithLogging, WithMetrics, etc.
type Middleware func(http.Handler) http.Handler

// Chain envuelve h con mws; el primero de la lista es el más externo, así que
// ve el request antes que el resto y la respuesta al final.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	wrapped := h
	for i := range mws {
		wrapped = mws[len(mws)-1-i](wrapped)
	}
	return wrapped
}

// ChainFunc es Chain para un http.HandlerFunc.
func ChainFunc(hf http.HandlerFunc, mws ...Middleware) http.Handler {
	return Chain(hf, mws...)
}
