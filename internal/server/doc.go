// Package server captures the OAuth2 authorization code on the loopback redirect URI.
//
// # Listener
//
// A [Listener] is created for a single authorization attempt:
//
//	ln, _ := server.NewListener(server.ListenerOptions{RedirectURI: uri, State: state})
//	_ = ln.Start()
//	defer ln.Stop(ctx)
//	code, err := ln.CaptureCode(ctx)
//
// The serving goroutine is tracked by an errgroup. The code travels from the
// handler to [Listener.CaptureCode] through a channel with room for one value.
//
// # Callback Handler
//
// [CallbackHandler] processes only the first request. It checks the error and
// state parameters before accepting the code; later requests get 400.
//
// # Router
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a [Middleware]
// stack. [RequestLogger] logs each request without its query string.
package server
