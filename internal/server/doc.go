// Package server implements kisan-server, the LAN assistant backend.
//
// The server puts one assistant (keyword stub or Gemini) behind a small HTTP
// API so that several terminals on a farm network can share one API key:
//
//	POST /api/ask   {"prompt": "...", "image": "<base64>"} → {"response": "..."}
//	GET  /ws/chat   JSON frames {id, prompt, image?} → {id, response?, error?}
//	GET  /health    {"status": "ok", "version": "...", "provider": "..."}
//
// An empty prompt or an undecodable image is a 400. A failure of the
// upstream assistant is a 502 carrying the error text.
//
// # Discovery
//
// Unless disabled, the server advertises itself as "_kisan._tcp" over mDNS
// (see the discovery package) so that "kisan scan" can find it.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{Port: 8080, Provider: "stub"}, assistant.NewKeyword())
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return srv.Start(ctx)
//
// # Graceful Shutdown
//
// When the context passed to Start is cancelled the server:
//  1. Withdraws the mDNS advertisement
//  2. Stops accepting new connections
//  3. Closes open chat sockets
//  4. Waits for in-flight requests to finish, up to ShutdownTimeout
//
// # Thread Safety
//
// Each HTTP request and each chat socket is served on its own goroutine. The
// assistant must be safe for concurrent use.
package server
