// Package httpserver runs the liveform HTTP server with graceful shutdown and
// provides liveness and readiness handlers.
package httpserver
