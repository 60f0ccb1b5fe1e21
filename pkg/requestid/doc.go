// Package requestid tags every request with a correlation ID that shows up in
// the X-Request-ID response header, in log records and on error pages.
package requestid
