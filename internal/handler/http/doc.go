// Package http implements the HTTP transport layer of the blog.
//
// It exposes route wiring, page handlers and middleware. Cross-cutting
// concerns such as request tracing, access logging, session resolution,
// sign-in enforcement, rate limiting and response compression are handled
// in this package before requests are delegated to the service layer.
// Pages are produced by a Renderer: HTML templates when a templates
// directory is configured, JSON otherwise.
package http
