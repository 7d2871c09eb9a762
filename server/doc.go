// Package server exposes the analysis stream over HTTP using server-sent
// events. Each emitted event becomes one typed SSE frame; a client disconnect
// cancels the underlying session cooperatively and periodic comment frames
// keep idle connections alive through proxies.
package server
