// Package driving provides interfaces for primary/inbound adapters: the
// content-management surface and the query surface.
package driving
