// Package driving provides interfaces for external actors (primary/inbound
// ports): the HTTP API and the CLI consume these.
package driving
