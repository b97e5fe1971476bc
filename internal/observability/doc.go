// Package observability wires structured logging for the gateway.
package observability
