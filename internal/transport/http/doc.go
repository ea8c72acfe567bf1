// Package http wires the report, health and version endpoints onto a
// chi router. Handlers translate HTTP concerns into service calls and
// render errors as structured JSON.
package http
