// Package api contains the HTTP handlers, request/response models, and
// error mapping for the task view endpoints. Handlers translate between the
// wire format and the service layer; filter semantics live below them.
package api
