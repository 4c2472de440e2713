// Package server exposes sink descriptors over HTTP: the summary columns of
// every registered sink, rendered forms, OpenAPI schemas, submission
// validation and connection checks.
package server
