// Package openapi exports sink descriptors as OpenAPI 3 schemas so API
// clients can validate a sink configuration payload without rendering the
// form. Schemas are built with kin-openapi and carry the rendering hints under
// the x-sinkform extension.
package openapi
