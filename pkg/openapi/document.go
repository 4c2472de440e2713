package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/sink"
)

// Version is the OpenAPI version emitted by Document.
const Version = "3.0.3"

// SinkSchema describes the configuration payload of a sink type.
func SinkSchema(desc sink.Descriptor) *openapi3.Schema {
	schema := FieldsSchema(desc.GetForm(sink.ModeForm, model.FormContext{}).Fields)
	schema.Title = desc.Type()
	return schema
}

// Document builds an OpenAPI document with one component schema and one
// validation operation per registered sink type, labelled for locale.
func Document(registry *sink.Registry, locale, version string) (*openapi3.T, error) {
	if version == "" {
		version = "dev"
	}
	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:   "sinkform",
			Version: version,
		},
		Components: &openapi3.Components{Schemas: openapi3.Schemas{}},
		Paths:      openapi3.NewPaths(),
	}

	for _, kind := range registry.List() {
		desc, err := registry.Descriptor(kind, locale)
		if err != nil {
			return nil, fmt.Errorf("openapi: %w", err)
		}
		schema := SinkSchema(desc)
		doc.Components.Schemas[kind] = openapi3.NewSchemaRef("", schema)

		ref := openapi3.NewSchemaRef("#/components/schemas/"+kind, schema)
		op := openapi3.NewOperation()
		op.OperationID = "validate" + kind
		op.Summary = "Validate a " + kind + " sink configuration"
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
		}
		op.Responses = openapi3.NewResponses(
			openapi3.WithStatus(200, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("validation result"),
			}),
			openapi3.WithStatus(404, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("unknown sink type"),
			}),
		)
		doc.Paths.Set("/sinks/"+kind+"/validate", &openapi3.PathItem{Post: op})
	}
	return doc, nil
}
