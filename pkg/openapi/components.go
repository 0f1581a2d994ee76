package openapi

import "maps"

func errorBody(description string) *Response {
	return &Response{
		Description: description,
		Content: jsonContent(Object([]string{"error"}, map[string]*Schema{
			"error": String("Error message"),
		})),
	}
}

// NewComponents creates Components with the shared error responses. The
// fallback response names the dependency and stage that failed.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Fallback": Object([]string{"error", "fallback", "details"}, map[string]*Schema{
				"error":    String("").WithExample("vision service unavailable"),
				"fallback": Boolean("").WithExample(true),
				"stage":    String("Pipeline stage that failed").WithExample("caption"),
				"details":  String("Underlying error text"),
			}),
		},
		Responses: map[string]*Response{
			"BadRequest":   errorBody("Invalid request"),
			"Unauthorized": errorBody("Missing or invalid admin token"),
			"ServiceUnavailable": {
				Description: "A dependency failed or returned unusable output",
				Content:     jsonContent(SchemaRef("Fallback")),
			},
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}
