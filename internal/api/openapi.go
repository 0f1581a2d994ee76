package api

import (
	"github.com/JaimeStill/marlin/internal/config"
	"github.com/JaimeStill/marlin/pkg/openapi"
	"github.com/JaimeStill/marlin/pkg/routes"
)

// buildSpec documents every route under both the API base path and the
// root, where the same handlers are also served.
func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.OpenAPI.ServerURL)
	spec.Components.AddSchemas(schemas())

	routes.Describe(spec, "", groups...)
	routes.Describe(spec, cfg.API.BasePath, groups...)

	return openapi.MarshalJSON(spec)
}

func schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Candidate": openapi.Object([]string{"fish_name", "score", "score_reason"}, map[string]*openapi.Schema{
			"fish_name":    openapi.String("Species common name"),
			"score":        openapi.Range(0, 1, "Confidence in the species"),
			"score_reason": openapi.String("Why the species was proposed"),
		}),
		"SearchRequest": openapi.Object([]string{"text"}, map[string]*openapi.Schema{
			"text": openapi.String("Free text describing a fish"),
		}),
		"SearchResponse": openapi.Object([]string{"input", "results"}, map[string]*openapi.Schema{
			"input":   openapi.String("Echo of the query text"),
			"results": openapi.Array(openapi.SchemaRef("Candidate")),
		}),
		"ScientificNameRequest": openapi.Object([]string{"scientific_name"}, map[string]*openapi.Schema{
			"scientific_name": openapi.String("Exact scientific name"),
		}),
		"ScientificNameResponse": openapi.Object([]string{"scientific_name", "fish_data"}, map[string]*openapi.Schema{
			"scientific_name": openapi.String(""),
			"fish_data":       openapi.Array(openapi.Object(nil, nil)),
			"message":         openapi.String("Set when no entry matched"),
		}),
		"SelectorState": openapi.Object([]string{"USE_GEMINI", "use_alternate", "provider"}, map[string]*openapi.Schema{
			"USE_GEMINI":    openapi.Boolean("Same value as use_alternate"),
			"use_alternate": openapi.Boolean(""),
			"provider":      openapi.String("Name of the selected candidate provider"),
		}),
		"ImageRequest": openapi.Object([]string{"image"}, map[string]*openapi.Schema{
			"image": openapi.String("Object key of a stored image").WithExample("fish-image/clownfish/01.jpg"),
		}),
		"CaptionResult": openapi.Object([]string{"caption"}, map[string]*openapi.Schema{
			"caption": openapi.String("Model generated description of the image"),
		}),
		"DetailsResult": openapi.Object([]string{"image_contains_fish", "fish_details"}, map[string]*openapi.Schema{
			"image_contains_fish": openapi.Boolean(""),
			"rejection_reason":    openapi.String("Set when the image holds no fish"),
			"fish_details": openapi.Object(nil, map[string]*openapi.Schema{
				"fish_name":            openapi.String(""),
				"scientific_name":      openapi.String(""),
				"order_name":           openapi.String(""),
				"physical_description": openapi.String(""),
				"habitat":              openapi.String(""),
			}),
		}),
		"IdentifyResult": openapi.Object([]string{"input_image", "ai_generated_caption", "elasticsearch_results"}, map[string]*openapi.Schema{
			"input_image":           openapi.String("Echo of the image key"),
			"ai_generated_caption":  openapi.String(""),
			"elasticsearch_results": openapi.Array(openapi.SchemaRef("Candidate")),
		}),
		"RankedResult": openapi.Object([]string{"image_contains_fish", "results"}, map[string]*openapi.Schema{
			"image_contains_fish": openapi.Boolean(""),
			"rejection_reason":    openapi.String("Set when the image holds no fish"),
			"results":             openapi.Array(openapi.SchemaRef("Candidate")),
		}),
		"ChatMessage": openapi.Object([]string{"role", "content"}, map[string]*openapi.Schema{
			"role":    openapi.String("").OneOf("user", "assistant"),
			"content": openapi.String(""),
		}),
		"GenerationRequest": openapi.Object([]string{"question"}, map[string]*openapi.Schema{
			"question":     openapi.String(""),
			"chat_history": openapi.Array(openapi.SchemaRef("ChatMessage")),
			"context":      openapi.String("Optional grounding text"),
		}),
		"GenerationResult": openapi.Object([]string{"response"}, map[string]*openapi.Schema{
			"response": openapi.String(""),
		}),
		"ImageList": openapi.Object([]string{"prefix", "keys", "truncated"}, map[string]*openapi.Schema{
			"prefix":    openapi.String(""),
			"keys":      openapi.Array(openapi.String("")),
			"truncated": openapi.Boolean(""),
		}),
		"ImageStatus": openapi.Object([]string{"key", "exists"}, map[string]*openapi.Schema{
			"key":    openapi.String(""),
			"exists": openapi.Boolean(""),
		}),
	}
}
