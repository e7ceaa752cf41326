package api

import (
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/adept-ml/preprocessing/pkg/api/handlers"
	"github.com/adept-ml/preprocessing/pkg/building"
)

// API metadata published in the OpenAPI document.
const (
	APITitle       = "Preprocessing API"
	APIVersion     = "0.1.0"
	APIDescription = "API for preprocessing on building data"
	APILogoURL     = "https://user-images.githubusercontent.com/61744142/188621988-a3d82a34-c2b3-4084-bae9-6b35fdf8ba9b.png"
)

// ProcessRequest is the body of every processing route. Payload is a
// building document object or the same object encoded as a JSON string.
type ProcessRequest struct {
	Payload any `json:"payload" jsonschema:"required,description=Building document keyed by building name or the document as a JSON string"`
}

// BuildingEntry is one value of a building document.
type BuildingEntry struct {
	Name      string            `json:"name" jsonschema:"description=Building name"`
	Sensors   []building.Sensor `json:"sensors"`
	Dataframe string            `json:"dataframe" jsonschema:"description=JSON object of columns mapping epoch-millisecond timestamps to values or null"`
}

// openAPIDocument builds an OpenAPI 3.1 document for routes. Schemas are
// reflected from the Go types with invopop/jsonschema.
func openAPIDocument(routes []route) map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	schemas := map[string]any{
		"ProcessRequest": reflector.Reflect(&ProcessRequest{}),
		"BuildingDocument": &jsonschema.Schema{
			Type:                 "object",
			AdditionalProperties: reflector.Reflect(&BuildingEntry{}),
		},
		"Route":          reflector.Reflect(&handlers.Route{}),
		"Problem":        reflector.Reflect(&handlers.Problem{}),
		"HealthResponse": reflector.Reflect(&handlers.Response{}),
	}
	for _, s := range schemas {
		if schema, ok := s.(*jsonschema.Schema); ok {
			schema.Version = ""
		}
	}

	paths := map[string]any{}
	for _, rt := range routes {
		item, _ := paths[rt.path].(map[string]any)
		if item == nil {
			item = map[string]any{}
			paths[rt.path] = item
		}
		item[strings.ToLower(rt.method)] = operationFor(rt)
	}

	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":       APITitle,
			"version":     APIVersion,
			"description": APIDescription,
			"x-logo":      map[string]any{"url": APILogoURL},
		},
		"paths":      paths,
		"components": map[string]any{"schemas": schemas},
	}
}

func operationFor(rt route) map[string]any {
	op := map[string]any{
		"summary":     rt.name,
		"operationId": operationID(rt),
		"tags":        []string{rt.tag},
	}

	switch rt.path {
	case "/clean", "/interpolate", "/normalize":
		op["requestBody"] = map[string]any{
			"required": true,
			"content":  jsonContent("ProcessRequest"),
		}
		op["responses"] = map[string]any{
			"200": response("Processed building document", jsonContent("BuildingDocument")),
			"400": problemResponse("Invalid request body or empty payload"),
			"413": problemResponse("Request body too large"),
			"422": problemResponse("Payload is not a valid building document"),
			"500": problemResponse("Internal Server Error"),
		}
		if rt.path == "/normalize" {
			op["parameters"] = []any{map[string]any{
				"name":        "method",
				"in":          "query",
				"required":    false,
				"description": "Normalization method",
				"schema": map[string]any{
					"type":    "string",
					"enum":    []string{"minmax", "mean"},
					"default": "minmax",
				},
			}}
		}
	case "/":
		op["responses"] = map[string]any{
			"200": response("Available routes", map[string]any{
				"application/json": map[string]any{"schema": map[string]any{
					"type":  "array",
					"items": ref("Route"),
				}},
			}),
		}
	case "/health", "/health/ready":
		responses := map[string]any{
			"200": response("Healthy", jsonContent("HealthResponse")),
		}
		if rt.path == "/health/ready" {
			responses["503"] = response("Data management service unreachable", jsonContent("HealthResponse"))
		}
		op["responses"] = responses
	default:
		op["responses"] = map[string]any{
			"200": response(rt.name, map[string]any{
				"application/json": map[string]any{"schema": map[string]any{"type": "object"}},
			}),
		}
	}
	return op
}

func operationID(rt route) string {
	name := strings.Trim(strings.NewReplacer("/", "_", ".", "_").Replace(rt.path), "_")
	if name == "" {
		name = "root"
	}
	return strings.ToLower(rt.method) + "_" + name
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema string) map[string]any {
	return map[string]any{"application/json": map[string]any{"schema": ref(schema)}}
}

func response(description string, content map[string]any) map[string]any {
	return map[string]any{"description": description, "content": content}
}

func problemResponse(description string) map[string]any {
	return response(description, map[string]any{
		handlers.ContentTypeProblemJSON: map[string]any{"schema": ref("Problem")},
	})
}
