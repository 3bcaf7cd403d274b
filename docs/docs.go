// Package docs holds the OpenAPI description of the places backend.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/complete": {
            "get": {
                "produces": ["application/json"],
                "summary": "Complete a typed text to ranked places",
                "parameters": [
                    {
                        "type": "string",
                        "description": "typed text",
                        "name": "text",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/models.Suggestion"}
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {"type": "string"}
                        }
                    }
                }
            }
        },
        "/api/place/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get a place, optionally refined by a house number",
                "parameters": [
                    {
                        "type": "string",
                        "description": "place id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "house number",
                        "name": "houseNumber",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/models.Place"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {"type": "string"}
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {"type": "string"}
                        }
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "produces": ["application/json"],
                "summary": "Place counts, completion settings and cache metrics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/models.Metrics"}
                    }
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "summary": "Build version and git hash",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {"type": "string"}
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "models.CacheMetrics": {
            "type": "object",
            "properties": {
                "hits": {"type": "integer"},
                "misses": {"type": "integer"},
                "ratio": {"type": "number"},
                "keysAdded": {"type": "integer"},
                "keysEvicted": {"type": "integer"}
            }
        },
        "models.Metrics": {
            "type": "object",
            "properties": {
                "pageSize": {"type": "integer"},
                "candidateMax": {"type": "integer"},
                "levMinimum": {"type": "integer"},
                "distanceCut": {"type": "integer"},
                "cacheTTL": {"type": "string"},
                "streetCount": {"type": "integer"},
                "locationCount": {"type": "integer"},
                "houseNumberCount": {"type": "integer"},
                "queryCount": {"type": "integer"},
                "avgLookupTime": {"type": "string"},
                "cacheMetrics": {"$ref": "#/definitions/models.CacheMetrics"}
            }
        },
        "models.Place": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "class": {"type": "string"},
                "type": {"type": "string"},
                "name": {"type": "string"},
                "street": {"type": "string"},
                "houseNumber": {"type": "string"},
                "postcode": {"type": "string"},
                "district": {"type": "string"},
                "neighbourhood": {"type": "string"},
                "boundary": {"type": "string"},
                "city": {"type": "string"},
                "length": {"type": "integer"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "relevance": {"type": "integer"},
                "osm": {"type": "string"},
                "disc": {"type": "string"}
            }
        },
        "models.Suggestion": {
            "type": "object",
            "properties": {
                "distance": {"type": "integer"},
                "place": {"$ref": "#/definitions/models.Place"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Places API",
	Description:      "Completion and lookup of streets, locations and house numbers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
