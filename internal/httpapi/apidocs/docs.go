// Package apidocs holds the Swagger document served under -tags=swagger.
// Regenerate with `swag init -g cmd/imgclassd/docs.go -o internal/httpapi/apidocs`.
package apidocs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/classify": {
            "post": {
                "description": "Accepts a multipart \"image\" field or a raw image body and returns the top predictions.",
                "consumes": ["multipart/form-data", "image/jpeg", "image/png"],
                "produces": ["application/json"],
                "tags": ["classify"],
                "summary": "Classify an image",
                "parameters": [
                    {"type": "file", "description": "Image file", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ClassifyResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List model files",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Classifier and worker status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.Prediction": {
            "type": "object",
            "properties": {
                "label": {"type": "string", "example": "tabby"},
                "confidence": {"type": "number", "example": 0.87}
            }
        },
        "types.ClassifyResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "variant": {"type": "string", "example": "resnet50"},
                "label": {"type": "string", "example": "tabby"},
                "confidence": {"type": "number", "example": 0.87},
                "top": {"type": "array", "items": {"$ref": "#/definitions/types.Prediction"}},
                "duration_ms": {"type": "integer", "example": 41}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "integer", "example": 400},
                "kind": {"type": "string", "example": "input_error"}
            }
        },
        "types.Model": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "resnet50"},
                "name": {"type": "string"},
                "path": {"type": "string"},
                "input_size": {"type": "integer", "example": 224},
                "active": {"type": "boolean"}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}
            }
        },
        "types.WorkerStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "state": {"type": "string", "example": "idle"},
                "processed": {"type": "integer"},
                "failed": {"type": "integer"},
                "last_used_unix": {"type": "integer"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "example": "ready"},
                "variant": {"type": "string", "example": "resnet50"},
                "workers": {"type": "array", "items": {"$ref": "#/definitions/types.WorkerStatus"}},
                "queue_len": {"type": "integer"},
                "max_queue_depth": {"type": "integer", "example": 32},
                "admission": {"type": "string", "example": "block"},
                "processed_total": {"type": "integer"},
                "failed_total": {"type": "integer"},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "imgclassd API",
	Description:      "HTTP API for queued image classification.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
