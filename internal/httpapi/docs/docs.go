// Package docs registers the admin API description with swag. Regenerate
// with `swag init -g cmd/modelpipe/docs.go -o internal/httpapi/docs`.
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
        "/healthz": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["admin"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "ok", "schema": {"type": "string"}}}
            }
        },
        "/readyz": {
            "get": {
                "description": "200 once a model session is loaded, 503 before.",
                "produces": ["text/plain"],
                "tags": ["admin"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "ready", "schema": {"type": "string"}},
                    "503": {"description": "no session", "schema": {"type": "string"}}
                }
            }
        },
        "/status": {
            "get": {
                "description": "Session, counters and rolling stats. CBOR with ?format=cbor or Accept: application/cbor.",
                "produces": ["application/json", "application/cbor"],
                "tags": ["admin"],
                "summary": "Service status",
                "parameters": [
                    {"type": "string", "description": "json or cbor", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.StatsResponse": {
            "type": "object",
            "properties": {
                "average_batch_time_ms": {"type": "number", "example": 11.8},
                "last_batch_time_ms": {"type": "number", "example": 12.5},
                "last_memory_bytes": {"type": "integer", "example": 4096},
                "observations": {"type": "integer", "example": 7},
                "predictions_per_second": {"type": "number", "example": 240}
            }
        },
        "types.SessionStatus": {
            "type": "object",
            "properties": {
                "loaded_at_unix": {"type": "integer", "example": 1700000000},
                "path": {"type": "string"},
                "session_id": {"type": "string"},
                "stats": {"$ref": "#/definitions/types.StatsResponse"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "instance_id": {"type": "string"},
                "last_error": {"type": "string"},
                "loads_total": {"type": "integer", "example": 3},
                "runs_total": {"type": "integer", "example": 120},
                "server_time_unix": {"type": "integer", "example": 1700000000},
                "session": {"$ref": "#/definitions/types.SessionStatus"},
                "uptime_seconds": {"type": "integer", "example": 3600}
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
	Title:            "modelpipe admin API",
	Description:      "Admin surface of the modelpipe model service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
