// Package docs registers the OpenAPI document served at /docs/doc.json.
// Regenerate with `swag init -g cmd/api/main.go` after changing annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "Campus Reminders"},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "ScanSecret": {"type": "apiKey", "name": "Authorization", "in": "header", "description": "Bearer <SCAN_SECRET>, or send the secret in X-Scan-Secret"}
    },
    "paths": {
        "/scan": {
            "post": {
                "security": [{"ScanSecret": []}],
                "description": "Scans every user once and emails due reminders. With async=true the scan runs in the background and the call returns 202 immediately.",
                "produces": ["application/json"],
                "tags": ["scan"],
                "summary": "Trigger a reminder scan",
                "parameters": [{"type": "boolean", "description": "Return before the scan finishes", "name": "async", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/reminders.Report"}},
                    "202": {"description": "Accepted", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/scan/last": {
            "get": {
                "security": [{"ScanSecret": []}],
                "description": "Returns the report of the most recent scan from this process, or the last persisted run.",
                "produces": ["application/json"],
                "tags": ["scan"],
                "summary": "Last scan report",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/reminders.Report"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/contests": {
            "get": {
                "description": "Lists upcoming Codeforces, CodeChef, and LeetCode contests sorted by start time. Supports If-None-Match.",
                "produces": ["application/json"],
                "tags": ["contests"],
                "summary": "Upcoming programming contests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.contestsResponse"}},
                    "304": {"description": "Not modified"},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/notifications/test": {
            "post": {
                "security": [{"ScanSecret": []}],
                "description": "Renders a sample assignment, lab, or contest reminder and emails it. Available only when ENVIRONMENT=development.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Send a sample reminder",
                "parameters": [{"description": "Recipient and reminder kind", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.testNotificationRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "contests.Contest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "url": {"type": "string"},
                "start_time": {"type": "string", "format": "date-time"},
                "duration": {"type": "integer"},
                "site": {"type": "string"}
            }
        },
        "handler.contestsResponse": {
            "type": "object",
            "properties": {
                "contests": {"type": "array", "items": {"$ref": "#/definitions/contests.Contest"}},
                "count": {"type": "integer"}
            }
        },
        "handler.testNotificationRequest": {
            "type": "object",
            "properties": {
                "to": {"type": "string"},
                "kind": {"type": "string", "enum": ["assignment", "lab", "contest"]},
                "firstName": {"type": "string"}
            }
        },
        "reminders.Report": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "started_at": {"type": "string", "format": "date-time"},
                "duration_ns": {"type": "integer"},
                "users_scanned": {"type": "integer"},
                "users_skipped": {"type": "integer"},
                "notifications_sent": {"type": "integer"},
                "failures": {"type": "integer"},
                "write_failures": {"type": "integer"},
                "contests_loaded": {"type": "integer"},
                "truncated": {"type": "boolean"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "detail": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Campus Reminders API",
	Description:      "Scans student records for assignment deadlines, weekly lab slots, and programming contests, and emails one reminder per due event.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
