package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SG Reserve API",
        "description": "Gateway for the past-exam print reservation flow",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Proxy", "description": "Authenticated relay to the upstream API"},
        {"name": "Selection", "description": "Cascading exam selection wizard"},
        {"name": "Reservation", "description": "Check step and submission"},
        {"name": "Receipts", "description": "Signed receipt downloads"},
        {"name": "Session", "description": "Per-credential remembered state"},
        {"name": "Signup", "description": "Approval-based registration"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/proxy/{path}": {
            "get": {
                "tags": ["Proxy"],
                "summary": "Relay a request to the upstream API",
                "parameters": [
                    {"name": "path", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Upstream response, relayed verbatim"},
                    "400": {"description": "Missing path", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Upstream unreachable or unconfigured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/exams": {
            "get": {
                "tags": ["Proxy"],
                "summary": "Fetch the exam list through the relay",
                "parameters": [
                    {"name": "Authorization", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Upstream exam list"},
                    "401": {"description": "Missing credential", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservation/sessions": {
            "post": {
                "tags": ["Selection"],
                "summary": "Open a selection session",
                "responses": {
                    "201": {"description": "Session snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservation/sessions/{id}": {
            "get": {
                "tags": ["Selection"],
                "summary": "Read a selection session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Session snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Selection"],
                "summary": "Discard a selection session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Discarded"}
                }
            }
        },
        "/api/reservation/sessions/{id}/kind": {
            "post": {
                "tags": ["Selection"],
                "summary": "Choose the exam kind",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Session snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservation/sessions/{id}/category": {
            "post": {
                "tags": ["Selection"],
                "summary": "Choose the exam category",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Session snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Kind not chosen yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservation/sessions/{id}/org": {
            "post": {
                "tags": ["Selection"],
                "summary": "Choose the school and fetch its exams",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Session snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Superseded by a newer selection", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservation/sessions/{id}/toggle": {
            "post": {
                "tags": ["Selection"],
                "summary": "Toggle an exam in the selection set",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Session snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservation/sessions/{id}/filter": {
            "post": {
                "tags": ["Selection"],
                "summary": "Narrow the grid to one faculty and term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Session snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservation/sessions/{id}/advance": {
            "post": {
                "tags": ["Selection"],
                "summary": "Hand the selection off to the check step",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Hand-off token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty selection", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservations/check": {
            "get": {
                "tags": ["Reservation"],
                "summary": "Load the confirmation view for a hand-off",
                "parameters": [
                    {"name": "X-Handoff-Token", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Check view", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Hand-off missing or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservations/check/rows/{examID}": {
            "patch": {
                "tags": ["Reservation"],
                "summary": "Patch one print-job row",
                "parameters": [
                    {"name": "X-Handoff-Token", "in": "header", "required": true, "type": "string"},
                    {"name": "examID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Updated row", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservations/submit": {
            "post": {
                "tags": ["Reservation"],
                "summary": "Submit the reservation",
                "parameters": [
                    {"name": "X-Handoff-Token", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Accepted reservation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reservations/done": {
            "get": {
                "tags": ["Reservation"],
                "summary": "Completion screen metadata",
                "responses": {
                    "200": {"description": "Done metadata", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/receipts/{token}": {
            "get": {
                "tags": ["Receipts"],
                "summary": "Download a reservation receipt",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Receipt PDF"},
                    "404": {"description": "Invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/session": {
            "delete": {
                "tags": ["Session"],
                "summary": "Forget everything remembered for this credential",
                "responses": {
                    "204": {"description": "Cleared"}
                }
            }
        },
        "/api/session/preferences": {
            "get": {
                "tags": ["Session"],
                "summary": "Read remembered UI preferences",
                "responses": {
                    "200": {"description": "Preferences", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Session"],
                "summary": "Store the grid view-mode preference",
                "responses": {
                    "200": {"description": "Stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/signup-requests": {
            "post": {
                "tags": ["Signup"],
                "summary": "Request an account",
                "responses": {
                    "201": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
