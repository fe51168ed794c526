// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs --v3.1
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "openapi": "3.1.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "{{.Host}}{{.BasePath}}"}],
    "components": {
        "securitySchemes": {
            "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
        },
        "schemas": {
            "Response": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean"},
                    "data": {},
                    "error": {"$ref": "#/components/schemas/ErrorInfo"},
                    "meta": {"$ref": "#/components/schemas/Meta"}
                }
            },
            "ErrorInfo": {
                "type": "object",
                "properties": {
                    "code": {"type": "string", "example": "ILLEGAL_TRANSITION"},
                    "message": {"type": "string"},
                    "field": {"type": "string"},
                    "request_id": {"type": "string"}
                }
            },
            "Meta": {
                "type": "object",
                "properties": {
                    "total": {"type": "integer"},
                    "page": {"type": "integer"},
                    "page_size": {"type": "integer"},
                    "total_pages": {"type": "integer"}
                }
            }
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/returns": {
            "get": {"operationId": "listReturns", "tags": ["returns"], "summary": "List returns",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Response"}}}}}},
            "post": {"operationId": "createReturn", "tags": ["returns"], "summary": "Take in a return",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Malformed request"}, "422": {"description": "Guard failure"}}}
        },
        "/returns/{id}": {
            "get": {"operationId": "getReturn", "tags": ["returns"], "summary": "Get a return",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "delete": {"operationId": "cancelReturn", "tags": ["returns"], "summary": "Cancel a return",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Illegal transition"}}}
        },
        "/returns/{id}/inspect": {"patch": {"operationId": "inspectReturn", "tags": ["returns"], "summary": "Record an inspection", "responses": {"200": {"description": "OK"}}}},
        "/returns/{id}/approve": {"patch": {"operationId": "approveReturn", "tags": ["returns"], "summary": "Approve a return", "responses": {"200": {"description": "OK"}}}},
        "/returns/{id}/reject": {"patch": {"operationId": "rejectReturn", "tags": ["returns"], "summary": "Reject a return", "responses": {"200": {"description": "OK"}}}},
        "/returns/{id}/process": {"patch": {"operationId": "processReturn", "tags": ["returns"], "summary": "Execute the approved resolution",
            "responses": {"200": {"description": "OK"}, "502": {"description": "Collaborator failed"}, "503": {"description": "Lock or dispatch timeout"}}}},
        "/returns/{id}/audit": {"get": {"operationId": "getReturnHistory", "tags": ["returns"], "summary": "Inspection and audit history", "responses": {"200": {"description": "OK"}}}},
        "/returns/{id}/suggestion": {"get": {"operationId": "getReturnSuggestion", "tags": ["returns"], "summary": "Suggested resolution", "responses": {"200": {"description": "OK"}}}},
        "/returns/{id}/attachments": {
            "get": {"operationId": "listReturnAttachments", "tags": ["attachments"], "summary": "List evidence", "responses": {"200": {"description": "OK"}}},
            "post": {"operationId": "requestReturnAttachment", "tags": ["attachments"], "summary": "Request an evidence upload", "responses": {"201": {"description": "Created"}}}
        },
        "/returns/{id}/slip": {"get": {"operationId": "renderReturnSlip", "tags": ["returns"], "summary": "Render the return slip PDF",
            "responses": {"200": {"description": "PDF", "content": {"application/pdf": {}}}, "503": {"description": "Printing disabled"}}}},
        "/returns/number/{returnNumber}": {"get": {"operationId": "getReturnByNumber", "tags": ["returns"], "summary": "Get a return by number", "responses": {"200": {"description": "OK"}}}},
        "/returns/stats": {"get": {"operationId": "getReturnStats", "tags": ["returns"], "summary": "Summary statistics", "responses": {"200": {"description": "OK"}}}},
        "/returns/analytics": {"get": {"operationId": "getReturnAnalytics", "tags": ["returns"], "summary": "Analytics breakdown", "responses": {"200": {"description": "OK"}}}},
        "/returns/customers": {"get": {"operationId": "searchReturnCustomers", "tags": ["returns"], "summary": "Search customers by phone", "responses": {"200": {"description": "OK"}}}},
        "/returns/rejection-reasons": {"get": {"operationId": "listRejectionReasons", "tags": ["returns"], "summary": "Offered rejection reasons", "responses": {"200": {"description": "OK"}}}},
        "/returns/events/ws": {"get": {"operationId": "subscribeReturnEvents", "tags": ["returns"], "summary": "Stream lifecycle events", "responses": {"101": {"description": "Switching protocols"}}}},
        "/ping": {"get": {"operationId": "pingSystem", "tags": ["system"], "summary": "Ping the API", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Returns API",
	Description:      "Product return lifecycle: intake, inspection, approval and resolution dispatch.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
