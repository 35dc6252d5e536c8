// Package docs registers the OpenAPI document of the pricing API with swag.
// Regenerate with `swag init` after changing handler annotations.
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
        "/api/v1/health": {"get": {"tags": ["Health"], "summary": "Health check", "responses": {"200": {"description": "Service is healthy"}}}},
        "/api/v1/auth/login": {"post": {"tags": ["Admin Authentication"], "summary": "Admin login", "responses": {"200": {"description": "Login successful"}, "401": {"description": "Invalid credentials"}}}},
        "/api/v1/auth/refresh": {"post": {"tags": ["Admin Authentication"], "summary": "Refresh admin token", "responses": {"200": {"description": "Token refreshed"}, "401": {"description": "Invalid refresh token"}}}},
        "/api/v1/clients": {"post": {"tags": ["Clients"], "summary": "Create client profile", "responses": {"201": {"description": "Client created"}, "400": {"description": "Validation error"}}}},
        "/api/v1/clients/{uuid}": {"get": {"tags": ["Clients"], "summary": "Get client profile", "responses": {"200": {"description": "Client"}, "404": {"description": "Client not found"}}}},
        "/api/v1/pricing-models": {"get": {"tags": ["Pricing Models"], "summary": "List pricing models", "responses": {"200": {"description": "Pricing models"}}}},
        "/api/v1/pricing-models/{name}": {"get": {"tags": ["Pricing Models"], "summary": "Get pricing model", "responses": {"200": {"description": "Pricing model"}, "404": {"description": "Pricing model not found"}}}},
        "/api/v1/market-conditions": {"get": {"tags": ["Market Conditions"], "summary": "Current market conditions", "responses": {"200": {"description": "Market conditions"}, "503": {"description": "Market conditions unavailable"}}}},
        "/api/v1/quotes": {
            "get": {"tags": ["Quotes"], "summary": "List quotes", "responses": {"200": {"description": "Quotes"}}},
            "post": {"tags": ["Quotes"], "summary": "Calculate quote", "responses": {"201": {"description": "Quote created"}, "404": {"description": "Client or pricing model not found"}}}
        },
        "/api/v1/quotes/preview": {"post": {"tags": ["Quotes"], "summary": "Preview quote", "responses": {"200": {"description": "Quote preview"}}}},
        "/api/v1/quotes/{uuid}": {"get": {"tags": ["Quotes"], "summary": "Get quote", "responses": {"200": {"description": "Quote"}, "404": {"description": "Quote not found"}}}},
        "/api/v1/quotes/{uuid}/history": {"get": {"tags": ["Quotes"], "summary": "Quote status history", "responses": {"200": {"description": "History"}}}},
        "/api/v1/quotes/{uuid}/status": {"patch": {"tags": ["Quotes"], "summary": "Update quote status", "responses": {"200": {"description": "Status updated"}, "409": {"description": "Transition not allowed"}}}},
        "/api/v1/roi": {"post": {"tags": ["ROI"], "summary": "ROI projection", "responses": {"200": {"description": "Projection"}}}},
        "/api/v1/admin/market-conditions": {"put": {"security": [{"BearerAuth": []}], "tags": ["Admin Market Conditions"], "summary": "Publish market conditions", "responses": {"200": {"description": "Published"}}}},
        "/api/v1/admin/quotes/expire": {"post": {"security": [{"BearerAuth": []}], "tags": ["Admin Quotes"], "summary": "Expire due quotes", "responses": {"200": {"description": "Sweep finished"}}}},
        "/api/v1/admin/reports/pricing": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin Reports"], "summary": "Pricing report", "responses": {"200": {"description": "Report"}}}},
        "/api/v1/admin/reports/pricing/export": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin Reports"], "summary": "Export quotes (Excel)", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "Excel file"}}}},
        "/api/v1/admin/reports/optimization": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin Reports"], "summary": "Price optimization report", "responses": {"200": {"description": "Report"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Dynamic Pricing API",
	Description:      "Quote engine pricing client profiles with configurable pricing models and market conditions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
