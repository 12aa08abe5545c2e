// Package docs registers the OpenAPI document served under /swagger.
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
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/auth/login": {"get": {"tags": ["auth"], "summary": "Login prompt", "produces": ["application/json"], "parameters": [{"type": "string", "name": "from", "in": "query"}], "responses": {"200": {"description": "OK"}}}, "post": {"tags": ["auth"], "summary": "Login", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "422": {"description": "Unprocessable Entity"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Logout", "responses": {"204": {"description": "No Content"}}}},
        "/auth/session": {"get": {"tags": ["auth"], "summary": "Current session", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/account/role": {"put": {"tags": ["account"], "summary": "Change role", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "302": {"description": "Found"}, "422": {"description": "Unprocessable Entity"}}}},
        "/products": {"get": {"tags": ["products"], "summary": "List products", "produces": ["application/json"], "parameters": [{"type": "string", "name": "category", "in": "query"}, {"type": "string", "name": "min_price", "in": "query"}, {"type": "string", "name": "max_price", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/products/{id}": {"get": {"tags": ["products"], "summary": "Get a product", "produces": ["application/json"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/cart": {
            "get": {"tags": ["cart"], "summary": "Show the cart", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["cart"], "summary": "Empty the cart", "responses": {"204": {"description": "No Content"}}}
        },
        "/cart/items": {"post": {"tags": ["cart"], "summary": "Add to cart", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/cart/items/{product_id}": {
            "patch": {"tags": ["cart"], "summary": "Change quantity", "parameters": [{"type": "string", "name": "product_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["cart"], "summary": "Remove from cart", "parameters": [{"type": "string", "name": "product_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/checkout": {"post": {"tags": ["orders"], "summary": "Place an order", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "302": {"description": "Found"}, "422": {"description": "Unprocessable Entity"}, "502": {"description": "Bad Gateway"}}}},
        "/orders": {"get": {"tags": ["orders"], "summary": "My orders", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "302": {"description": "Found"}}}},
        "/seller/products": {
            "get": {"tags": ["seller"], "summary": "List my products", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["seller"], "summary": "Create a product", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/seller/products/{id}": {
            "patch": {"tags": ["seller"], "summary": "Update a product", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["seller"], "summary": "Delete a product", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/seller/orders": {"get": {"tags": ["seller"], "summary": "Seller orders", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/seller/orders/{id}/status": {"patch": {"tags": ["seller"], "summary": "Change order status", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}},
        "/seller/files": {"post": {"tags": ["seller"], "summary": "Upload product images", "consumes": ["multipart/form-data"], "parameters": [{"type": "file", "name": "files", "in": "formData", "required": true}], "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}},
        "/seller/files/{ref}": {"delete": {"tags": ["seller"], "summary": "Delete an uploaded image", "parameters": [{"type": "string", "name": "ref", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Catalog, cart, checkout and seller order management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
