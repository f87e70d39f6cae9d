// Package docs holds the OpenAPI document served at /api/swagger. It follows
// the layout swag init emits and is kept in step with the handler
// annotations by hand. Health probes and /metrics sit outside the /api base
// path and are not listed.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/signup": {
            "post": {
                "tags": ["auth"],
                "summary": "User signup",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "User login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "User logout",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/posts": {
            "get": {
                "tags": ["freets"],
                "summary": "List freets",
                "parameters": [{"type": "string", "description": "Author username", "name": "author", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.FreetResponse"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["freets"],
                "summary": "Create a freet",
                "consumes": ["application/json"],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/feed": {
            "get": {
                "tags": ["freets"],
                "summary": "Live feed",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.FreetResponse"}}}}
            }
        },
        "/posts/archived": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["freets"],
                "summary": "Archived freets",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.FreetResponse"}}}}
            }
        },
        "/posts/archived/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["freets"],
                "summary": "Archive or unarchive a freet",
                "parameters": [{"type": "integer", "description": "Freet ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["freets"],
                "summary": "Edit a freet",
                "parameters": [{"type": "integer", "description": "Freet ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["freets"],
                "summary": "Delete a freet",
                "parameters": [{"type": "integer", "description": "Freet ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}/listing": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["listings"],
                "summary": "Edit one listing field",
                "parameters": [{"type": "integer", "description": "Freet ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/listings": {
            "get": {
                "tags": ["listings"],
                "summary": "Browse the marketplace",
                "parameters": [
                    {"type": "string", "description": "Seller username", "name": "author", "in": "query"},
                    {"type": "string", "description": "forsale, sold, deactivated or all", "name": "listingStatus", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.FreetResponse"}}}}
            }
        },
        "/posts/listings/purchase/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["listings"],
                "summary": "Buy a listing",
                "parameters": [{"type": "integer", "description": "Freet ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/payment-profiles": {
            "get": {
                "tags": ["fritterPay"],
                "summary": "List fritterPay profiles",
                "parameters": [{"type": "string", "description": "Owner username", "name": "author", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PaymentProfileResponse"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["fritterPay"],
                "summary": "Connect fritterPay",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/payment-profiles/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["fritterPay"],
                "summary": "Update fritterPay",
                "parameters": [{"type": "integer", "description": "Profile ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["fritterPay"],
                "summary": "Remove fritterPay",
                "parameters": [{"type": "integer", "description": "Profile ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Current account",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.UserResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Delete the current account",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{username}": {
            "get": {
                "tags": ["users"],
                "summary": "Look up an account",
                "parameters": [{"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.UserResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/ws/ticket": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["realtime"],
                "summary": "Issue an event stream ticket",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/ws": {
            "get": {
                "tags": ["realtime"],
                "summary": "Event stream",
                "description": "WebSocket upgrade. A ticket identifies the user; without one the stream is anonymous.",
                "parameters": [
                    {"type": "string", "description": "Ticket from POST /ws/ticket", "name": "ticket", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "426": {"description": "Upgrade Required"}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "models.ListingResponse": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "author": {"type": "string"},
                "buyer": {"type": "string"},
                "content": {"type": "string"},
                "dateModified": {"type": "string"},
                "expiration": {"type": "string"},
                "freetId": {"type": "string"},
                "listingLocation": {"type": "string"},
                "listingName": {"type": "string"},
                "listingPrice": {"type": "integer"},
                "listingStatus": {"type": "string"},
                "paymentType": {"type": "string"},
                "paymentUsername": {"type": "string"}
            }
        },
        "models.FreetResponse": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "author": {"type": "string"},
                "content": {"type": "string"},
                "dateCreated": {"type": "string"},
                "dateModified": {"type": "string"},
                "edited": {"type": "boolean"},
                "expiration": {"type": "string"},
                "freetType": {"type": "string"},
                "merchantFreet": {"$ref": "#/definitions/models.ListingResponse"}
            }
        },
        "models.PaymentProfileResponse": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "author": {"type": "string"},
                "paymentLink": {"type": "string"},
                "paymentType": {"type": "string"},
                "paymentUsername": {"type": "string"}
            }
        },
        "models.UserResponse": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "dateJoined": {"type": "string"},
                "username": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Fritter API",
	Description:      "Freets, fleeting posts, merchant listings and fritterPay profiles",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
