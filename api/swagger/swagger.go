package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PR Admin API",
        "description": "Backend for user administration and PR distribution reports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Authentication", "description": "Sessions, registration and password reset"},
        {"name": "Users", "description": "Account administration"},
        {"name": "Roles", "description": "Named permission sets"},
        {"name": "Distributions", "description": "PR report batches, sharing and exports"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid credentials"},
                    "403": {"description": "Account blocked or removed"}
                }
            }
        },
        "/auth/users/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/forgotpassword": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Request password reset",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ForgotPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OTP sent"},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/auth/resetpassword": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Complete password reset",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "Password updated"},
                    "400": {"description": "Invalid or expired OTP"}
                }
            }
        },
        "/auth/createuser": {
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/getuser/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/auth/getallusers": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/updateuser/{id}": {
            "put": {
                "tags": ["Users"],
                "summary": "Update user",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/auth/deleteuser/{id}": {
            "delete": {
                "tags": ["Users"],
                "summary": "Delete user",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/roles/getRoles": {
            "get": {
                "tags": ["Roles"],
                "summary": "List roles",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roles/getRole/{id}": {
            "get": {
                "tags": ["Roles"],
                "summary": "Get role",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/roles/createRole": {
            "post": {
                "tags": ["Roles"],
                "summary": "Create role",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRoleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Role id or name already exists"}
                }
            }
        },
        "/roles/updateRole/{id}": {
            "put": {
                "tags": ["Roles"],
                "summary": "Update role",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRoleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/roles/deleteRole/{id}": {
            "delete": {
                "tags": ["Roles"],
                "summary": "Delete role",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted"},
                    "409": {"description": "Role is assigned to users"}
                }
            }
        },
        "/roles/permission/count": {
            "get": {
                "tags": ["Roles"],
                "summary": "Permission usage counts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/pr-distributions/uploadPR": {
            "post": {
                "tags": ["Distributions"],
                "summary": "Upload report batch",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "csv_file", "in": "formData", "required": true, "type": "file"},
                    {"name": "report_title", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed upload"}
                }
            }
        },
        "/pr-distributions/getPRReportByBatchId/{batch_id}": {
            "get": {
                "tags": ["Distributions"],
                "summary": "Get batch rows",
                "parameters": [
                    {"name": "batch_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No data for this grid_id"}
                }
            }
        },
        "/pr-distributions/getPRReportGroupByGridId/{grid_id}": {
            "get": {
                "tags": ["Distributions"],
                "summary": "Get batch group",
                "parameters": [
                    {"name": "grid_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/pr-distributions/getPRReportGroups": {
            "get": {
                "tags": ["Distributions"],
                "summary": "List batch groups",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/pr-distributions/deletePRReport/{grid_id}": {
            "delete": {
                "tags": ["Distributions"],
                "summary": "Delete batch",
                "parameters": [
                    {"name": "grid_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Nothing to delete"}
                }
            }
        },
        "/pr-distributions/sharePRReport/{grid_id}": {
            "put": {
                "tags": ["Distributions"],
                "summary": "Update batch sharing",
                "parameters": [
                    {"name": "grid_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ShareRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid sharing payload"}
                }
            }
        },
        "/pr-distributions/verifyPRReportUrl": {
            "get": {
                "tags": ["Distributions"],
                "summary": "Verify share link",
                "parameters": [
                    {"name": "grid_id", "in": "query", "required": true, "type": "string"},
                    {"name": "email", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Link expired or report not found"}
                }
            }
        },
        "/pr-distributions/getPRReportData": {
            "post": {
                "tags": ["Distributions"],
                "summary": "Get shared report data",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyURLRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Email missing or not authorized"}
                }
            }
        },
        "/pr-distributions/exportPRReportCsv/{grid_id}": {
            "get": {
                "tags": ["Distributions"],
                "summary": "Export batch as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "grid_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV attachment"},
                    "404": {"description": "No distribution data to export"}
                }
            }
        },
        "/pr-distributions/exportPRReportPdf/{grid_id}": {
            "get": {
                "tags": ["Distributions"],
                "summary": "Export batch as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "grid_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF attachment"},
                    "404": {"description": "No distribution data to export"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "remember_me": {"type": "boolean"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["full_name", "email", "password"],
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "ForgotPasswordRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "ResetPasswordRequest": {
            "type": "object",
            "required": ["email", "otp", "new_password", "confirm_password"],
            "properties": {
                "email": {"type": "string"},
                "otp": {"type": "integer"},
                "new_password": {"type": "string"},
                "confirm_password": {"type": "string"}
            }
        },
        "CreateUserRequest": {
            "type": "object",
            "required": ["full_name", "email", "password"],
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "UpdateUserRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string"},
                "status": {"type": "string"},
                "is_blocked": {"type": "boolean"},
                "is_deleted": {"type": "boolean"}
            }
        },
        "CreateRoleRequest": {
            "type": "object",
            "required": ["id", "name"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "permission": {"type": "object"}
            }
        },
        "UpdateRoleRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "permission": {"type": "object"},
                "update_all": {"type": "boolean"}
            }
        },
        "ShareRequest": {
            "type": "object",
            "required": ["is_private"],
            "properties": {
                "is_private": {"type": "boolean"},
                "sharedEmails": {"type": "array", "items": {"type": "string"}}
            }
        },
        "VerifyURLRequest": {
            "type": "object",
            "required": ["grid_id"],
            "properties": {
                "grid_id": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "row_count": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
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
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "timestamp": {"type": "string"}
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
