package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Begin Learning Profile API",
        "description": "Child learning profile consolidation and classroom analytics",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Profiles", "description": "Assessment submission and profile projection"},
        {"name": "Classroom", "description": "Classroom analytics, at-risk reports and exports"},
        {"name": "Authentication", "description": "Cookie sessions"},
        {"name": "Invitations", "description": "Parent invitation emails"}
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
        "/api/profiles/progressive": {
            "post": {
                "tags": ["Profiles"],
                "summary": "Submit an assessment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAssessmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Profile created or updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid submission", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Profiles"],
                "summary": "Fetch a projected profile",
                "parameters": [
                    {"name": "profileId", "in": "query", "required": true, "type": "string"},
                    {"name": "context", "in": "query", "type": "string", "enum": ["parent", "teacher", "consolidated"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Profile not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/profiles/clp2-consolidate": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Consolidation analysis",
                "parameters": [
                    {"name": "profile_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Profile not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/teacher/classroom/{id}/overview": {
            "get": {
                "tags": ["Classroom"],
                "summary": "Classroom overview",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/teacher/classroom/{id}/at-risk": {
            "get": {
                "tags": ["Classroom"],
                "summary": "Classroom at-risk report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Classroom"],
                "summary": "Record a risk factor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordRiskFactorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/teacher/classroom/{id}/report": {
            "post": {
                "tags": ["Classroom"],
                "summary": "Export a classroom report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/teacher/classroom/{id}/invitations": {
            "get": {
                "tags": ["Invitations"],
                "summary": "List classroom invitations",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/reports/download": {
            "get": {
                "tags": ["Classroom"],
                "summary": "Download an exported report",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/invitations/bulk": {
            "post": {
                "tags": ["Invitations"],
                "summary": "Send parent invitations",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkInvitationRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/session": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Inspect the current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Authentication"],
                "summary": "Act on the current session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "End the current session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "SubmitAssessmentRequest": {
            "type": "object",
            "required": ["child_name", "age_group", "quiz_type", "respondent_type", "responses"],
            "properties": {
                "child_name": {"type": "string"},
                "existing_profile_id": {"type": "string"},
                "grade_level": {"type": "string"},
                "classroom_id": {"type": "string"},
                "age_group": {"type": "string"},
                "age_group_months": {"type": "integer"},
                "quiz_type": {"type": "string", "enum": ["parent_home", "teacher_classroom", "general"]},
                "respondent_type": {"type": "string", "enum": ["parent", "teacher"]},
                "responses": {"type": "object", "additionalProperties": {"type": "integer"}},
                "preferences": {"type": "object", "additionalProperties": {"type": "string"}},
                "use_clp2_scoring": {"type": "boolean"}
            }
        },
        "RecordRiskFactorRequest": {
            "type": "object",
            "required": ["profile_id", "factor", "severity"],
            "properties": {
                "profile_id": {"type": "string"},
                "factor": {"type": "string"},
                "severity": {"type": "string", "enum": ["low", "moderate", "high"]},
                "notes": {"type": "string"}
            }
        },
        "BulkInvitationRequest": {
            "type": "object",
            "required": ["classroom_id", "invitations"],
            "properties": {
                "classroom_id": {"type": "string"},
                "invitations": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "required": ["child_name", "parent_email"],
                        "properties": {
                            "child_name": {"type": "string"},
                            "parent_email": {"type": "string"}
                        }
                    }
                }
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SessionActionRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["refresh"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
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
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "warnings": {"type": "array", "items": {"type": "string"}}
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
