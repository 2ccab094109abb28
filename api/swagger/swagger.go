package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Advising API",
        "description": "Course registration requests, prerequisite eligibility, and advising",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session info"},
        {"name": "Courses", "description": "Catalog browsing, eligibility, and admin CRUD"},
        {"name": "Requests", "description": "Course request lifecycle"},
        {"name": "Advising", "description": "Advisor roster, notes, and suggestions"},
        {"name": "Students", "description": "Student ledger and note views"},
        {"name": "Exports", "description": "Transcript and request history downloads"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List catalog courses",
                "parameters": [
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create catalog course (admin)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate course code"}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course detail",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update catalog course (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete catalog course (admin)",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Course has active enrollments"}
                }
            }
        },
        "/courses/available": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses annotated for the current student",
                "parameters": [{"name": "term", "in": "query", "type": "string"}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/courses/{id}/eligibility": {
            "get": {
                "tags": ["Courses"],
                "summary": "Check eligibility for a course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EligibilityResult"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List the current student's requests",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Requests"],
                "summary": "Submit a course request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate pending request"},
                    "412": {"description": "Course inactive or not enrolled"}
                }
            }
        },
        "/requests/{id}": {
            "delete": {
                "tags": ["Requests"],
                "summary": "Cancel a pending request",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Cancelled"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Already decided"}
                }
            }
        },
        "/advisor/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List requests from assigned students",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/advisor/requests/{id}": {
            "get": {
                "tags": ["Requests"],
                "summary": "Review a request with eligibility assessment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Not the advisor of record"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/advisor/requests/{id}/decision": {
            "put": {
                "tags": ["Requests"],
                "summary": "Approve or reject a pending request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecideCourseRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "Decided"},
                    "401": {"description": "Not the advisor of record"},
                    "409": {"description": "Already decided"}
                }
            }
        },
        "/advisor/students": {
            "get": {
                "tags": ["Advising"],
                "summary": "List assigned students",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/advisor/students/{id}": {
            "get": {
                "tags": ["Advising"],
                "summary": "Get one assigned student with ledger",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Not the advisor of record"}
                }
            }
        },
        "/advisor/students/{id}/notes": {
            "get": {
                "tags": ["Advising"],
                "summary": "List advising notes for a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Advising"],
                "summary": "Attach an advising note",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/advisor/students/{id}/suggestions": {
            "post": {
                "tags": ["Advising"],
                "summary": "Send course suggestions to a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SuggestCoursesRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/me/ledger": {
            "get": {
                "tags": ["Students"],
                "summary": "Get the current student's enrollment ledger",
                "parameters": [{"name": "status", "in": "query", "type": "string"}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/me/notes": {
            "get": {
                "tags": ["Students"],
                "summary": "List notes visible to the current student",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/me/exports/transcript": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download transcript",
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/me/exports/requests": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download request history",
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {
                    "200": {"description": "File"}
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
                "password": {"type": "string"}
            }
        },
        "SaveCourseRequest": {
            "type": "object",
            "required": ["code", "name", "credits", "department_id"],
            "properties": {
                "code": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "credits": {"type": "integer"},
                "department_id": {"type": "string"},
                "semester": {"type": "string"},
                "capacity": {"type": "integer"},
                "active": {"type": "boolean"},
                "prerequisites": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CreateCourseRequestRequest": {
            "type": "object",
            "required": ["course_id", "type", "term"],
            "properties": {
                "course_id": {"type": "string"},
                "type": {"type": "string", "enum": ["register", "add", "drop"]},
                "term": {"type": "string"}
            }
        },
        "DecideCourseRequestRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["approved", "rejected"]},
                "notes": {"type": "string"}
            }
        },
        "CreateNoteRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "content": {"type": "string"},
                "note_type": {"type": "string", "enum": ["general", "academic", "recommendation"]},
                "visible_to_student": {"type": "boolean"}
            }
        },
        "SuggestCoursesRequest": {
            "type": "object",
            "required": ["course_ids"],
            "properties": {
                "course_ids": {"type": "array", "items": {"type": "string"}},
                "term": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "EligibilityResult": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "prerequisites_met": {"type": "boolean"},
                "unmet_prerequisites": {"type": "array", "items": {"type": "object"}},
                "has_capacity": {"type": "boolean"}
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
