package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Retention API",
        "description": "Student dropout-risk tracking and intervention platform",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student roster, attendance and assessments"},
        {"name": "Risk", "description": "Dropout risk profiles and recalculation"},
        {"name": "Assignments", "description": "Mentor and counselor assignment"},
        {"name": "Interventions", "description": "Intervention tasks and SLA tracking"},
        {"name": "Alerts", "description": "Risk and escalation alerts"},
        {"name": "Counseling", "description": "Counseling session logs"},
        {"name": "Staff", "description": "Mentor and counselor roster"},
        {"name": "Analytics", "description": "Aggregated risk analytics"},
        {"name": "Reports", "description": "At-risk student exports"}
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
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "risk", "in": "query", "type": "string", "enum": ["HIGH", "MEDIUM", "LOW", "UNKNOWN"]},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Paginated students", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate enrollment number", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/attendance": {
            "get": {
                "tags": ["Students"],
                "summary": "List attendance records",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Attendance records", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Record attendance",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "201": {"description": "Recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/assessments": {
            "get": {
                "tags": ["Students"],
                "summary": "List assessments",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Assessments", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Record assessment",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "201": {"description": "Recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/risk": {
            "get": {
                "tags": ["Risk"],
                "summary": "Get risk profile",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Risk profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/risk/refresh": {
            "post": {
                "tags": ["Risk"],
                "summary": "Recompute risk profile",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Refreshed profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/risk/recalculate": {
            "post": {
                "tags": ["Risk"],
                "summary": "Enqueue batch risk recalculation",
                "responses": {
                    "202": {"description": "Job accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/mentor": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign mentor",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "201": {"description": "Assignment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Mentor at capacity", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/mentor/auto-assign": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Auto-assign best matching mentor",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Assignment or assigned=false", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/mentor/suggestions": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Ranked mentor suggestions",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Scored mentors", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/mentor/history": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Mentor assignment history",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Assignments", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/counselor": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign counselor",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "201": {"description": "Assignment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/counseling": {
            "get": {
                "tags": ["Counseling"],
                "summary": "List counseling sessions",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Sessions", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/counseling/improvement": {
            "get": {
                "tags": ["Counseling"],
                "summary": "Counseling improvement metrics",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Improvement summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counseling": {
            "post": {
                "tags": ["Counseling"],
                "summary": "Create counseling session",
                "responses": {
                    "201": {"description": "Session with before snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counseling/{id}/complete": {
            "post": {
                "tags": ["Counseling"],
                "summary": "Complete counseling session",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Session with after snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already completed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interventions": {
            "get": {
                "tags": ["Interventions"],
                "summary": "List intervention tasks",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "mentorId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "priority", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Tasks", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Interventions"],
                "summary": "Create intervention task",
                "responses": {
                    "201": {"description": "Task with SLA due date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interventions/{id}": {
            "get": {
                "tags": ["Interventions"],
                "summary": "Get intervention task",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Task", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interventions/{id}/status": {
            "patch": {
                "tags": ["Interventions"],
                "summary": "Update task status",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Updated task", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Terminal status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interventions/{id}/escalate": {
            "post": {
                "tags": ["Interventions"],
                "summary": "Escalate task",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Escalated task", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interventions/sla-violations": {
            "get": {
                "tags": ["Interventions"],
                "summary": "List overdue tasks",
                "responses": {
                    "200": {"description": "Overdue tasks", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interventions/auto-escalate": {
            "post": {
                "tags": ["Interventions"],
                "summary": "Escalate all overdue tasks",
                "responses": {
                    "200": {"description": "Escalated tasks", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/alerts": {
            "get": {
                "tags": ["Alerts"],
                "summary": "List unread alerts",
                "parameters": [{"name": "limit", "in": "query", "type": "integer"}],
                "responses": {
                    "200": {"description": "Alerts, newest first", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/alerts/{id}/read": {
            "post": {
                "tags": ["Alerts"],
                "summary": "Mark alert read",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "204": {"description": "Marked read"}
                }
            }
        },
        "/mentors": {
            "get": {
                "tags": ["Staff"],
                "summary": "List mentors with load",
                "responses": {
                    "200": {"description": "Mentors", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Staff"],
                "summary": "Create mentor",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counselors": {
            "get": {
                "tags": ["Staff"],
                "summary": "List counselors",
                "responses": {
                    "200": {"description": "Counselors", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Staff"],
                "summary": "Create counselor",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/risk-distribution": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Risk level distribution",
                "responses": {
                    "200": {"description": "Distribution", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/departments": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Per-department risk summary",
                "responses": {
                    "200": {"description": "Department summaries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/system": {
            "get": {
                "tags": ["Analytics"],
                "summary": "System metrics snapshot",
                "responses": {
                    "200": {"description": "Metrics snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/at-risk": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export at-risk students",
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
