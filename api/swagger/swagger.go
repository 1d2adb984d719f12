package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Easy!Appointments API",
        "description": "Appointment booking and availability engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Back-office login"},
        {"name": "Availability", "description": "Bookable slot queries"},
        {"name": "Bookings", "description": "Customer-facing booking surface"},
        {"name": "Providers", "description": "Provider roster and agendas"},
        {"name": "Services", "description": "Service catalog"},
        {"name": "Customers", "description": "Customer records"},
        {"name": "Appointments", "description": "Back-office appointment management"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate a provider or the configured admin",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/hours": {
            "post": {
                "tags": ["Availability"],
                "summary": "List bookable start times for a provider, service and date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SlotQueryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/unavailable-dates": {
            "post": {
                "tags": ["Availability"],
                "summary": "List the fully booked dates of a month",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UnavailableDatesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/appointments": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book an appointment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot no longer available", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/appointments/{hash}": {
            "delete": {
                "tags": ["Bookings"],
                "summary": "Cancel an appointment by its public hash",
                "parameters": [
                    {"name": "hash", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Unknown hash", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/providers": {
            "get": {
                "tags": ["Providers"],
                "security": [{"BearerAuth": []}],
                "summary": "List providers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "service_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Providers"],
                "security": [{"BearerAuth": []}],
                "summary": "Create provider",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProviderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/providers/{id}": {
            "get": {
                "tags": ["Providers"],
                "security": [{"BearerAuth": []}],
                "summary": "Get provider",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Providers"],
                "security": [{"BearerAuth": []}],
                "summary": "Update provider",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProviderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Providers"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete provider",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/providers/{id}/agenda.pdf": {
            "get": {
                "tags": ["Providers"],
                "security": [{"BearerAuth": []}],
                "summary": "Export a provider's day agenda as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF payload"}
                }
            }
        },
        "/admin/providers/{id}/agenda.csv": {
            "get": {
                "tags": ["Providers"],
                "security": [{"BearerAuth": []}],
                "summary": "Export a provider's day agenda as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/admin/services": {
            "get": {
                "tags": ["Services"],
                "security": [{"BearerAuth": []}],
                "summary": "List services",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Services"],
                "security": [{"BearerAuth": []}],
                "summary": "Create service",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateServiceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/services/{id}": {
            "get": {
                "tags": ["Services"],
                "security": [{"BearerAuth": []}],
                "summary": "Get service",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Services"],
                "security": [{"BearerAuth": []}],
                "summary": "Update service",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateServiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Services"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete service",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/customers": {
            "get": {
                "tags": ["Customers"],
                "security": [{"BearerAuth": []}],
                "summary": "List customers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Customers"],
                "security": [{"BearerAuth": []}],
                "summary": "Create customer",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCustomerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/customers/{id}": {
            "get": {
                "tags": ["Customers"],
                "security": [{"BearerAuth": []}],
                "summary": "Get customer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Customers"],
                "security": [{"BearerAuth": []}],
                "summary": "Update customer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCustomerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Customers"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete customer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/appointments": {
            "get": {
                "tags": ["Appointments"],
                "security": [{"BearerAuth": []}],
                "summary": "List appointments",
                "parameters": [
                    {"name": "provider_id", "in": "query", "type": "string"},
                    {"name": "service_id", "in": "query", "type": "string"},
                    {"name": "customer_id", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "unavailable", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/appointments/{id}": {
            "get": {
                "tags": ["Appointments"],
                "security": [{"BearerAuth": []}],
                "summary": "Get appointment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Appointments"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete appointment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/appointments/blocks": {
            "post": {
                "tags": ["Appointments"],
                "security": [{"BearerAuth": []}],
                "summary": "Create an unavailability block",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBlockRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/appointments/{id}/reschedule": {
            "put": {
                "tags": ["Appointments"],
                "security": [{"BearerAuth": []}],
                "summary": "Move an appointment to a new start time",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot no longer available", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
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
        "SlotQueryRequest": {
            "type": "object",
            "required": ["provider_id", "service_id", "date", "timezone"],
            "properties": {
                "provider_id": {"type": "string", "description": "Provider id, or the configured any-provider sentinel"},
                "service_id": {"type": "string"},
                "date": {"type": "string", "description": "YYYY-MM-DD in the customer's timezone"},
                "timezone": {"type": "string", "description": "Signed offset, e.g. +02:00"},
                "exclude_appointment_id": {"type": "string"}
            }
        },
        "UnavailableDatesRequest": {
            "type": "object",
            "required": ["provider_id", "service_id", "month", "timezone"],
            "properties": {
                "provider_id": {"type": "string"},
                "service_id": {"type": "string"},
                "month": {"type": "string", "description": "YYYY-MM"},
                "timezone": {"type": "string"}
            }
        },
        "BookingRequest": {
            "type": "object",
            "required": ["provider_id", "service_id", "start", "timezone", "customer"],
            "properties": {
                "provider_id": {"type": "string"},
                "service_id": {"type": "string"},
                "start": {"type": "string", "description": "YYYY-MM-DD HH:MM in the customer's timezone"},
                "timezone": {"type": "string"},
                "notes": {"type": "string"},
                "customer": {"$ref": "#/definitions/BookingCustomer"}
            }
        },
        "BookingCustomer": {
            "type": "object",
            "required": ["first_name", "last_name", "email"],
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "CreateProviderRequest": {
            "type": "object",
            "required": ["first_name", "last_name", "email", "password", "timezone", "working_plan"],
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "phone": {"type": "string"},
                "timezone": {"type": "string"},
                "service_ids": {"type": "array", "items": {"type": "string"}},
                "working_plan": {"type": "object"}
            }
        },
        "UpdateProviderRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "phone": {"type": "string"},
                "timezone": {"type": "string"},
                "service_ids": {"type": "array", "items": {"type": "string"}},
                "working_plan": {"type": "object"},
                "active": {"type": "boolean"}
            }
        },
        "CreateServiceRequest": {
            "type": "object",
            "required": ["name", "duration_minutes", "availability_type"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "duration_minutes": {"type": "integer"},
                "price": {"type": "number"},
                "currency": {"type": "string"},
                "availability_type": {"type": "string", "enum": ["fixed", "flexible"]},
                "attendants_number": {"type": "integer"}
            }
        },
        "UpdateServiceRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "duration_minutes": {"type": "integer"},
                "price": {"type": "number"},
                "currency": {"type": "string"},
                "availability_type": {"type": "string", "enum": ["fixed", "flexible"]},
                "attendants_number": {"type": "integer"},
                "active": {"type": "boolean"}
            }
        },
        "CreateCustomerRequest": {
            "type": "object",
            "required": ["first_name", "last_name", "email"],
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "timezone": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "UpdateCustomerRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "timezone": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "CreateBlockRequest": {
            "type": "object",
            "required": ["provider_id", "start", "end"],
            "properties": {
                "provider_id": {"type": "string"},
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "notes": {"type": "string"}
            }
        },
        "RescheduleRequest": {
            "type": "object",
            "required": ["start"],
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "notes": {"type": "string"}
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
