package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the OpenAPI endpoints for the patient API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>prontuario - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "prontuario", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "PatientInput": {"type":"object","properties":{
        "name":{"type":"string"},"email":{"type":"string"},"phone":{"type":"string"},
        "registrationDate":{"type":"string","example":"2024-03-05"},"lastConsult":{"type":"string"},
        "totalConsults":{"type":"integer","minimum":0},"notes":{"type":"string"},
        "checklistStatus":{"type":"string","enum":["nao_iniciado","pendente","completo"]},
        "evolutionStatus":{"type":"string","enum":["pendente","atualizada","atrasada"]},
        "devolutiveStatus":{"type":"string","enum":["pendente","agendada","concluida"]},
        "nextAppointment":{"type":"string","example":"2024-03-05T14:30"},
        "evolutions":{"type":"array","items":{"type":"object","properties":{"id":{"type":"string"},"date":{"type":"string"},"note":{"type":"string"}}}},
        "checklistItems":{"type":"array","items":{"type":"object","properties":{"id":{"type":"string"},"label":{"type":"string"},"done":{"type":"boolean"}}}}
      }},
      "AppointmentInput": {"type":"object","properties":{
        "date":{"type":"string","example":"2024-03-05T14:30"},"note":{"type":"string"},
        "status":{"type":"string","enum":["agendado","atendido","nao_compareceu"]},"completed":{"type":"boolean"}
      }},
      "Error": {"type":"object","properties":{"error":{"type":"string"}}}
    }
  },
  "paths": {
    "/api/patients": {
      "get": {
        "summary": "List patients with their appointments",
        "parameters": [
          {"name":"q","in":"query","schema":{"type":"string"},"description":"name or email substring"},
          {"name":"status","in":"query","schema":{"type":"string","enum":["todos","checklist_pendente","evolucao_pendente","devolutiva_pendente"]}}
        ],
        "responses": { "200": { "description": "patients" }, "500": { "description": "storage failure" } }
      },
      "post": {
        "summary": "Create patient",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/PatientInput"} } } },
        "responses": { "201": { "description": "created patient" }, "400": { "description": "invalid payload" } }
      }
    },
    "/api/patients/{id}": {
      "get": { "summary": "Get patient", "responses": { "200": { "description": "patient" }, "404": { "description": "not found" } } },
      "put": {
        "summary": "Replace patient fields",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/PatientInput"} } } },
        "responses": { "200": { "description": "updated patient" }, "404": { "description": "not found" } }
      },
      "delete": { "summary": "Delete patient and its appointments", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/patients/{id}/appointments": {
      "post": {
        "summary": "Create appointment",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/AppointmentInput"} } } },
        "responses": { "201": { "description": "created appointment" }, "404": { "description": "patient not found" } }
      }
    },
    "/api/patients/{id}/appointments/{aid}": {
      "put": {
        "summary": "Replace appointment",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/AppointmentInput"} } } },
        "responses": { "200": { "description": "updated appointment" }, "404": { "description": "not found" } }
      },
      "delete": { "summary": "Delete appointment", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/patients/{id}/reminders/{type}/complete": {
      "post": { "summary": "Resolve a devolutiva, evolucao or relatorio reminder", "responses": { "200": { "description": "updated patient" }, "400": { "description": "unknown reminder type" }, "404": { "description": "not found" } } }
    },
    "/api/agenda": { "get": { "summary": "Today's and upcoming appointments", "responses": { "200": { "description": "agenda" } } } },
    "/api/reminders": { "get": { "summary": "Pending reminders", "responses": { "200": { "description": "reminders" } } } },
    "/api/dashboard": { "get": { "summary": "Dashboard counts, recent patients and reminders", "responses": { "200": { "description": "dashboard" } } } },
    "/api/reports/summary": { "get": { "summary": "Practice report", "responses": { "200": { "description": "report" } } } },
    "/api/reports/export.csv": { "get": { "summary": "Patient export (CSV)", "responses": { "200": { "description": "text/csv" } } } },
    "/api/reports/export.xlsx": { "get": { "summary": "Patient export (XLSX)", "responses": { "200": { "description": "spreadsheet" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
