package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient/service"
	"github.com/prontuario/prontuario/backend/go-services/internal/status"
	"github.com/prontuario/prontuario/backend/go-services/pkg/logger"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// writeError maps service errors to HTTP responses: unknown ids are 404,
// unknown reminder kinds 400, anything else 500 with the error message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, status.ErrUnknownReminder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type input interface {
	Normalize()
}

// bindInput decodes an optional JSON body into in and validates it. An empty
// body is an empty input; blank enum values count as absent.
func bindInput(c *gin.Context, in input) error {
	if c.Request.Body != nil {
		if err := json.NewDecoder(c.Request.Body).Decode(in); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
	in.Normalize()
	return binding.Validator.ValidateStruct(in)
}

func RegisterPatientRoutes(r gin.IRouter, svc *service.Service) {
	api := r.Group("/api")

	api.GET("/patients", func(c *gin.Context) {
		list, err := svc.ListPatients(c.Request.Context(), c.Query("q"), c.Query("status"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	api.POST("/patients", func(c *gin.Context) {
		var in patient.PatientInput
		if err := bindInput(c, &in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := svc.CreatePatient(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	})

	api.GET("/patients/:id", func(c *gin.Context) {
		p, err := svc.GetPatient(c.Request.Context(), patient.ID(c.Param("id")))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	api.PUT("/patients/:id", func(c *gin.Context) {
		var in patient.PatientInput
		if err := bindInput(c, &in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := svc.UpdatePatient(c.Request.Context(), patient.ID(c.Param("id")), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	api.DELETE("/patients/:id", func(c *gin.Context) {
		if err := svc.DeletePatient(c.Request.Context(), patient.ID(c.Param("id"))); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	api.POST("/patients/:id/appointments", func(c *gin.Context) {
		var in patient.AppointmentInput
		if err := bindInput(c, &in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a, err := svc.CreateAppointment(c.Request.Context(), patient.ID(c.Param("id")), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	})

	api.PUT("/patients/:id/appointments/:aid", func(c *gin.Context) {
		var in patient.AppointmentInput
		if err := bindInput(c, &in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a, err := svc.UpdateAppointment(c.Request.Context(), patient.ID(c.Param("id")), patient.ID(c.Param("aid")), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	})

	api.DELETE("/patients/:id/appointments/:aid", func(c *gin.Context) {
		if err := svc.DeleteAppointment(c.Request.Context(), patient.ID(c.Param("id")), patient.ID(c.Param("aid"))); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	api.POST("/patients/:id/reminders/:type/complete", func(c *gin.Context) {
		p, err := svc.CompleteReminder(c.Request.Context(), patient.ID(c.Param("id")), c.Param("type"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	api.GET("/agenda", func(c *gin.Context) {
		ag, err := svc.Agenda(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, ag)
	})

	api.GET("/reminders", func(c *gin.Context) {
		rem, err := svc.Reminders(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rem)
	})

	api.GET("/dashboard", func(c *gin.Context) {
		d, err := svc.Dashboard(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	})

	api.GET("/reports/summary", func(c *gin.Context) {
		rep, err := svc.Report(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rep)
	})

	api.GET("/reports/export.csv", func(c *gin.Context) {
		b, err := svc.ExportCSV(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="pacientes.csv"`)
		c.Data(http.StatusOK, csvContentType, b)
	})

	api.GET("/reports/export.xlsx", func(c *gin.Context) {
		b, err := svc.ExportXLSX(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="pacientes.xlsx"`)
		c.Data(http.StatusOK, xlsxContentType, b)
	})
}
