/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the office front end
  5. Actor:      X-Employee-ID header into the request context (/api only)

ROUTE GROUPS:
  /api/employees/*      Employees and their records
  /api/attendance/*     Attendance points by ID
  /api/safety-points/*  Safety points by ID
  /api/counseling/*     Counseling by ID
  /api/settlements/*    Settlements by ID
  /api/time-off/*       Time-off requests by ID
  /api/documents/*      Generated documents
  /api/imports/*        Workbook imports
  /api/admin/*          Reminder sweep and balance resets

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/hrops/serve.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", ActorHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Use(Actor)

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)
				r.Patch("/", h.UpdateEmployee)
				r.Put("/notifications", h.SetNotifications)
				r.Post("/terminate", h.TerminateEmployee)

				r.Get("/attendance", h.ListAttendance)
				r.Post("/attendance", h.AssignAttendance)
				r.Get("/attendance/history", h.AttendanceHistory)
				r.Get("/attendance/report", h.AttendanceReport)

				r.Get("/safety-points", h.ListSafetyPoints)
				r.Post("/safety-points", h.AssignSafetyPoint)
				r.Get("/safety-points/history", h.SafetyHistory)

				r.Get("/counseling", h.ListCounseling)
				r.Post("/counseling", h.AssignCounseling)
				r.Get("/counseling/next", h.NextCounselingStep)

				r.Get("/hold", h.GetHold)
				r.Post("/hold", h.PlaceHold)
				r.Put("/hold", h.EditHold)
				r.Delete("/hold", h.RemoveHold)

				r.Get("/settlements", h.ListSettlements)
				r.Post("/settlements", h.CreateSettlement)

				r.Get("/time-off", h.ListTimeOff)
				r.Post("/time-off", h.RequestTimeOff)
			})
		})

		// Record routes
		r.Route("/attendance/{id}", func(r chi.Router) {
			r.Put("/", h.EditAttendance)
			r.Delete("/", h.DeleteAttendance)
			r.Post("/sign", h.SignAttendance)
		})
		r.Route("/safety-points/{id}", func(r chi.Router) {
			r.Put("/", h.EditSafetyPoint)
			r.Delete("/", h.DeleteSafetyPoint)
			r.Post("/sign", h.SignSafetyPoint)
		})
		r.Route("/counseling/{id}", func(r chi.Router) {
			r.Put("/", h.EditCounseling)
			r.Delete("/", h.DeleteCounseling)
			r.Post("/sign", h.SignCounseling)
		})
		r.Route("/settlements/{id}", func(r chi.Router) {
			r.Put("/", h.EditSettlement)
			r.Delete("/", h.DeleteSettlement)
			r.Post("/uploaded", h.SettlementUploaded)
		})
		r.Route("/time-off/{id}", func(r chi.Router) {
			r.Get("/", h.GetTimeOff)
			r.Delete("/", h.RemoveTimeOff)
			r.Put("/status", h.SetTimeOffStatus)
		})

		// Document routes
		r.Route("/documents/{kind}/{id}", func(r chi.Router) {
			r.Get("/", h.GetDocument)
			r.Post("/regenerate", h.RegenerateDocument)
			r.Post("/uploaded", h.DocumentUploaded)
		})

		// Import routes
		r.Route("/imports", func(r chi.Router) {
			r.Post("/attendance", h.ImportAttendance)
			r.Post("/safety-points", h.ImportSafetyPoints)
			r.Post("/drivers", h.ImportDrivers)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/reminders", h.SendReminders)
			r.Post("/reset/sick", h.ResetSickDays)
			r.Post("/reset/floating", h.ResetFloatingHolidays)
		})
	})

	return r
}
