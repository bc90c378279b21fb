package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/healthcheck", app.healthCheckHandler)

	mux.HandleFunc("POST /v1/auth/signup", app.signupHandler)
	mux.HandleFunc("POST /v1/auth/signin", app.signinHandler)
	mux.HandleFunc("GET /v1/auth/me", app.requireAuthenticatedUser(app.getMeHandler))

	mux.HandleFunc("GET /v1/tasks", app.requireAuthenticatedUser(app.getTasksHandler))
	mux.HandleFunc("POST /v1/tasks", app.requireAuthenticatedUser(app.createTaskHandler))
	mux.HandleFunc("GET /v1/tasks/{id}", app.requireAuthenticatedUser(app.getTaskHandler))
	mux.HandleFunc("PUT /v1/tasks/{id}", app.requireAuthenticatedUser(app.updateTaskHandler))
	mux.HandleFunc("DELETE /v1/tasks/{id}", app.requireAuthenticatedUser(requireRole(RoleAdmin)(app.deleteTaskHandler)))

	if len(app.config.cors.trustedOrigins) > 0 {
		return app.enableCORS(mux)
	}
	return mux
}
