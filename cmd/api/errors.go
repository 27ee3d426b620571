package main

import (
	"net/http"
)

type ResponseErrorCode string

const (
	ErrorCodeNotFound            ResponseErrorCode = "not_found"
	ErrorCodeMethodNotAllowed    ResponseErrorCode = "method_not_allowed"
	ErrorTooManyRequest          ResponseErrorCode = "too_many_requests"
	ErrorCodeInternalServerError ResponseErrorCode = "internal_server_error"
)

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	message := "rate limit exceeded"
	app.errorResponse(w, http.StatusTooManyRequests, message, envelope{"code": ErrorTooManyRequest})
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)

	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, http.StatusInternalServerError, message, envelope{"code": ErrorCodeInternalServerError})
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Infow("not found attempt",
		"method", r.Method,
		"path", r.URL.Path,
	)

	message := "the requested resource could not be found"
	app.errorResponse(w, http.StatusNotFound, message, envelope{"code": ErrorCodeNotFound})
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, http.StatusMethodNotAllowed, message, envelope{"code": ErrorCodeMethodNotAllowed})
}

func (app *application) errorResponse(w http.ResponseWriter, status int, message any, info ...envelope) {
	error := envelope{
		"message": message,
	}

	env := envelope{
		"status": "error",
		"error":  error,
	}

	if len(info) == 1 && len(info[0]) > 0 {
		for key, value := range info[0] {
			error[key] = value
		}
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logger.Errorw("failed to write JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) successResponse(w http.ResponseWriter, status int, data any) {
	env := envelope{
		"status": "success",
		"data":   data,
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logger.Errorw("failed to write JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}
