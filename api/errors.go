package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
)

var (
	errInvalidAuthHeader  = errors.New("invalid Authorization header")
	errInvalidToken       = errors.New("invalid token")
	errExpiredToken       = errors.New("token has expired")
	errUserGone           = errors.New("user no longer exists")
	errInvalidCredentials = errors.New("invalid email or password")
	errForbidden          = errors.New("insufficient permissions to access this resource")
	errNotFound           = errors.New("the requested resource could not be found")
	errDuplicateEmail     = errors.New("a user with this email already exists")
	errInternal           = errors.New("internal server error")
)

func composeJSONError(err error) string {
	jsonError := map[string]string{
		"error": err.Error(),
	}
	result, err := json.Marshal(jsonError)
	if err != nil {
		log.Println(err)
		return ""
	}
	return string(result)
}

func writeError(w http.ResponseWriter, err error, statusCode int) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	fmt.Fprintln(w, composeJSONError(err))
}

func writeJSON(w http.ResponseWriter, v any, statusCode int) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func writeServerError(w http.ResponseWriter, err error) {
	log.Println(err)
	writeError(w, errInternal, http.StatusInternalServerError)
}
