package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	healthCheck := struct {
		Status      string `json:"status"`
		Environment string `json:"environment"`
		Version     string `json:"version"`
	}{
		Status:      "available",
		Environment: app.config.env,
		Version:     version,
	}
	writeJSON(w, healthCheck, http.StatusOK)
}

func (app *application) signupHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if input.Role == "" {
		input.Role = RoleUser
	}
	v := newValidator()
	v.checkNotBlank(input.Name, "name")
	v.checkCond(len(input.Name) <= 255, "name", "must be atmost 255 characters")
	v.checkEmail(input.Email)
	v.checkPassword(input.Password)
	v.checkRole(input.Role)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		writeServerError(w, err)
		return
	}
	u := &user{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	err = app.storage.insertUser(u)
	if errors.Is(err, errDuplicateEmail) {
		writeError(w, errDuplicateEmail, http.StatusConflict)
		return
	}
	if err != nil {
		writeServerError(w, err)
		return
	}
	token, err := app.tokens.issue(u.ID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if app.mailer != nil {
		go func() {
			err := app.mailer.sendWelcome(u)
			if err != nil {
				log.Println(err)
			}
		}()
	}
	writeJSON(w, struct {
		User  *user  `json:"user"`
		Token string `json:"token"`
	}{User: u, Token: token}, http.StatusCreated)
}

func (app *application) signinHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	v := newValidator()
	v.checkEmail(input.Email)
	v.checkCond(input.Password != "", "password", "must be provided")
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	u, err := app.storage.getUserByEmail(input.Email)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if u == nil {
		writeError(w, errInvalidCredentials, http.StatusUnauthorized)
		return
	}
	err = bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(input.Password))
	if err != nil {
		writeError(w, errInvalidCredentials, http.StatusUnauthorized)
		return
	}
	token, err := app.tokens.issue(u.ID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, struct {
		User  *user  `json:"user"`
		Token string `json:"token"`
	}{User: u, Token: token}, http.StatusOK)
}

func (app *application) getMeHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	writeJSON(w, struct {
		User *user `json:"user"`
	}{User: u}, http.StatusOK)
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if input.Status == "" {
		input.Status = StatusPending
	}
	v := newValidator()
	v.checkNotBlank(input.Title, "title")
	v.checkNotBlank(input.Description, "description")
	v.checkStatus(input.Status)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	t := &task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
	}
	err = app.storage.insertTask(t)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, t, http.StatusCreated)
}

func (app *application) getTasksHandler(w http.ResponseWriter, r *http.Request) {
	page, pageSize := 1, 10
	v := newValidator()
	query := r.URL.Query()
	if s := query.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		v.checkCond(err == nil && n > 0, "page", "must be a positive integer")
		page = n
	}
	if s := query.Get("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		v.checkCond(err == nil && n > 0, "page_size", "must be a positive integer")
		v.checkCond(n <= 100, "page_size", "must be atmost 100")
		pageSize = n
	}
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	tasks, total, err := app.storage.getTasks(page, pageSize)
	if err != nil {
		writeServerError(w, err)
		return
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	writeJSON(w, struct {
		Items       []task `json:"items"`
		TotalCount  int    `json:"total_count"`
		CurrentPage int    `json:"current_page"`
		TotalPages  int    `json:"total_pages"`
	}{
		Items:       tasks,
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, http.StatusOK)
}

func (app *application) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errNotFound, http.StatusNotFound)
		return
	}
	t, err := app.storage.getTaskByID(id)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if t == nil {
		writeError(w, errNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, t, http.StatusOK)
}

// updateTaskHandler replaces title, description and status wholesale. A
// caller toggling only status must resupply the current title and
// description.
func (app *application) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errNotFound, http.StatusNotFound)
		return
	}
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	err = json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if input.Status == "" {
		input.Status = StatusPending
	}
	v := newValidator()
	v.checkNotBlank(input.Title, "title")
	v.checkNotBlank(input.Description, "description")
	v.checkStatus(input.Status)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	t := &task{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
	}
	ok, err := app.storage.updateTask(t)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if !ok {
		writeError(w, errNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, t, http.StatusOK)
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errNotFound, http.StatusNotFound)
		return
	}
	ok, err := app.storage.deleteTask(id)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if !ok {
		writeError(w, errNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, struct {
		Message string `json:"message"`
	}{Message: "task deleted"}, http.StatusOK)
}
