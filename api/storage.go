package main

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
)

// storage is the durable store behind the credential and task handlers.
// Lookups return (nil, nil) when the record is absent; update/delete report
// absence through their bool result. Every method is a single atomic
// statement against the store.
type storage interface {
	insertUser(u *user) error
	getUserByEmail(email string) (*user, error)
	getUserByID(id int) (*user, error)

	insertTask(t *task) error
	getTaskByID(id int) (*task, error)
	getTasks(page, pageSize int) ([]task, int, error)
	updateTask(t *task) (bool, error)
	deleteTask(id int) (bool, error)
}

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConnections)
	db.SetMaxIdleConns(cfg.db.maxIdleConnections)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

type postgresStorage struct {
	db *sql.DB
}

func newPostgresStorage(db *sql.DB) *postgresStorage {
	return &postgresStorage{
		db: db,
	}
}

func (s *postgresStorage) insertUser(u *user) error {
	query := `INSERT INTO users (name, email, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	u.Email = strings.ToLower(u.Email)
	row := s.db.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Role)
	err := row.Scan(&u.ID, &u.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return errDuplicateEmail
	}
	return err
}

func (s *postgresStorage) getUserByEmail(email string) (*user, error) {
	query := `SELECT id, created_at, name, email, password_hash, role
			  FROM users
			  WHERE email = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, strings.ToLower(email))
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *postgresStorage) getUserByID(id int) (*user, error) {
	query := `SELECT id, created_at, name, email, password_hash, role
			  FROM users
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *postgresStorage) insertTask(t *task) error {
	query := `INSERT INTO tasks (title, description, status)
			  VALUES ($1, $2, $3)
			  RETURNING id, created_at, updated_at`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, t.Title, t.Description, t.Status)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (s *postgresStorage) getTaskByID(id int) (*task, error) {
	query := `SELECT id, created_at, updated_at, title, description, status
			  FROM tasks
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id)
	var t task
	err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.Title, &t.Description, &t.Status)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

// getTasks pages in id order, which is insertion order, so repeated calls
// with no intervening writes see every task exactly once across pages.
func (s *postgresStorage) getTasks(page, pageSize int) ([]task, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	offset := (page - 1) * pageSize
	if offset < 0 {
		// the multiplication overflowed; a page that large is far past
		// the last row
		total := 0
		row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`)
		if err := row.Scan(&total); err != nil {
			return nil, 0, err
		}
		return []task{}, total, nil
	}

	query := `SELECT COUNT(*) OVER(), id, created_at, updated_at, title, description, status
			  FROM tasks
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := []task{}
	total := 0
	for rows.Next() {
		var t task
		err := rows.Scan(&total, &t.ID, &t.CreatedAt, &t.UpdatedAt, &t.Title, &t.Description, &t.Status)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(tasks) == 0 {
		// past the last page; the window count never ran
		row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`)
		if err := row.Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return tasks, total, nil
}

func (s *postgresStorage) updateTask(t *task) (bool, error) {
	query := `UPDATE tasks SET title = $1, description = $2, status = $3, updated_at = now()
			  WHERE id = $4
			  RETURNING created_at, updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, t.Title, t.Description, t.Status, t.ID)
	err := row.Scan(&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *postgresStorage) deleteTask(id int) (bool, error) {
	query := `DELETE FROM tasks
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
