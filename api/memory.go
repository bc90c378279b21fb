package main

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryStorage backs the API when no database DSN is configured and is what
// the tests run against. Each method takes the mutex once, so every
// operation is atomic like its SQL counterpart.
type memoryStorage struct {
	mu         sync.RWMutex
	users      map[int]*user
	tasks      map[int]*task
	nextUserID int
	nextTaskID int
	now        func() time.Time
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		users:      make(map[int]*user),
		tasks:      make(map[int]*task),
		nextUserID: 1,
		nextTaskID: 1,
		now:        time.Now,
	}
}

func (s *memoryStorage) insertUser(u *user) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	for _, existing := range s.users {
		if existing.Email == email {
			return errDuplicateEmail
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	u.Email = email
	u.CreatedAt = s.now()
	stored := *u
	s.users[u.ID] = &stored
	return nil
}

func (s *memoryStorage) getUserByEmail(email string) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (s *memoryStorage) getUserByID(id int) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (s *memoryStorage) insertTask(t *task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextTaskID
	s.nextTaskID++
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	stored := *t
	s.tasks[t.ID] = &stored
	return nil
}

func (s *memoryStorage) getTaskByID(id int) (*task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	out := *t
	return &out, nil
}

func (s *memoryStorage) getTasks(page, pageSize int) ([]task, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]task, 0, len(s.tasks))
	for _, t := range s.tasks {
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})

	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	// comparing against totalPages keeps (page-1)*pageSize from
	// overflowing on an enormous page number
	if page > totalPages {
		return []task{}, total, nil
	}
	offset := (page - 1) * pageSize
	end := offset + pageSize
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *memoryStorage) updateTask(t *task) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[t.ID]
	if !ok {
		return false, nil
	}
	stored.Title = t.Title
	stored.Description = t.Description
	stored.Status = t.Status
	stored.UpdatedAt = s.now()
	*t = *stored
	return true, nil
}

func (s *memoryStorage) deleteTask(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}
