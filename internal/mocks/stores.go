// Package mocks provides in-memory store implementations for tests.
package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/store"
)

// ActivityStore is an in-memory store.ActivityStore. Set CreateErr to make
// appends fail.
type ActivityStore struct {
	mu        sync.Mutex
	Records   []*domain.ActivityRecord
	CreateErr error
}

var _ store.ActivityStore = (*ActivityStore)(nil)

// NewActivityStore creates an empty ActivityStore.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

func (s *ActivityStore) Create(_ context.Context, record *domain.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.Records = append(s.Records, record)
	return nil
}

func (s *ActivityStore) ListByTask(
	_ context.Context,
	taskID uuid.UUID,
	limit int,
) ([]*domain.ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*domain.ActivityRecord
	for _, record := range s.Records {
		if record.TaskID == taskID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// ByType returns the stored records of the given type, in append order.
func (s *ActivityStore) ByType(t domain.ActivityType) []*domain.ActivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*domain.ActivityRecord
	for _, record := range s.Records {
		if record.Type == t {
			records = append(records, record)
		}
	}
	return records
}

// NotificationStore is an in-memory store.NotificationStore.
type NotificationStore struct {
	mu            sync.Mutex
	Notifications map[uuid.UUID]*domain.Notification
	CreateErr     error
}

var _ store.NotificationStore = (*NotificationStore)(nil)

// NewNotificationStore creates an empty NotificationStore.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{Notifications: make(map[uuid.UUID]*domain.Notification)}
}

func (s *NotificationStore) Create(_ context.Context, notification *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	copied := *notification
	s.Notifications[notification.ID] = &copied
	return nil
}

func (s *NotificationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification, ok := s.Notifications[id]
	if !ok {
		return nil, store.ErrNotificationNotFound
	}
	copied := *notification
	return &copied, nil
}

func (s *NotificationStore) ListByRecipient(
	_ context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notifications []*domain.Notification
	for _, notification := range s.Notifications {
		if notification.RecipientUserID == userID {
			copied := *notification
			notifications = append(notifications, &copied)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification, ok := s.Notifications[id]
	if !ok {
		return store.ErrNotificationNotFound
	}
	notification.Read = true
	return nil
}

func (s *NotificationStore) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, notification := range s.Notifications {
		if notification.RecipientUserID == userID {
			notification.Read = true
		}
	}
	return nil
}

func (s *NotificationStore) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, notification := range s.Notifications {
		if notification.RecipientUserID == userID && !notification.Read {
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Notifications[id]; !ok {
		return store.ErrNotificationNotFound
	}
	delete(s.Notifications, id)
	return nil
}

// ForRecipient returns the stored notifications for a user, unordered.
func (s *NotificationStore) ForRecipient(userID uuid.UUID) []*domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var notifications []*domain.Notification
	for _, notification := range s.Notifications {
		if notification.RecipientUserID == userID {
			copied := *notification
			notifications = append(notifications, &copied)
		}
	}
	return notifications
}

// TaskStore is an in-memory store.TaskStore.
type TaskStore struct {
	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{Tasks: make(map[uuid.UUID]*domain.Task)}
}

// Put stores or replaces a task.
func (s *TaskStore) Put(task *domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *task
	s.Tasks[task.ID] = &copied
}

func (s *TaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *TaskStore) ListDueBetween(
	_ context.Context,
	from, to time.Time,
) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []*domain.Task
	for _, task := range s.Tasks {
		if task.DueDate == nil || task.Status == domain.TaskStatusCompleted {
			continue
		}
		if task.DueDate.Before(from) || task.DueDate.After(to) {
			continue
		}
		copied := *task
		tasks = append(tasks, &copied)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})
	return tasks, nil
}
