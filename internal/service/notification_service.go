package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/events"
	"github.com/taskpulse/taskpulse-api/internal/store"
)

// defaultNotificationLimit caps notification retrieval; older entries stay
// stored but are not returned.
const defaultNotificationLimit = 50

// NotificationService derives per-user notifications from task mutations and
// tracks their read/unread state. Every created notification is announced to
// the recipient's user channel with a newNotification pointer event; the
// body is fetched through the API, never duplicated on the wire.
type NotificationService struct {
	notificationStore store.NotificationStore
	router            *events.Router
	logger            *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(
	notificationStore store.NotificationStore,
	router *events.Router,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		notificationStore: notificationStore,
		router:            router,
		logger:            logger.With("component", "notification_service"),
	}
}

// Notify creates a notification for recipientUserID and publishes the
// pointer event. Self-notification is suppressed: when the recipient is the
// actor (or nil), nothing is stored, nothing is published, and (nil, nil) is
// returned.
func (s *NotificationService) Notify(
	ctx context.Context,
	notificationType domain.NotificationType,
	recipientUserID uuid.UUID,
	relatedTaskID, actorUserID uuid.UUID,
	message string,
) (*domain.Notification, error) {
	if recipientUserID == uuid.Nil || recipientUserID == actorUserID {
		return nil, nil
	}

	notification, err := domain.NewNotification(
		notificationType,
		recipientUserID,
		relatedTaskID,
		actorUserID,
		message,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid notification: %w", err)
	}

	if err := s.notificationStore.Create(ctx, notification); err != nil {
		s.logger.Error("failed to create notification",
			"notification_type", notificationType,
			"recipient_user_id", recipientUserID,
			"error", err)
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.router.NotificationCreated(recipientUserID)

	return notification, nil
}

// NotifyAssigned notifies a task's assignee about their (re)assignment.
// No-op when the task is unassigned or the assignee did it themselves.
func (s *NotificationService) NotifyAssigned(
	ctx context.Context,
	task *domain.Task,
	actorUserID uuid.UUID,
) {
	if !task.HasAssignee() {
		return
	}
	s.notifyBestEffort(ctx, domain.NotificationTaskAssigned, task.AssigneeID, task.ID, actorUserID,
		fmt.Sprintf("You have been assigned the task %q", task.Title))
}

// NotifyCommentAdded notifies the task's creator and assignee about a new
// comment, each at most once: the commenting actor is skipped, and the
// assignee is skipped when they are also the creator.
func (s *NotificationService) NotifyCommentAdded(
	ctx context.Context,
	task *domain.Task,
	actorUserID uuid.UUID,
) {
	message := fmt.Sprintf("New comment on %q", task.Title)

	if task.CreatorID != actorUserID {
		s.notifyBestEffort(ctx, domain.NotificationTaskComment, task.CreatorID, task.ID, actorUserID, message)
	}

	if task.HasAssignee() && task.AssigneeID != actorUserID && task.AssigneeID != task.CreatorID {
		s.notifyBestEffort(ctx, domain.NotificationTaskComment, task.AssigneeID, task.ID, actorUserID, message)
	}
}

// NotifyTaskCompleted notifies the task's creator that someone else
// completed their task.
func (s *NotificationService) NotifyTaskCompleted(
	ctx context.Context,
	task *domain.Task,
	actorUserID uuid.UUID,
) {
	s.notifyBestEffort(ctx, domain.NotificationTaskCompleted, task.CreatorID, task.ID, actorUserID,
		fmt.Sprintf("The task %q has been completed", task.Title))
}

// NotifyDueSoon notifies a task's assignee that the task is due within the
// next day. Used by the scheduled sweep; there is no acting user.
func (s *NotificationService) NotifyDueSoon(ctx context.Context, task *domain.Task) {
	if !task.HasAssignee() {
		return
	}
	s.notifyBestEffort(ctx, domain.NotificationTaskDueSoon, task.AssigneeID, task.ID, uuid.Nil,
		fmt.Sprintf("The task %q is due within 24 hours", task.Title))
}

// notifyBestEffort wraps Notify for callers inside a mutation's side-effect
// path, where a notification failure is logged and must not propagate.
func (s *NotificationService) notifyBestEffort(
	ctx context.Context,
	notificationType domain.NotificationType,
	recipientUserID uuid.UUID,
	relatedTaskID, actorUserID uuid.UUID,
	message string,
) {
	if _, err := s.Notify(ctx, notificationType, recipientUserID, relatedTaskID, actorUserID, message); err != nil {
		s.logger.Error("notification dropped",
			"notification_type", notificationType,
			"recipient_user_id", recipientUserID,
			"task_id", relatedTaskID,
			"error", err)
	}
}

// ListForUser returns the user's newest notifications, capped at 50.
func (s *NotificationService) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Notification, error) {
	notifications, err := s.notificationStore.ListByRecipient(ctx, userID, defaultNotificationLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	return notifications, nil
}

// MarkRead marks one notification read on behalf of requestingUserID.
// Returns store.ErrNotificationNotFound when the id does not exist and
// domain.ErrForbidden when the requester is not the recipient.
func (s *NotificationService) MarkRead(
	ctx context.Context,
	notificationID, requestingUserID uuid.UUID,
) (*domain.Notification, error) {
	notification, err := s.requireOwned(ctx, notificationID, requestingUserID)
	if err != nil {
		return nil, err
	}

	if err := s.notificationStore.MarkRead(ctx, notificationID); err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}

	notification.Read = true
	return notification, nil
}

// MarkAllRead marks all of the user's unread notifications read. Idempotent:
// a second call finds nothing unread and changes nothing.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notificationStore.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark all notifications read for user %s: %w", userID, err)
	}
	return nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.notificationStore.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}
	return count, nil
}

// Delete removes a notification on behalf of requestingUserID, with the same
// ownership check as MarkRead.
func (s *NotificationService) Delete(
	ctx context.Context,
	notificationID, requestingUserID uuid.UUID,
) error {
	if _, err := s.requireOwned(ctx, notificationID, requestingUserID); err != nil {
		return err
	}

	if err := s.notificationStore.Delete(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// requireOwned loads a notification and verifies the requester is its
// recipient.
func (s *NotificationService) requireOwned(
	ctx context.Context,
	notificationID, requestingUserID uuid.UUID,
) (*domain.Notification, error) {
	notification, err := s.notificationStore.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}

	if notification.RecipientUserID != requestingUserID {
		return nil, domain.ErrForbidden
	}

	return notification, nil
}
