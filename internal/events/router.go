package events

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
)

// Router resolves the audience of a mutation and publishes the matching
// ChangeEvents through the bus. Entity mutations always go to the channel of
// the entity's current project; when the task's assignee or creator is not
// the actor, the same full snapshot additionally goes to their user channel,
// so a client on a cross-project view ("My Tasks") still receives it.
// Only presence and project-catalog changes use the global channel.
//
// Routing never returns an error: a payload that cannot be serialized is
// logged and the publish skipped, matching the fire-and-forget contract.
type Router struct {
	bus    *Bus
	logger *slog.Logger
}

// NewRouter creates a Router publishing through the given bus.
func NewRouter(bus *Bus, logger *slog.Logger) *Router {
	return &Router{
		bus:    bus,
		logger: logger.With("component", "event_router"),
	}
}

func (r *Router) publish(channel Channel, kind Kind, payload interface{}) {
	event, err := NewChangeEvent(channel, kind, payload)
	if err != nil {
		r.logger.Error("failed to serialize event payload",
			"channel", channel,
			"kind", kind,
			"error", err)
		return
	}
	r.bus.Publish(event)
}

// publishToTaskUsers sends the same snapshot to the assignee's and creator's
// user channels when they are not the actor. The creator publish is skipped
// when the assignee publish already covered them.
func (r *Router) publishToTaskUsers(task *domain.Task, actorID uuid.UUID, kind Kind, payload interface{}) {
	if task.HasAssignee() && task.AssigneeID != actorID {
		r.publish(UserChannel(task.AssigneeID), kind, payload)
	}
	if task.CreatorID != actorID && task.CreatorID != task.AssigneeID {
		r.publish(UserChannel(task.CreatorID), kind, payload)
	}
}

// TaskCreated announces a new task on its project channel, with a
// taskAssigned event on the assignee's user channel when the task was
// created already assigned to someone other than the actor.
func (r *Router) TaskCreated(task *domain.Task, actorID uuid.UUID) {
	r.publish(ProjectChannel(task.ProjectID), KindTaskCreated, TaskCreatedPayload{
		ProjectID: task.ProjectID,
		Task:      task,
	})
	if task.HasAssignee() && task.AssigneeID != actorID {
		r.publish(UserChannel(task.AssigneeID), KindTaskAssigned, TaskPayload{Task: task})
	}
	if task.CreatorID != actorID && task.CreatorID != task.AssigneeID {
		r.publish(UserChannel(task.CreatorID), KindTaskCreated, TaskCreatedPayload{
			ProjectID: task.ProjectID,
			Task:      task,
		})
	}
}

// TaskUpdated announces the task's new full state on its current project
// channel (post-move for project changes) and on the relevant user channels.
func (r *Router) TaskUpdated(task *domain.Task, actorID uuid.UUID) {
	payload := TaskPayload{Task: task}
	r.publish(ProjectChannel(task.ProjectID), KindTaskUpdated, payload)
	r.publishToTaskUsers(task, actorID, KindTaskUpdated, payload)
}

// TaskAssigned pushes a taskAssigned snapshot to the new assignee's user
// channel. No project-channel event: callers pair this with TaskUpdated.
func (r *Router) TaskAssigned(task *domain.Task, actorID uuid.UUID) {
	if !task.HasAssignee() || task.AssigneeID == actorID {
		return
	}
	r.publish(UserChannel(task.AssigneeID), KindTaskAssigned, TaskPayload{Task: task})
}

// TaskDeleted announces a deletion. The task value is the last known state
// before deletion; only its ID travels on the wire.
func (r *Router) TaskDeleted(task *domain.Task, actorID uuid.UUID) {
	payload := TaskDeletedPayload{TaskID: task.ID}
	r.publish(ProjectChannel(task.ProjectID), KindTaskDeleted, payload)
	r.publishToTaskUsers(task, actorID, KindTaskDeleted, payload)
}

// CommentCreated announces a new comment on the task's project channel and
// to the task's assignee/creator user channels.
func (r *Router) CommentCreated(task *domain.Task, comment *domain.Comment, actorID uuid.UUID) {
	payload := CommentCreatedPayload{TaskID: task.ID, Comment: comment}
	r.publish(ProjectChannel(task.ProjectID), KindCommentCreated, payload)
	r.publishToTaskUsers(task, actorID, KindCommentCreated, payload)
}

// CommentUpdated announces a comment edit.
func (r *Router) CommentUpdated(task *domain.Task, comment *domain.Comment, actorID uuid.UUID) {
	payload := CommentPayload{Comment: comment}
	r.publish(ProjectChannel(task.ProjectID), KindCommentUpdated, payload)
	r.publishToTaskUsers(task, actorID, KindCommentUpdated, payload)
}

// CommentDeleted announces a comment removal.
func (r *Router) CommentDeleted(task *domain.Task, commentID uuid.UUID, actorID uuid.UUID) {
	payload := CommentDeletedPayload{CommentID: commentID, TaskID: task.ID}
	r.publish(ProjectChannel(task.ProjectID), KindCommentDeleted, payload)
	r.publishToTaskUsers(task, actorID, KindCommentDeleted, payload)
}

// ProjectCreated announces a new project to all connections. Project
// catalog changes are the one entity class allowed on the global channel:
// every client needs them to keep its project list current.
func (r *Router) ProjectCreated(project *domain.Project) {
	r.publish(ChannelGlobal, KindProjectCreated, ProjectPayload{Project: project})
}

// ProjectUpdated announces a project change to all connections.
func (r *Router) ProjectUpdated(project *domain.Project) {
	r.publish(ChannelGlobal, KindProjectUpdated, ProjectPayload{Project: project})
}

// ProjectDeleted announces a project removal to all connections.
func (r *Router) ProjectDeleted(projectID uuid.UUID) {
	r.publish(ChannelGlobal, KindProjectDeleted, ProjectDeletedPayload{ProjectID: projectID})
}

// UserOnline announces presence to all connections.
func (r *Router) UserOnline(userID uuid.UUID, name string) {
	r.publish(ChannelGlobal, KindUserOnline, PresencePayload{UserID: userID, Name: name})
}

// UserOffline announces a user going offline to all connections.
func (r *Router) UserOffline(userID uuid.UUID) {
	r.publish(ChannelGlobal, KindUserOffline, PresencePayload{UserID: userID})
}

// NotificationCreated pushes a pointer event to the recipient's user
// channel. The notification body stays in the store; clients fetch it.
func (r *Router) NotificationCreated(recipientID uuid.UUID) {
	r.publish(UserChannel(recipientID), KindNotification, NotificationPointerPayload{
		UserID: recipientID,
	})
}
