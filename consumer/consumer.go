package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"math/bits"

	"github.com/craftfolio/project-service/events"
	"github.com/craftfolio/project-service/models"
	"github.com/craftfolio/project-service/services"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// queuePrefix namespaces this service's queues on the shared broker.
const queuePrefix = "project-service."

// Consumer subscribes to inbound exchanges and dispatches each message to the
// matching service operation.
type Consumer struct {
	conn     *amqp.Connection
	projects *services.ProjectService
	members  *services.ProjectMemberService
	logger   zerolog.Logger
}

func New(url string, projects *services.ProjectService, members *services.ProjectMemberService) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return &Consumer{
		conn:     conn,
		projects: projects,
		members:  members,
		logger:   log.With().Str("handlerName", "eventConsumer").Logger(),
	}, nil
}

// Start binds one queue per inbound exchange and consumes until the context
// is cancelled. Failed messages are dropped after logging; the upstream
// services re-send on their own schedule.
func (c *Consumer) Start(ctx context.Context) error {
	bindings := map[string]func([]byte) error{
		events.ExchangeFileStored:         c.handleFileStored,
		events.ExchangeFileStoreFailed:    c.handleFileStoreFailed,
		events.ExchangeUserDeleted:        c.handleUserDeleted,
		events.ExchangeProjectSyncRequest: c.handleProjectSyncRequest,
	}

	channel, err := c.conn.Channel()
	if err != nil {
		return err
	}

	for exchange, handler := range bindings {
		if err := channel.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", exchange, err)
		}

		queue := queuePrefix + exchange
		if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := channel.QueueBind(queue, "", exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}

		deliveries, err := channel.Consume(queue, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume queue %s: %w", queue, err)
		}

		go c.consume(ctx, exchange, deliveries, handler)
	}

	return nil
}

func (c *Consumer) consume(ctx context.Context, exchange string, deliveries <-chan amqp.Delivery, handler func([]byte) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, open := <-deliveries:
			if !open {
				return
			}
			if err := handler(delivery.Body); err != nil {
				c.logger.Error().Err(err).Str("exchange", exchange).Msg("Failed to handle message")
				_ = delivery.Nack(false, false)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (c *Consumer) Close() error {
	return c.conn.Close()
}

// handleFileStored records the stored image path once the file service
// confirms storage.
func (c *Consumer) handleFileStored(body []byte) error {
	var msg events.FileStoredMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return err
	}
	if msg.FileType != events.FileTypeProjectLogo {
		return nil
	}

	projectID, err := uuid.Parse(msg.ParentID)
	if err != nil {
		return fmt.Errorf("parse parent id %q: %w", msg.ParentID, err)
	}

	result, err := c.projects.UpdateImageURL(projectID, msg.FilePath, msg.UserID)
	if err != nil {
		return err
	}
	if !result.Success {
		c.logger.Warn().Str("projectId", msg.ParentID).Str("reason", result.Message).Msg("Stored image could not be recorded")
	}
	return nil
}

func (c *Consumer) handleFileStoreFailed(body []byte) error {
	var msg events.FileStoreFailedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return err
	}
	c.logger.Warn().
		Str("projectId", msg.ParentID).
		Str("userId", msg.UserID).
		Str("reason", msg.Reason).
		Msg("Image storage failed")
	return nil
}

// handleUserDeleted removes the user from every project they belong to.
// Sole-member projects are deleted outright; owned projects are first handed
// to the remaining member holding the most permission bits.
func (c *Consumer) handleUserDeleted(body []byte) error {
	var msg events.UserDeletedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return err
	}

	projects, err := c.projects.GetByUserID(msg.UserID)
	if err != nil {
		return err
	}

	for i := range projects {
		project := &projects[i]
		member := project.Member(msg.UserID)
		if member == nil {
			continue
		}

		if len(project.Members) == 1 {
			if _, err := c.projects.Delete(project.ID, msg.UserID); err != nil {
				c.logger.Error().Err(err).Str("projectId", project.ID.String()).Msg("Failed to delete orphaned project")
			}
			continue
		}

		if member.IsOwner {
			heir := pickHeir(project, msg.UserID)
			if heir == nil {
				c.logger.Error().Str("projectId", project.ID.String()).Msg("No member eligible to inherit ownership")
				continue
			}
			if _, err := c.projects.UpdateOwnership(project.ID, heir.UserID, msg.UserID); err != nil {
				c.logger.Error().Err(err).Str("projectId", project.ID.String()).Msg("Failed to transfer ownership")
				continue
			}
		}

		if _, err := c.members.Delete(project.ID, msg.UserID, msg.UserID, true); err != nil {
			c.logger.Error().Err(err).Str("projectId", project.ID.String()).Msg("Failed to remove deleted user from project")
		}
	}

	return nil
}

// pickHeir returns the remaining member with the widest permission set.
func pickHeir(project *models.Project, excludeUserID string) *models.ProjectMember {
	var heir *models.ProjectMember
	best := -1
	for i := range project.Members {
		m := &project.Members[i]
		if m.UserID == excludeUserID {
			continue
		}
		if count := bits.OnesCount64(uint64(m.Permissions)); count > best {
			best = count
			heir = m
		}
	}
	return heir
}

func (c *Consumer) handleProjectSyncRequest(body []byte) error {
	var msg events.ProjectSyncRequestMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return err
	}

	projectID := uuid.Nil
	if msg.ProjectID != "" {
		id, err := uuid.Parse(msg.ProjectID)
		if err != nil {
			return fmt.Errorf("parse project id %q: %w", msg.ProjectID, err)
		}
		projectID = id
	}

	return c.projects.Resync(projectID, msg.Slug)
}
