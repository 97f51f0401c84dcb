package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/pkg/queue"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type NotificationHandler struct {
	redisClient *redis.Client
	queueClient *queue.Client
	logger      *logger.Logger
}

func NewNotificationHandler(redisClient *redis.Client, queueClient *queue.Client, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		redisClient: redisClient,
		queueClient: queueClient,
		logger:      logger,
	}
}

type Notification struct {
	UserID  string                 `json:"user_id"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Type    string                 `json:"type"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// StartLedgerConsumer consumes commission.posted and payout.settled events
// and fans them out as user notifications. Called once on startup.
func (h *NotificationHandler) StartLedgerConsumer() error {
	return h.queueClient.ConsumeLedgerEvents(func(routingKey string, body []byte) error {
		switch routingKey {
		case queue.CommissionPostedKey:
			var event queue.CommissionPostedEvent
			if err := json.Unmarshal(body, &event); err != nil {
				return fmt.Errorf("failed to decode commission event: %w", err)
			}
			if event.Amount == 0 {
				// Zero commissions are ledger facts, not news.
				return nil
			}
			return h.store(Notification{
				UserID:  event.UserID,
				Title:   "Komisi Diterima",
				Message: fmt.Sprintf("Anda mendapat komisi Rp %d dari penjualan %s", event.Amount, event.SaleID),
				Type:    "commission_posted",
				Data: map[string]interface{}{
					"ledger_entry_id": event.LedgerEntryID,
					"sale_id":         event.SaleID,
					"amount":          event.Amount,
				},
			})

		case queue.PayoutSettledKey:
			var event queue.PayoutSettledEvent
			if err := json.Unmarshal(body, &event); err != nil {
				return fmt.Errorf("failed to decode payout event: %w", err)
			}
			title := "Penarikan Berhasil"
			message := fmt.Sprintf("Penarikan Rp %d telah dibayarkan", event.Amount)
			if event.Status == "failed" {
				title = "Penarikan Gagal"
				message = fmt.Sprintf("Penarikan Rp %d gagal, saldo dikembalikan", event.Amount)
			}
			return h.store(Notification{
				UserID:  event.UserID,
				Title:   title,
				Message: message,
				Type:    "payout_settled",
				Data: map[string]interface{}{
					"payout_id": event.PayoutID,
					"amount":    event.Amount,
					"status":    event.Status,
				},
			})
		}

		h.logger.Info("Ignoring unknown routing key %s", routingKey)
		return nil
	})
}

// store appends the notification to the user's Redis list and publishes it
// on pub/sub for connected clients.
func (h *NotificationHandler) store(n Notification) error {
	ctx := context.Background()
	notificationJSON, err := json.Marshal(n)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("notifications:%s", n.UserID)
	h.redisClient.LPush(ctx, key, notificationJSON)
	h.redisClient.LTrim(ctx, key, 0, 99) // Keep last 100 notifications
	h.redisClient.Expire(ctx, key, 30*24*time.Hour)

	h.redisClient.Publish(ctx, key, notificationJSON)

	h.logger.Info("Notification stored for user %s: %s", n.UserID, n.Title)
	return nil
}

// GetNotifications godoc
// @Summary      Get user notifications
// @Description  Commission and payout notifications for the authenticated user, newest first
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of notifications to return (max 100)"
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required"})
		return
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	ctx := context.Background()
	key := fmt.Sprintf("notifications:%s", userID)

	notificationsJSON, err := h.redisClient.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil && err != redis.Nil {
		h.logger.Error("Failed to get notifications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	var notifications []Notification
	for _, notifJSON := range notificationsJSON {
		var notification Notification
		if err := json.Unmarshal([]byte(notifJSON), &notification); err == nil {
			notifications = append(notifications, notification)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}
