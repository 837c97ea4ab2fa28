// Package admin implements the authenticated back-office API handlers for
// moderation actions and audit visibility.
package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pawtrails/backoffice/internal/middleware"
	"github.com/pawtrails/backoffice/internal/moderation"
	"github.com/pawtrails/backoffice/internal/notify"
)

// ModerationHandlers handles bulk operations, soft deletes, and queue stats
type ModerationHandlers struct {
	bulk       *moderation.BulkExecutor
	softDelete *moderation.SoftDeleteManager
	stats      *moderation.StatsService
	notifier   *notify.Notifier
}

// NewModerationHandlers creates a new ModerationHandlers instance
func NewModerationHandlers(bulk *moderation.BulkExecutor, softDelete *moderation.SoftDeleteManager, stats *moderation.StatsService, notifier *notify.Notifier) *ModerationHandlers {
	return &ModerationHandlers{
		bulk:       bulk,
		softDelete: softDelete,
		stats:      stats,
		notifier:   notifier,
	}
}

// BulkOperationRequest is the body for POST /admin/moderation/bulk. The
// target list field is discriminated by operation: editRequestIds for
// revert, userIds for range-block.
type BulkOperationRequest struct {
	Operation      string   `json:"operation" binding:"required"`
	EditRequestIDs []string `json:"editRequestIds"`
	UserIDs        []string `json:"userIds"`
	Reason         string   `json:"reason"`
	Duration       *int     `json:"duration"`
}

func (r *BulkOperationRequest) targetIDs() []string {
	if r.Operation == moderation.OpRangeBlock {
		return r.UserIDs
	}
	return r.EditRequestIDs
}

// @Summary      Execute bulk moderation operation
// @Description  Run a revert or range-block over up to 1000 targets. Requires moderation:write scope.
// @Tags         Moderation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  BulkOperationRequest  true  "Bulk operation request"
// @Success      200  {object}  map[string]interface{}  "success, message, result: BulkOperationResult"
// @Failure      400  {object}  map[string]interface{}  "error, code: VALIDATION_ERROR, details"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing moderation:write scope"
// @Failure      500  {object}  map[string]interface{}  "error, code: INTERNAL_ERROR, message"
// @Router       /api/v1/admin/moderation/bulk [post]
// BulkHandler executes a bulk moderation operation
// POST /api/v1/admin/moderation/bulk
func (h *ModerationHandlers) BulkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		var req BulkOperationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request body",
				"code":    "VALIDATION_ERROR",
				"details": []string{err.Error()},
			})
			return
		}

		result, err := h.bulk.Execute(c.Request.Context(), actor.ID, moderation.BulkRequest{
			Operation: req.Operation,
			TargetIDs: req.targetIDs(),
			Reason:    req.Reason,
			Duration:  req.Duration,
		})
		if err != nil {
			var vErr *moderation.ValidationError
			if errors.As(err, &vErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Invalid bulk request",
					"code":    "VALIDATION_ERROR",
					"details": vErr.Details,
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Bulk operation failed",
				"code":    "INTERNAL_ERROR",
				"message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("%s completed: %d succeeded, %d failed",
				req.Operation, result.SuccessCount, result.FailureCount),
			"result": result,
		})
	}
}

// SoftDeleteContentRequest is the body for content delete endpoints
type SoftDeleteContentRequest struct {
	Reason   *string                `json:"reason"`
	Metadata map[string]interface{} `json:"metadata"`
}

// @Summary      Soft delete content
// @Description  Mark a content item deleted and record the deletion audit trail. Requires moderation:write scope.
// @Tags         Moderation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        type  path  string  true  "Content type (article, blog_post, place, product)"
// @Param        id    path  string  true  "Content ID"
// @Success      200  {object}  map[string]interface{}  "success, auditId"
// @Failure      400  {object}  map[string]interface{}  "Unsupported content type"
// @Failure      404  {object}  map[string]interface{}  "Content not found"
// @Failure      409  {object}  map[string]interface{}  "Already deleted"
// @Router       /api/v1/admin/moderation/content/{type}/{id}/delete [post]
// SoftDeleteHandler soft-deletes a content item
// POST /api/v1/admin/moderation/content/:type/:id/delete
func (h *ModerationHandlers) SoftDeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		var req SoftDeleteContentRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid request body",
					"code":  "VALIDATION_ERROR",
				})
				return
			}
		}

		contentType := c.Param("type")
		contentID := c.Param("id")

		auditID, err := h.softDelete.SoftDelete(c.Request.Context(), moderation.SoftDeleteRequest{
			ContentType: contentType,
			ContentID:   contentID,
			DeletedBy:   actor.ID,
			Reason:      req.Reason,
			Metadata:    req.Metadata,
		})
		if err != nil {
			h.writeSoftDeleteError(c, err)
			return
		}

		// Best-effort owner notification, never part of the transaction
		reason := ""
		if req.Reason != nil {
			reason = *req.Reason
		}
		h.notifier.Publish(c.Request.Context(), &notify.Event{
			Type:        notify.EventContentDeleted,
			ContentType: contentType,
			ContentID:   contentID,
			ActorID:     actor.ID,
			Reason:      reason,
		})

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"auditId": auditID,
		})
	}
}

// @Summary      Restore content
// @Description  Clear a content item's deletion and close its outstanding audit row. Idempotent. Requires moderation:write scope.
// @Tags         Moderation
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "Content type"
// @Param        id    path  string  true  "Content ID"
// @Success      200  {object}  map[string]interface{}  "success"
// @Failure      400  {object}  map[string]interface{}  "Unsupported content type"
// @Router       /api/v1/admin/moderation/content/{type}/{id}/restore [post]
// RestoreHandler restores a soft-deleted content item
// POST /api/v1/admin/moderation/content/:type/:id/restore
func (h *ModerationHandlers) RestoreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		contentType := c.Param("type")
		contentID := c.Param("id")

		if err := h.softDelete.Restore(c.Request.Context(), contentType, contentID, actor.ID); err != nil {
			h.writeSoftDeleteError(c, err)
			return
		}

		h.notifier.Publish(c.Request.Context(), &notify.Event{
			Type:        notify.EventContentRestored,
			ContentType: contentType,
			ContentID:   contentID,
			ActorID:     actor.ID,
		})

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// @Summary      Content deletion status
// @Description  Return the item's current deletion state plus its full moderation history. Requires moderation:read scope.
// @Tags         Moderation
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "Content type"
// @Param        id    path  string  true  "Content ID"
// @Success      200  {object}  map[string]interface{}  "deleted, outstandingAudit, history"
// @Failure      404  {object}  map[string]interface{}  "Content not found"
// @Router       /api/v1/admin/moderation/content/{type}/{id} [get]
// ContentStatusHandler reports deletion state and history for an item
// GET /api/v1/admin/moderation/content/:type/:id
func (h *ModerationHandlers) ContentStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType := c.Param("type")
		contentID := c.Param("id")

		deleted, err := h.softDelete.IsDeleted(c.Request.Context(), contentType, contentID)
		if err != nil {
			h.writeSoftDeleteError(c, err)
			return
		}

		outstanding, err := h.softDelete.GetSoftDeleteAudit(c.Request.Context(), contentType, contentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load deletion audit"})
			return
		}

		history, err := h.softDelete.History(c.Request.Context(), contentType, contentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load deletion history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"contentType":      contentType,
			"contentId":        contentID,
			"deleted":          deleted,
			"outstandingAudit": outstanding,
			"history":          history,
		})
	}
}

// @Summary      Moderation queue stats
// @Description  Point-in-time totals and pending breakdowns for the moderation queue. Requires moderation:read scope.
// @Tags         Moderation
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  moderation.QueueStats
// @Router       /api/v1/admin/moderation/stats [get]
// StatsHandler returns moderation queue statistics
// GET /api/v1/admin/moderation/stats
func (h *ModerationHandlers) StatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := h.stats.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load queue stats"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// writeSoftDeleteError maps manager errors to HTTP responses
func (h *ModerationHandlers) writeSoftDeleteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, moderation.ErrUnsupportedContentType):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  "VALIDATION_ERROR",
		})
	case errors.Is(err, moderation.ErrContentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, moderation.ErrAlreadyDeleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Moderation action failed",
			"code":  "INTERNAL_ERROR",
		})
	}
}
