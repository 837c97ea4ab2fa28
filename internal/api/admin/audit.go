// audit.go implements handlers for audit log search and audit queue visibility.
package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pawtrails/backoffice/internal/db/repositories"
	"github.com/pawtrails/backoffice/internal/jobs"
)

// AuditHandlers handles audit log and audit queue endpoints
type AuditHandlers struct {
	auditRepo *repositories.AuditRepository
	queueRepo *repositories.AuditQueueRepository
	drainer   *jobs.AuditQueueDrainer
}

// NewAuditHandlers creates a new AuditHandlers instance
func NewAuditHandlers(auditRepo *repositories.AuditRepository, queueRepo *repositories.AuditQueueRepository, drainer *jobs.AuditQueueDrainer) *AuditHandlers {
	return &AuditHandlers{
		auditRepo: auditRepo,
		queueRepo: queueRepo,
		drainer:   drainer,
	}
}

// @Summary      Search audit logs
// @Description  Filtered, paginated audit log listing. Requires audit:read scope.
// @Tags         Audit
// @Security     Bearer
// @Produce      json
// @Param        actor_id     query  string  false  "Filter by actor"
// @Param        action       query  string  false  "Filter by action"
// @Param        target_type  query  string  false  "Filter by target type"
// @Param        target_id    query  string  false  "Filter by target ID"
// @Param        start_date   query  string  false  "RFC3339 lower bound (inclusive)"
// @Param        end_date     query  string  false  "RFC3339 upper bound (inclusive)"
// @Param        page         query  int     false  "Page number (default 1)"
// @Param        per_page     query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "logs, pagination"
// @Failure      400  {object}  map[string]interface{}  "Invalid date filter"
// @Router       /api/v1/admin/audit-logs [get]
// ListAuditLogsHandler searches audit logs
// GET /api/v1/admin/audit-logs
func (h *AuditHandlers) ListAuditLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := repositories.AuditFilters{
			ActorID:    optionalQuery(c, "actor_id"),
			Action:     optionalQuery(c, "action"),
			TargetType: optionalQuery(c, "target_type"),
			TargetID:   optionalQuery(c, "target_id"),
		}

		var err error
		if filters.StartDate, err = optionalTimeQuery(c, "start_date"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "start_date must be RFC3339",
				"code":  "VALIDATION_ERROR",
			})
			return
		}
		if filters.EndDate, err = optionalTimeQuery(c, "end_date"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "end_date must be RFC3339",
				"code":  "VALIDATION_ERROR",
			})
			return
		}

		page, perPage := pagination(c)
		logs, total, err := h.auditRepo.ListAuditLogs(c.Request.Context(), filters, perPage, (page-1)*perPage)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audit logs"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"logs": logs,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Get audit log entry
// @Description  Fetch one audit log entry by ID. Requires audit:read scope.
// @Tags         Audit
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Audit log ID"
// @Success      200  {object}  models.AuditLog
// @Failure      404  {object}  map[string]interface{}  "Not found"
// @Router       /api/v1/admin/audit-logs/{id} [get]
// GetAuditLogHandler fetches a single audit log entry
// GET /api/v1/admin/audit-logs/:id
func (h *AuditHandlers) GetAuditLogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		log, err := h.auditRepo.GetAuditLog(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit log"})
			return
		}
		if log == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Audit log not found"})
			return
		}
		c.JSON(http.StatusOK, log)
	}
}

// @Summary      List queued audit entries
// @Description  Entries waiting for retry after failed direct writes, oldest first. Requires audit:read scope.
// @Tags         Audit
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        per_page  query  int  false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "entries, pagination"
// @Router       /api/v1/admin/audit-queue [get]
// ListQueueHandler lists pending audit queue entries
// GET /api/v1/admin/audit-queue
func (h *AuditHandlers) ListQueueHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pagination(c)
		entries, total, err := h.queueRepo.List(c.Request.Context(), perPage, (page-1)*perPage)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audit queue"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"entries": entries,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Drain audit queue now
// @Description  Trigger a drain pass outside the schedule. 409 when a pass is already running. Requires admin scope.
// @Tags         Audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "processed"
// @Failure      409  {object}  map[string]interface{}  "Drain already in progress"
// @Router       /api/v1/admin/audit-queue/process [post]
// ProcessQueueHandler triggers a manual drain pass
// POST /api/v1/admin/audit-queue/process
func (h *AuditHandlers) ProcessQueueHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		processed, err := h.drainer.DrainNow(c.Request.Context())
		if err != nil {
			if errors.Is(err, jobs.ErrDrainInProgress) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Drain failed",
				"code":    "INTERNAL_ERROR",
				"message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"processed": processed,
		})
	}
}

// optionalQuery returns a pointer to the query value, or nil when absent
func optionalQuery(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

// optionalTimeQuery parses an RFC3339 query value when present
func optionalTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// pagination parses page/per_page with the same defaults across listings
func pagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
