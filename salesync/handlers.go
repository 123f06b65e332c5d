package salesync

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/varejodata/salesync_backend/config"
	"github.com/varejodata/salesync_backend/models"
	"github.com/varejodata/salesync_backend/utils"
	"gorm.io/gorm"
)

// TriggerDailyHandler queues a manual daily sync over an explicit range.
// Used for backfill and correction; validation happens before any row is
// written.
func TriggerDailyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DailySyncRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}

		start, err := utils.ParseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be YYYY-MM-DD"})
			return
		}
		end, err := utils.ParseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be YYYY-MM-DD"})
			return
		}
		if start.After(end) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidRange.Error()})
			return
		}

		queueRun(c, models.SyncRun{
			Kind:        models.SyncKindDaily,
			Status:      models.SyncRunStatusQueued,
			TriggeredBy: models.SyncTriggeredManual,
			RangeStart:  req.StartDate,
			RangeEnd:    req.EndDate,
		})
	}
}

func TriggerMonthlyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MonthlySyncRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}

		start, err := utils.ParseYearMonth(req.StartMonth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startMonth must be YYYY-MM"})
			return
		}
		end, err := utils.ParseYearMonth(req.EndMonth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "endMonth must be YYYY-MM"})
			return
		}
		if start.FirstDay().After(end.FirstDay()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidRange.Error()})
			return
		}

		queueRun(c, models.SyncRun{
			Kind:        models.SyncKindMonthly,
			Status:      models.SyncRunStatusQueued,
			TriggeredBy: models.SyncTriggeredManual,
			RangeStart:  req.StartMonth,
			RangeEnd:    req.EndMonth,
		})
	}
}

func TriggerYearlyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req YearlySyncRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		if req.Year < 2000 || req.Year > 2200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidYear.Error()})
			return
		}

		year := strconv.Itoa(req.Year)
		queueRun(c, models.SyncRun{
			Kind:        models.SyncKindYearly,
			Status:      models.SyncRunStatusQueued,
			TriggeredBy: models.SyncTriggeredManual,
			RangeStart:  year,
			RangeEnd:    year,
		})
	}
}

// ScheduledDailyHandler is invoked by the cron scheduler once per day. It
// queues yesterday's daily sync with cascade, so the months and years the
// window touches are re-rolled after it, never concurrently with it.
func ScheduledDailyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		yesterday := utils.Yesterday(os.Getenv("BUSINESS_TIMEZONE")).Format(utils.DateLayout)
		queueRun(c, models.SyncRun{
			Kind:        models.SyncKindDaily,
			Status:      models.SyncRunStatusQueued,
			TriggeredBy: models.SyncTriggeredScheduled,
			RangeStart:  yesterday,
			RangeEnd:    yesterday,
			Cascade:     true,
		})
	}
}

// ScheduledWeeklyHealHandler re-runs the last 7 days of daily sync. This is
// the retry mechanism for transient upstream gaps; idempotent import makes
// the re-run safe.
func ScheduledWeeklyHealHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		end := utils.Yesterday(os.Getenv("BUSINESS_TIMEZONE"))
		start := end.AddDate(0, 0, -6)
		queueRun(c, models.SyncRun{
			Kind:        models.SyncKindDaily,
			Status:      models.SyncRunStatusQueued,
			TriggeredBy: models.SyncTriggeredScheduled,
			RangeStart:  start.Format(utils.DateLayout),
			RangeEnd:    end.Format(utils.DateLayout),
			Cascade:     true,
		})
	}
}

// ScheduledMonthCloseHandler runs on the first day of a month and re-rolls
// the month that just closed. The rollup itself is the same algorithm as
// the progressive mid-month runs; only the trigger date differs.
func ScheduledMonthCloseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		yesterday := utils.Yesterday(os.Getenv("BUSINESS_TIMEZONE"))
		closed := utils.YearMonth{Year: yesterday.Year(), Month: yesterday.Month()}
		queueRun(c, models.SyncRun{
			Kind:        models.SyncKindMonthly,
			Status:      models.SyncRunStatusQueued,
			TriggeredBy: models.SyncTriggeredScheduled,
			RangeStart:  closed.String(),
			RangeEnd:    closed.String(),
			Cascade:     true,
		})
	}
}

func SyncHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		db := config.GetDB().WithContext(c.Request.Context())
		var runs []models.SyncRun
		query := db.Order("id desc").Limit(limit)
		if kind := c.Query("kind"); kind != "" {
			query = query.Where("kind = ?", kind)
		}
		if err := query.Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]SyncRunResponse, 0, len(runs))
		for _, run := range runs {
			items = append(items, mapRunToResponse(run))
		}
		c.JSON(http.StatusOK, SyncHistoryResponse{Items: items})
	}
}

func SyncRunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		db := config.GetDB().WithContext(c.Request.Context())
		var run models.SyncRun
		if err := db.Where("id = ?", id).Take(&run).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var itemErrs []models.SyncItemError
		if err := db.Where("sync_run_id = ?", run.ID).Order("id desc").Find(&itemErrs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, SyncRunDetailResponse{
			SyncRunResponse: mapRunToResponse(run),
			Errors:          mapItemErrors(itemErrs),
		})
	}
}

func queueRun(c *gin.Context, run models.SyncRun) {
	db := config.GetDB().WithContext(c.Request.Context())
	if err := db.Create(&run).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	_ = PublishSyncRun(c.Request.Context(), run.ID)
	c.JSON(http.StatusOK, gin.H{"id": run.ID})
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func mapRunToResponse(run models.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:          run.ID,
		Kind:        run.Kind,
		Status:      run.Status,
		TriggeredBy: run.TriggeredBy,
		RangeStart:  run.RangeStart,
		RangeEnd:    run.RangeEnd,
		StartedAt:   formatTime(run.StartedAt),
		FinishedAt:  formatTime(run.FinishedAt),
		DurationMs:  run.DurationMs,
		ErrorCount:  run.ErrorCount,
		Stats:       run.StatsJSON,
	}
}

func mapItemErrors(itemErrs []models.SyncItemError) []SyncItemErrorResponse {
	out := make([]SyncItemErrorResponse, 0, len(itemErrs))
	for _, e := range itemErrs {
		out = append(out, SyncItemErrorResponse{
			ID:         e.ID,
			SaleCode:   e.SaleCode,
			ProductRef: e.ProductRef,
			ItemSeq:    e.ItemSeq,
			ErrorCode:  e.ErrorCode,
			Message:    e.Message,
		})
	}
	return out
}
