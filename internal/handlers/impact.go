package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jrprasath/paperhouse-backend/internal/impact"
	"github.com/jrprasath/paperhouse-backend/internal/logger"
	"github.com/jrprasath/paperhouse-backend/internal/requestdata"
)

type ImpactHandler struct {
	log     *logger.Logger
	engine  *impact.Engine
	ledger  impact.Ledger
	backups impact.BackupManager
}

func NewImpactHandler(log *logger.Logger, engine *impact.Engine, ledger impact.Ledger, backups impact.BackupManager) *ImpactHandler {
	return &ImpactHandler{
		log:     log.With("handler", "ImpactHandler"),
		engine:  engine,
		ledger:  ledger,
		backups: backups,
	}
}

func (ih *ImpactHandler) Get(c *gin.Context) {
	RespondOK(c, ih.engine.Get(c.Request.Context()))
}

var fieldLabels = map[string]string{
	impact.FieldProjectsCompleted: "Projects completed",
	impact.FieldHappyClients:      "Happy clients",
	impact.FieldYearsExperience:   "Years experience",
	impact.FieldOngoingProjects:   "Ongoing projects",
}

// Update validates strictly at the edge: a field that IS present must be a
// non-negative number. The engine underneath stays lenient (absent fields
// keep their value), so only hand-crafted bad requests are rejected here.
func (ih *ImpactHandler) Update(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	var validationErrors []string
	for _, field := range impact.FieldOrder {
		raw, present := body[field]
		if !present || raw == nil {
			continue
		}
		if !usableNumber(raw) {
			validationErrors = append(validationErrors, fieldLabels[field]+" must be a non-negative number")
		}
	}
	if len(validationErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  validationErrors,
		})
		return
	}

	snap, changed, err := ih.engine.Update(c.Request.Context(), body, requestdata.ActorID(c.Request.Context()))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	message := "Impact numbers updated successfully"
	if !changed {
		message = "No usable fields supplied, impact numbers unchanged"
	}
	RespondOK(c, gin.H{"message": message, "data": snap, "changed": changed})
}

func usableNumber(raw any) bool {
	switch v := raw.(type) {
	case float64:
		return v >= 0
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return err == nil && f >= 0
	default:
		return false
	}
}

func (ih *ImpactHandler) Reset(c *gin.Context) {
	snap, err := ih.engine.Reset(c.Request.Context(), requestdata.ActorID(c.Request.Context()))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Impact numbers reset to defaults successfully", "data": snap})
}

func (ih *ImpactHandler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}
	entries, lerr := ih.ledger.List(limit)
	if lerr != nil {
		RespondDomainError(c, lerr)
		return
	}
	RespondOK(c, entries)
}

func (ih *ImpactHandler) Backups(c *gin.Context) {
	ids, err := ih.backups.List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, ids)
}

func (ih *ImpactHandler) CreateBackup(c *gin.Context) {
	id, err := ih.engine.CreateBackup(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Backup created successfully", "backup": id})
}

func (ih *ImpactHandler) Restore(c *gin.Context) {
	backupID := c.Param("backup")
	snap, err := ih.engine.RestoreFrom(c.Request.Context(), backupID, requestdata.ActorID(c.Request.Context()))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Backup restored successfully", "data": snap})
}

// Stats derives aggregate numbers from the default history window, the same
// view the history endpoint shows by default.
func (ih *ImpactHandler) Stats(c *gin.Context) {
	entries, err := ih.ledger.List(impact.DefaultHistoryLimit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, impact.ComputeStatistics(entries))
}
