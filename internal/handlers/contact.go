package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jrprasath/paperhouse-backend/internal/logger"
	pkgerrors "github.com/jrprasath/paperhouse-backend/internal/pkg/errors"
	"github.com/jrprasath/paperhouse-backend/internal/services"
)

type ContactHandler struct {
	log            *logger.Logger
	contactService services.ContactService
}

func NewContactHandler(log *logger.Logger, contactService services.ContactService) *ContactHandler {
	return &ContactHandler{log: log.With("handler", "ContactHandler"), contactService: contactService}
}

func (ch *ContactHandler) Submit(c *gin.Context) {
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	contact, emailSent, err := ch.contactService.Submit(c.Request.Context(), services.SubmitContactInput{
		Name:      body.Name,
		Email:     body.Email,
		Phone:     body.Phone,
		Subject:   body.Subject,
		Message:   body.Message,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Referrer:  c.GetHeader("Referer"),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	message := "Message sent successfully"
	if !emailSent {
		message = "Message saved successfully but email notification failed"
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   message,
		"id":        contact.ID,
		"saved":     true,
		"emailSent": emailSent,
	})
}

func (ch *ContactHandler) List(c *gin.Context) {
	messages, err := ch.contactService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, messages)
}

func (ch *ContactHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", pkgerrors.ErrNotFound)
		return
	}
	message, err := ch.contactService.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, message)
}

func (ch *ContactHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", pkgerrors.ErrNotFound)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	message, err := ch.contactService.UpdateStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, message)
}

func (ch *ContactHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", pkgerrors.ErrNotFound)
		return
	}
	if err := ch.contactService.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Message deleted successfully"})
}
