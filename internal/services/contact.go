package services

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jrprasath/paperhouse-backend/internal/logger"
	"github.com/jrprasath/paperhouse-backend/internal/mailer"
	pkgerrors "github.com/jrprasath/paperhouse-backend/internal/pkg/errors"
	"github.com/jrprasath/paperhouse-backend/internal/repos"
	"github.com/jrprasath/paperhouse-backend/internal/types"
	"github.com/jrprasath/paperhouse-backend/internal/utils"
)

type SubmitContactInput struct {
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	IPAddress string
	UserAgent string
	Referrer  string
}

type ContactService interface {
	// Submit persists the message and sends the notification emails. The
	// bool reports whether the admin notification went out; a mail failure
	// never loses the stored message.
	Submit(ctx context.Context, in SubmitContactInput) (*types.Contact, bool, error)
	List(ctx context.Context, status string) ([]*types.Contact, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Contact, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*types.Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactService struct {
	db          *gorm.DB
	log         *logger.Logger
	contactRepo repos.ContactRepo
	mail        mailer.Client
	adminEmail  string
}

// NewContactService wires the contact pipeline. mail may be nil when no
// mail provider is configured; submissions are then stored without
// notification.
func NewContactService(db *gorm.DB, log *logger.Logger, contactRepo repos.ContactRepo, mail mailer.Client) ContactService {
	return &contactService{
		db:          db,
		log:         log.With("service", "ContactService"),
		contactRepo: contactRepo,
		mail:        mail,
		adminEmail:  utils.GetEnv("EMAIL_TO", "", nil),
	}
}

func (cs *contactService) Submit(ctx context.Context, in SubmitContactInput) (*types.Contact, bool, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	if in.Name == "" || in.Email == "" || in.Phone == "" || in.Message == "" {
		return nil, false, fmt.Errorf("%w: name, email, phone and message are required", pkgerrors.ErrInvalidArgument)
	}

	contact := &types.Contact{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   strings.TrimSpace(in.Subject),
		Message:   in.Message,
		IPAddress: in.IPAddress,
		Meta:      contactMeta(in),
	}
	contact, err := cs.contactRepo.Create(ctx, nil, contact)
	if err != nil {
		return nil, false, err
	}

	emailSent := cs.notifyAdmin(ctx, contact)
	if emailSent {
		// Auto-reply only after the admin copy went out, like the rest of
		// the pipeline it is best-effort.
		cs.sendAutoReply(ctx, contact)
	}
	return contact, emailSent, nil
}

func contactMeta(in SubmitContactInput) datatypes.JSON {
	meta := map[string]string{}
	if in.UserAgent != "" {
		meta["userAgent"] = in.UserAgent
	}
	if in.Referrer != "" {
		meta["referrer"] = in.Referrer
	}
	if len(meta) == 0 {
		return nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func (cs *contactService) notifyAdmin(ctx context.Context, contact *types.Contact) bool {
	if cs.mail == nil || cs.adminEmail == "" {
		cs.log.Warn("Mail not configured, skipping admin notification", "contact_id", contact.ID)
		return false
	}
	subject := "New Contact Form Submission - PaperHouse Construction"
	if contact.Subject != "" {
		subject = "New Contact Form Submission: " + contact.Subject
	}
	msg := mailer.Message{
		To:      mailer.Address{Email: cs.adminEmail},
		ReplyTo: &mailer.Address{Email: contact.Email, Name: contact.Name},
		Subject: subject,
		HTML:    adminNotificationHTML(contact),
	}
	if err := cs.mail.Send(ctx, msg); err != nil {
		cs.log.Error("Failed to send admin notification", "contact_id", contact.ID, "error", err)
		return false
	}
	return true
}

func (cs *contactService) sendAutoReply(ctx context.Context, contact *types.Contact) {
	msg := mailer.Message{
		To:      mailer.Address{Email: contact.Email, Name: contact.Name},
		Subject: "Thank you for contacting PaperHouse Construction!",
		HTML:    autoReplyHTML(contact),
	}
	if err := cs.mail.Send(ctx, msg); err != nil {
		cs.log.Warn("Failed to send auto-reply", "contact_id", contact.ID, "error", err)
	}
}

func adminNotificationHTML(contact *types.Contact) string {
	var b strings.Builder
	b.WriteString("<h2>New Contact Form Submission</h2>")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>", html.EscapeString(contact.Name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>", html.EscapeString(contact.Email))
	fmt.Fprintf(&b, "<p><strong>Phone:</strong> %s</p>", html.EscapeString(contact.Phone))
	if contact.Subject != "" {
		fmt.Fprintf(&b, "<p><strong>Subject:</strong> %s</p>", html.EscapeString(contact.Subject))
	}
	b.WriteString("<p><strong>Message:</strong></p>")
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(contact.Message))
	b.WriteString("<hr><p><small>This email was sent from the PaperHouse Construction website contact form.</small></p>")
	return b.String()
}

func autoReplyHTML(contact *types.Contact) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #2563eb;">Thank you for reaching out to PaperHouse Construction!</h2>`)
	fmt.Fprintf(&b, "<p>Dear %s,</p>", html.EscapeString(contact.Name))
	b.WriteString("<p>We have received your message and appreciate you taking the time to contact us. Our team will review your inquiry and get back to you shortly.</p>")
	b.WriteString("<p>Here's a summary of your message:</p>")
	b.WriteString(`<div style="background-color: #f3f4f6; padding: 15px; border-radius: 5px; margin: 15px 0;">`)
	b.WriteString("<p><strong>Your Message:</strong></p>")
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(contact.Message))
	b.WriteString("</div>")
	b.WriteString("<p>Best regards,<br>The PaperHouse Construction Team</p>")
	b.WriteString(`<hr style="margin: 20px 0;">`)
	b.WriteString(`<p style="color: #6b7280; font-size: 12px;">This is an automated response. Please do not reply to this email.</p>`)
	b.WriteString("</div>")
	return b.String()
}

func (cs *contactService) List(ctx context.Context, status string) ([]*types.Contact, error) {
	if status != "" && !types.ValidContactStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", pkgerrors.ErrInvalidArgument, status)
	}
	return cs.contactRepo.List(ctx, nil, status)
}

func (cs *contactService) Get(ctx context.Context, id uuid.UUID) (*types.Contact, error) {
	return cs.contactRepo.GetByID(ctx, nil, id)
}

func (cs *contactService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*types.Contact, error) {
	if !types.ValidContactStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", pkgerrors.ErrInvalidArgument, status)
	}
	return cs.contactRepo.UpdateStatus(ctx, nil, id, status)
}

func (cs *contactService) Delete(ctx context.Context, id uuid.UUID) error {
	return cs.contactRepo.Delete(ctx, nil, id)
}
