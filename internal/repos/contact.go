package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jrprasath/paperhouse-backend/internal/logger"
	pkgerrors "github.com/jrprasath/paperhouse-backend/internal/pkg/errors"
	"github.com/jrprasath/paperhouse-backend/internal/types"
)

type ContactRepo interface {
	Create(ctx context.Context, tx *gorm.DB, contact *types.Contact) (*types.Contact, error)
	List(ctx context.Context, tx *gorm.DB, status string) ([]*types.Contact, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contact, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) (*types.Contact, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type contactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return &contactRepo{db: db, log: baseLog.With("repo", "ContactRepo")}
}

func (cr *contactRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cr.db
}

func (cr *contactRepo) Create(ctx context.Context, tx *gorm.DB, contact *types.Contact) (*types.Contact, error) {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	if contact.Status == "" {
		contact.Status = types.ContactStatusNew
	}
	if err := cr.conn(tx).WithContext(ctx).Create(contact).Error; err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

func (cr *contactRepo) List(ctx context.Context, tx *gorm.DB, status string) ([]*types.Contact, error) {
	var results []*types.Contact
	query := cr.conn(tx).WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return results, nil
}

func (cr *contactRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contact, error) {
	var contact types.Contact
	err := cr.conn(tx).WithContext(ctx).Where("id = ?", id).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contact %s", pkgerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &contact, nil
}

func (cr *contactRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) (*types.Contact, error) {
	conn := cr.conn(tx).WithContext(ctx)
	res := conn.Model(&types.Contact{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("update contact status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: contact %s", pkgerrors.ErrNotFound, id)
	}
	return cr.GetByID(ctx, tx, id)
}

func (cr *contactRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := cr.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.Contact{})
	if res.Error != nil {
		return fmt.Errorf("delete contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: contact %s", pkgerrors.ErrNotFound, id)
	}
	return nil
}
