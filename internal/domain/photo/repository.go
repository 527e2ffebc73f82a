package photo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, p *Photo) error
	ListAll(ctx context.Context) ([]*Photo, error)
	GetByID(ctx context.Context, id int64) (*Photo, error)
	GetByToken(ctx context.Context, token string) (*Photo, error)
	IncrementDownloadCount(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	ListFilenames(ctx context.Context) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Migrate creates or updates the photos table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Photo{})
}

func (r *repository) Create(ctx context.Context, p *Photo) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return wrapErr("insert photo", err)
	}
	return nil
}

// ListAll returns every photo, newest upload first. The id tie-break keeps
// photos uploaded within the same clock tick in insertion order.
func (r *repository) ListAll(ctx context.Context) ([]*Photo, error) {
	photos := make([]*Photo, 0)
	err := r.db.WithContext(ctx).Order("upload_date DESC").Order("id DESC").Find(&photos).Error
	if err != nil {
		return nil, wrapErr("list photos", err)
	}
	return photos, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Photo, error) {
	var p Photo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, wrapErr("get photo by id", err)
	}
	return &p, nil
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Photo, error) {
	var p Photo
	if err := r.db.WithContext(ctx).Where("download_token = ?", token).First(&p).Error; err != nil {
		return nil, wrapErr("get photo by token", err)
	}
	return &p, nil
}

func (r *repository) IncrementDownloadCount(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&Photo{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if res.Error != nil {
		return wrapErr("increment download count", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Photo{})
	if res.Error != nil {
		return wrapErr("delete photo", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListFilenames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&Photo{}).Pluck("filename", &names).Error; err != nil {
		return nil, wrapErr("list filenames", err)
	}
	return names, nil
}

func wrapErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s: unique constraint %s violated", ErrRepository, op, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: %s: %w", ErrRepository, op, err)
}
