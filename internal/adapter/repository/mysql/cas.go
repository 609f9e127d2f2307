package mysql

import (
	"context"
	"errors"
	"fmt"

	"credit-voucher-engine/internal/domain/errs"

	"gorm.io/gorm"
)

// casUpdate writes every column of model only if the row still carries the
// version the caller read. On success *version is bumped in place.
func casUpdate(ctx context.Context, db *gorm.DB, model any, version *int64) error {
	prev := *version
	*version = prev + 1
	res := db.WithContext(ctx).
		Model(model).
		Where("version = ?", prev).
		Select("*").
		Omit("created_at").
		Updates(model)
	if res.Error != nil {
		*version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		*version = prev
		return errs.ErrVersionConflict
	}
	return nil
}

func notFound(err error, what, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, key, errs.ErrNotFound)
	}
	return err
}
