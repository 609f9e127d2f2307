package mysql

import (
	"testing"

	"credit-voucher-engine/internal/testutil/sqlitedb"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return sqlitedb.Open(t)
}
