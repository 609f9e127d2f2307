package sqlitedb

import (
	"testing"

	"credit-voucher-engine/internal/domain/loan"
	"credit-voucher-engine/internal/domain/voucher"
)

func TestOpen_MigratesLedger(t *testing.T) {
	db := Open(t)
	for _, m := range []any{&loan.Loan{}, &voucher.Voucher{}} {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("table for %T missing", m)
		}
	}
}

func TestOpen_IsolatedPerTest(t *testing.T) {
	db := Open(t)
	var n int64
	if err := db.Model(&loan.Loan{}).Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("fresh db not empty: n=%d err=%v", n, err)
	}
}
