package mysql

import (
	"p2p-lending-ledger/internal/domain/escrow"
	"p2p-lending-ledger/internal/domain/event"
	"p2p-lending-ledger/internal/domain/loan"

	"gorm.io/gorm"
)

// AutoMigrate creates the ledger schema: loans, escrow_entries, ledger_events
// and the id counter table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&counter{},
		&loan.LoanRecord{},
		&escrow.Entry{},
		&event.LedgerEvent{},
	)
}
