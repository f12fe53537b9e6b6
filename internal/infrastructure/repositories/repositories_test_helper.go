package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createPaymentTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payment_requests (
		payment_id TEXT PRIMARY KEY,
		merchant_id TEXT NOT NULL,
		merchant_address TEXT NOT NULL,
		token_symbol TEXT NOT NULL,
		token_address TEXT NOT NULL,
		token_amount TEXT NOT NULL,
		fiat_amount TEXT NOT NULL,
		fiat_currency TEXT NOT NULL,
		concept TEXT,
		order_id TEXT,
		expires_at DATETIME NOT NULL,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		merchant_id TEXT NOT NULL,
		status TEXT NOT NULL,
		blockchain_tx_hash TEXT,
		confirmation_count INTEGER NOT NULL DEFAULT 0,
		confirmed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createChainEventTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE processed_chain_events (
		tx_hash TEXT NOT NULL,
		log_index INTEGER NOT NULL,
		payment_id TEXT,
		block_number INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		processed_at DATETIME,
		PRIMARY KEY (tx_hash, log_index)
	);`)
	mustExec(t, db, `CREATE TABLE chain_checkpoints (
		contract_address TEXT PRIMARY KEY,
		last_processed_block INTEGER NOT NULL,
		updated_at DATETIME
	);`)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE merchant_wallets (
		user_id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_check TEXT NOT NULL,
		encrypted_private_key TEXT NOT NULL,
		public_key TEXT NOT NULL,
		address TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
