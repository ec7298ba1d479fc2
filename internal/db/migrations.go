package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('ADMIN', 'CUSTOMER', 'CARRIER');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'task_status') THEN
			CREATE TYPE task_status AS ENUM ('NEW', 'PLANNED', 'IN_PROGRESS', 'DELIVERED', 'CANCELLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'bid_status') THEN
			CREATE TYPE bid_status AS ENUM ('PENDING', 'ACCEPTED', 'REJECTED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		role user_role NOT NULL,
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users (email);`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		pickup VARCHAR(500),
		dropoff VARCHAR(500),
		scheduled_at TIMESTAMPTZ,
		price NUMERIC(12,2),
		status task_status NOT NULL DEFAULT 'NEW',
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		notes VARCHAR(1000),
		is_published BOOLEAN NOT NULL DEFAULT TRUE,
		visible_after TIMESTAMPTZ,
		requires_activation BOOLEAN NOT NULL DEFAULT FALSE,
		customer_id BIGINT REFERENCES users(id),
		carrier_id BIGINT REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks (status);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_customer_id ON tasks (customer_id) WHERE customer_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_carrier_id ON tasks (carrier_id) WHERE carrier_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS bids (
		id BIGSERIAL PRIMARY KEY,
		task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		carrier_id BIGINT NOT NULL REFERENCES users(id),
		amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
		message VARCHAR(500),
		status bid_status NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_bids_task_carrier ON bids (task_id, carrier_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bids_status ON bids (status);`,
	`CREATE TABLE IF NOT EXISTS task_carrier_whitelist (
		task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		carrier_id BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (task_id, carrier_id)
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
