package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS identities (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255),
		metadata JSONB NOT NULL DEFAULT '{}',
		provider VARCHAR(50) NOT NULL DEFAULT 'email',
		email_confirmed_at TIMESTAMP WITH TIME ZONE,
		last_sign_in_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_identities_email ON identities (LOWER(email))`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		identity_id UUID NOT NULL REFERENCES identities(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_identity_id ON refresh_tokens(identity_id)`,

	// A profile id is always an identity id. Deleting the identity removes the profile.
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY REFERENCES identities(id) ON DELETE CASCADE,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL CHECK (role IN ('admin', 'sales_rep', 'data_entry')),
		status VARCHAR(20) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
		phone VARCHAR(50),
		allowed_provinces TEXT[] NOT NULL DEFAULT '{}',
		allowed_brands TEXT[] NOT NULL DEFAULT '{}',
		avatar_url VARCHAR(500),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_profiles_role ON profiles(role)`,

	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		company VARCHAR(255),
		email VARCHAR(255),
		phone VARCHAR(50),
		province VARCHAR(100),
		brand VARCHAR(100),
		stage VARCHAR(30) NOT NULL DEFAULT 'lead',
		value NUMERIC(14, 2) NOT NULL DEFAULT 0,
		owner_id UUID REFERENCES profiles(id) ON DELETE SET NULL,
		notes TEXT,
		created_by UUID REFERENCES profiles(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_clients_owner_id ON clients(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_stage ON clients(stage)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_province ON clients(province)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_brand ON clients(brand)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
