package postgres

import (
	migrate "github.com/rubenv/sql-migrate"
)

// Unsigned 64-bit quantities are stored as NUMERIC(20, 0).
var migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "0001_agreements",
			Up: []string{`
				CREATE TABLE agreements (
					id                           NUMERIC(20, 0) PRIMARY KEY,
					sale_deed_text               TEXT NOT NULL DEFAULT '',
					legal_doc_text               TEXT NOT NULL DEFAULT '',
					property_doc_text            TEXT NOT NULL DEFAULT '',
					property_price               NUMERIC(20, 0) NOT NULL DEFAULT 0,
					mogul_share_basis_points     NUMERIC(20, 0) NOT NULL DEFAULT 0,
					mogul_share_units            NUMERIC(20, 0) NOT NULL DEFAULT 0,
					crowdsale_share_basis_points NUMERIC(20, 0) NOT NULL DEFAULT 0,
					crowdsale_share_units        NUMERIC(20, 0) NOT NULL DEFAULT 0,
					owner_retains_basis_points   NUMERIC(20, 0) NOT NULL DEFAULT 0,
					owner_retains_units          NUMERIC(20, 0) NOT NULL DEFAULT 0,
					max_supply                   NUMERIC(20, 0) NOT NULL DEFAULT 0,
					property_owner               TEXT NOT NULL,
					signed_by_owner              BOOLEAN NOT NULL DEFAULT FALSE,
					signed_by_mogul              BOOLEAN NOT NULL DEFAULT FALSE,
					is_initiated                 BOOLEAN NOT NULL DEFAULT FALSE,
					fee_paid                     BOOLEAN NOT NULL DEFAULT FALSE,
					is_completed                 BOOLEAN NOT NULL DEFAULT FALSE
				)`,
			},
			Down: []string{`DROP TABLE agreements`},
		},
		{
			Id: "0002_estate_tokens",
			Up: []string{`
				CREATE TABLE estate_tokens (
					id                       NUMERIC(20, 0) PRIMARY KEY,
					uri                      TEXT NOT NULL,
					is_listed                BOOLEAN NOT NULL,
					is_actively_listed       BOOLEAN NOT NULL,
					burn_deadline            TIMESTAMPTZ NULL,
					delisted_at              TIMESTAMPTZ NULL,
					penalty_percent_per_week NUMERIC(20, 0) NOT NULL DEFAULT 0,
					total_supply             NUMERIC(20, 0) NOT NULL DEFAULT 0
				)`, `
				CREATE TABLE token_balances (
					holder   TEXT NOT NULL,
					token_id NUMERIC(20, 0) NOT NULL REFERENCES estate_tokens (id),
					amount   NUMERIC(20, 0) NOT NULL CHECK (amount >= 0),
					PRIMARY KEY (holder, token_id)
				)`, `
				CREATE TABLE token_approvals (
					holder   TEXT NOT NULL,
					operator TEXT NOT NULL,
					PRIMARY KEY (holder, operator)
				)`,
			},
			Down: []string{
				`DROP TABLE token_approvals`,
				`DROP TABLE token_balances`,
				`DROP TABLE estate_tokens`,
			},
		},
		{
			Id: "0003_settings",
			Up: []string{`
				CREATE TABLE deed_settings (
					id             SMALLINT PRIMARY KEY CHECK (id = 1),
					funds_asset    TEXT NOT NULL,
					platform_fee   NUMERIC NOT NULL,
					payout_address TEXT NOT NULL
				)`, `
				CREATE TABLE token_settings (
					id             SMALLINT PRIMARY KEY CHECK (id = 1),
					vesting_pool   TEXT NOT NULL,
					crowdsale_pool TEXT NOT NULL,
					paused         BOOLEAN NOT NULL DEFAULT FALSE
				)`,
			},
			Down: []string{
				`DROP TABLE token_settings`,
				`DROP TABLE deed_settings`,
			},
		},
	},
}
