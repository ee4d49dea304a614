package db

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS saved_locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		country TEXT NOT NULL DEFAULT '',
		admin1 TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'auto',
		created_at TIMESTAMP NOT NULL,
		UNIQUE (user_id, lat, lon)
	)`,
	`CREATE TABLE IF NOT EXISTS alert_subscriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		country TEXT NOT NULL DEFAULT '',
		admin1 TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'auto',
		min_severity TEXT NOT NULL DEFAULT 'info',
		types TEXT NOT NULL,
		last_sent_at TIMESTAMP NULL,
		last_alert_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		UNIQUE (user_id, lat, lon)
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		unit TEXT NOT NULL DEFAULT 'C',
		theme TEXT NOT NULL DEFAULT 'light',
		time_format TEXT NOT NULL DEFAULT '24',
		updated_at TIMESTAMP NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS saved_locations (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		country TEXT NOT NULL DEFAULT '',
		admin1 TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'auto',
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, lat, lon)
	)`,
	`CREATE TABLE IF NOT EXISTS alert_subscriptions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		country TEXT NOT NULL DEFAULT '',
		admin1 TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'auto',
		min_severity TEXT NOT NULL DEFAULT 'info',
		types TEXT NOT NULL,
		last_sent_at TIMESTAMPTZ NULL,
		last_alert_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, lat, lon)
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		unit TEXT NOT NULL DEFAULT 'C',
		theme TEXT NOT NULL DEFAULT 'light',
		time_format TEXT NOT NULL DEFAULT '24',
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}
