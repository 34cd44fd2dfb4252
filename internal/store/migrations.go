package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	nickname    TEXT NOT NULL DEFAULT '',
	trust_score INTEGER NOT NULL DEFAULT 100
);

CREATE TABLE IF NOT EXISTS meetups (
	id             TEXT PRIMARY KEY,
	host_id        TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'recruiting',
	scheduled_at   DATETIME NOT NULL,
	duration_hours INTEGER NOT NULL DEFAULT 3,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS participants (
	meetup_id       TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	approval_status TEXT NOT NULL DEFAULT 'pending',
	attended        INTEGER NOT NULL DEFAULT 0,
	no_show         INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (meetup_id, user_id)
);

CREATE TABLE IF NOT EXISTS check_ins (
	meetup_id  TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	confirmed  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (meetup_id, user_id)
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	type       TEXT NOT NULL,
	meetup_id  TEXT,
	title      TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	is_read    INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS device_tokens (
	user_id    TEXT NOT NULL,
	token      TEXT NOT NULL,
	platform   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, token)
);

CREATE INDEX IF NOT EXISTS idx_meetups_status ON meetups(status);
CREATE INDEX IF NOT EXISTS idx_meetups_scheduled_at ON meetups(scheduled_at);
CREATE INDEX IF NOT EXISTS idx_participants_user ON participants(user_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);
CREATE INDEX IF NOT EXISTS idx_notifications_meetup_type ON notifications(meetup_id, type);
CREATE INDEX IF NOT EXISTS idx_device_tokens_user ON device_tokens(user_id);
CREATE INDEX IF NOT EXISTS idx_device_tokens_token ON device_tokens(token);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
