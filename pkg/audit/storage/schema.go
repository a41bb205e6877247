package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    request_time TIMESTAMP NOT NULL,
    recorded_time TIMESTAMP NOT NULL,

    model TEXT NOT NULL,
    provider TEXT NOT NULL,
    upstream_model TEXT NOT NULL,
    stream BOOLEAN NOT NULL,

    token_description TEXT,
    remote_addr TEXT,
    user_agent TEXT,

    status_code INTEGER,
    latency_ms INTEGER,

    prompt_tokens INTEGER,
    completion_tokens INTEGER,
    total_tokens INTEGER,

    error TEXT,
    error_type TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_request_time ON audit_records(request_time);
CREATE INDEX IF NOT EXISTS idx_audit_provider ON audit_records(provider);
CREATE INDEX IF NOT EXISTS idx_audit_model ON audit_records(model);
CREATE INDEX IF NOT EXISTS idx_audit_token_description ON audit_records(token_description);
CREATE INDEX IF NOT EXISTS idx_audit_request_id ON audit_records(request_id);
`

// InsertSchemaVersion records the schema version in the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
