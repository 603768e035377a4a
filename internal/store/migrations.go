package store

const schema = `
CREATE TABLE IF NOT EXISTS scans (
    scan_id             TEXT PRIMARY KEY,
    score               INTEGER NOT NULL DEFAULT 0,
    llm_recall          INTEGER NOT NULL DEFAULT 0,
    wikipedia_presence  INTEGER NOT NULL DEFAULT 0,
    platform_visibility INTEGER NOT NULL DEFAULT 0,
    web_presence        INTEGER NOT NULL DEFAULT 0,
    created_at          TEXT NOT NULL,
    metadata            TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at);
CREATE INDEX IF NOT EXISTS idx_scans_score ON scans(score);
`
