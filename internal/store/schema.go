package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS results (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    player               TEXT NOT NULL,
    level                INTEGER NOT NULL,
    fingerprint          TEXT NOT NULL,
    policy               TEXT NOT NULL,
    elapsed_secs         INTEGER NOT NULL,
    capacity             REAL NOT NULL,
    emissions            REAL NOT NULL,
    spend                REAL NOT NULL,
    remaining            REAL NOT NULL,
    capacity_met         INTEGER NOT NULL DEFAULT 0,
    emissions_met        INTEGER NOT NULL DEFAULT 0,
    budget_met           INTEGER NOT NULL DEFAULT 0,
    completed_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_player ON results(player);
CREATE INDEX IF NOT EXISTS idx_results_level ON results(level);
`
