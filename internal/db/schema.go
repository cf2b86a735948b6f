package db

const schemaSQL = `
-- ===========================================================================
-- DEVICE REGISTRY
-- ===========================================================================

CREATE TABLE IF NOT EXISTS devices (
  device_id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL DEFAULT '',
  ip_address TEXT NOT NULL DEFAULT '',
  account_id TEXT NOT NULL DEFAULT 'unpaired',
  first_seen_at TEXT NOT NULL,
  last_seen_at TEXT NOT NULL,
  revision INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_devices_account ON devices(account_id);

-- ===========================================================================
-- STEREO PAIR GROUPS
-- ===========================================================================

CREATE TABLE IF NOT EXISTS device_groups (
  group_id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  master_device_id TEXT NOT NULL,
  name TEXT NOT NULL,
  left_device_id TEXT NOT NULL,
  right_device_id TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  revision INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_groups_account ON device_groups(account_id);
CREATE INDEX IF NOT EXISTS idx_groups_left ON device_groups(left_device_id);
CREATE INDEX IF NOT EXISTS idx_groups_right ON device_groups(right_device_id);

-- ===========================================================================
-- PRESETS
-- ===========================================================================

CREATE TABLE IF NOT EXISTS presets (
  preset_id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  device_id TEXT NOT NULL,
  button_number INTEGER NOT NULL,
  location TEXT NOT NULL,
  source_id TEXT NOT NULL,
  content_item_type TEXT NOT NULL,
  container_art TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  revision INTEGER NOT NULL DEFAULT 1
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_presets_slot ON presets(account_id, device_id, button_number);
CREATE INDEX IF NOT EXISTS idx_presets_content ON presets(account_id, device_id, location, source_id, content_item_type);

-- ===========================================================================
-- RECENTS
-- ===========================================================================

CREATE TABLE IF NOT EXISTS recents (
  recent_id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  device_id TEXT NOT NULL,
  location TEXT NOT NULL,
  source_id TEXT NOT NULL,
  content_item_type TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  last_played_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_recents_dedup ON recents(account_id, location, source_id);
CREATE INDEX IF NOT EXISTS idx_recents_account_played ON recents(account_id, last_played_at);

-- ===========================================================================
-- ACCOUNT SNAPSHOTS (opaque upstream documents, cached verbatim)
-- ===========================================================================

CREATE TABLE IF NOT EXISTS account_snapshots (
  account_id TEXT PRIMARY KEY,
  raw_document BLOB NOT NULL,
  fetched_at TEXT NOT NULL
);

-- ===========================================================================
-- MUSIC PROVIDER CREDENTIALS (append-only; newest row per user wins)
-- ===========================================================================

CREATE TABLE IF NOT EXISTS provider_credentials (
  credential_id TEXT PRIMARY KEY,
  external_user_id TEXT NOT NULL,
  display_name TEXT NOT NULL DEFAULT '',
  refresh_token TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_credentials_user ON provider_credentials(external_user_id, created_at);
`
