package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"automailer/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS campaigns (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  mode TEXT NOT NULL,
  subject TEXT,
  sourceRef TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'running',
  dropId INTEGER,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(dropId) REFERENCES drops(id)
);

CREATE TABLE IF NOT EXISTS contacts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  campaignId INTEGER NOT NULL,
  rowNo INTEGER NOT NULL,
  name TEXT NOT NULL,
  address TEXT,
  mailingLines TEXT,
  zip TEXT,
  cityStateZip TEXT,
  saleDate TEXT,
  salePrice REAL NOT NULL DEFAULT 0,
  mode TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(campaignId, rowNo),
  FOREIGN KEY(campaignId) REFERENCES campaigns(id)
);
CREATE INDEX IF NOT EXISTS idx_contacts_campaign ON contacts(campaignId);

CREATE TABLE IF NOT EXISTS skips (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  campaignId INTEGER NOT NULL,
  rowNo INTEGER NOT NULL,
  reason TEXT NOT NULL,
  detail TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(campaignId) REFERENCES campaigns(id)
);

CREATE TABLE IF NOT EXISTS drops (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS clients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  externalId TEXT UNIQUE,
  name TEXT NOT NULL,
  mailingAddress TEXT NOT NULL,
  updatedAt TEXT,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(name);

CREATE TABLE IF NOT EXISTS zipcodes (
  zip TEXT PRIMARY KEY,
  cityState TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  campaignId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(campaignId) REFERENCES campaigns(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertCampaign(mode internal.Mode, subject, sourceRef string, dropID *int) (int64, error) {
	result, err := d.conn.Exec(`
INSERT INTO campaigns (mode, subject, sourceRef, dropId) VALUES (?, ?, ?, ?)
`, string(mode), subject, sourceRef, dropID)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) UpdateCampaignStatus(campaignID int64, status string) error {
	_, err := d.conn.Exec(`UPDATE campaigns SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, campaignID)
	return err
}

func (d *DB) GetCampaignByID(id int64) (*internal.CampaignRow, error) {
	var row internal.CampaignRow
	err := d.conn.QueryRow(`
SELECT id, mode, subject, sourceRef, status, dropId, createdAt FROM campaigns WHERE id = ?
`, id).Scan(&row.ID, &row.Mode, &row.Subject, &row.SourceRef, &row.Status, &row.DropID, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListCampaignsByStatus(status string, limit int) ([]internal.CampaignRow, error) {
	rows, err := d.conn.Query(`
SELECT id, mode, subject, sourceRef, status, dropId, createdAt
FROM campaigns WHERE status = ? ORDER BY createdAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CampaignRow
	for rows.Next() {
		var row internal.CampaignRow
		if err := rows.Scan(&row.ID, &row.Mode, &row.Subject, &row.SourceRef, &row.Status, &row.DropID, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SaveOutcomes persists a full campaign pass in one transaction: accepted
// rows become contacts, the rest become skip rows.
func (d *DB) SaveOutcomes(campaignID int64, outcomes []internal.RowOutcome) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	contactStmt, err := tx.Prepare(`
INSERT INTO contacts (campaignId, rowNo, name, address, mailingLines, zip, cityStateZip, saleDate, salePrice, mode)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(campaignId, rowNo) DO UPDATE SET
  name=excluded.name,
  address=excluded.address,
  mailingLines=excluded.mailingLines,
  zip=excluded.zip,
  cityStateZip=excluded.cityStateZip,
  saleDate=excluded.saleDate,
  salePrice=excluded.salePrice,
  mode=excluded.mode
`)
	if err != nil {
		return err
	}
	defer contactStmt.Close()

	skipStmt, err := tx.Prepare(`
INSERT INTO skips (campaignId, rowNo, reason, detail) VALUES (?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer skipStmt.Close()

	for _, outcome := range outcomes {
		if outcome.Accepted {
			rec := outcome.Record
			if _, err := contactStmt.Exec(
				campaignID, outcome.RowNo, rec.DisplayName, rec.PropertyAddress,
				strings.Join(rec.Address.Lines, "\n"), rec.Zip, rec.CityStateZip,
				rec.SaleDate, rec.SalePrice, string(rec.Mode),
			); err != nil {
				return err
			}
		} else {
			if _, err := skipStmt.Exec(campaignID, outcome.RowNo, string(outcome.Reason), outcome.Detail); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (d *DB) GetContacts(campaignID int64) ([]internal.ContactRow, error) {
	rows, err := d.conn.Query(`
SELECT id, campaignId, rowNo, name, address, mailingLines, zip, cityStateZip, saleDate, salePrice, mode
FROM contacts WHERE campaignId = ? ORDER BY rowNo ASC
`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ContactRow
	for rows.Next() {
		var row internal.ContactRow
		if err := rows.Scan(&row.ID, &row.CampaignID, &row.RowNo, &row.Name, &row.Address, &row.MailingLines,
			&row.Zip, &row.CityStateZip, &row.SaleDate, &row.SalePrice, &row.Mode); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetReportRows returns every row of a campaign, accepted and skipped, in
// source order, for the campaign report export.
func (d *DB) GetReportRows(campaignID int64) ([]internal.ReportRow, error) {
	rows, err := d.conn.Query(`
SELECT rowNo, 'accepted', '', name, address, zip, cityStateZip, saleDate, salePrice FROM contacts WHERE campaignId = ?
UNION ALL
SELECT rowNo, 'skipped', reason || CASE WHEN detail != '' THEN ': ' || detail ELSE '' END, '', '', '', '', '', 0
FROM skips WHERE campaignId = ?
ORDER BY rowNo ASC
`, campaignID, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReportRow
	for rows.Next() {
		var row internal.ReportRow
		if err := rows.Scan(&row.RowNo, &row.Outcome, &row.Reason, &row.Name, &row.Address, &row.Zip,
			&row.CityStateZip, &row.SaleDate, &row.SalePrice); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpsertDrop(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.DropRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO drops (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.DropRow{}, err
	}

	row, err := d.GetDropByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.DropRow{}, err
	}
	if row == nil {
		return internal.DropRow{}, errors.New("failed to upsert drop")
	}
	return *row, nil
}

func (d *DB) GetDropByProviderMessageID(provider, messageID string) (*internal.DropRow, error) {
	var row internal.DropRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM drops WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustDropByProviderMessageID(provider, messageID string) (internal.DropRow, error) {
	row, err := d.GetDropByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.DropRow{}, err
	}
	if row == nil {
		return internal.DropRow{}, fmt.Errorf("drop not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) ListDropsByStatus(status string, limit int) ([]internal.DropRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM drops WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DropRow
	for rows.Next() {
		var row internal.DropRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateDropStatus(dropID int, status string) error {
	_, err := d.conn.Exec(`UPDATE drops SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, dropID)
	return err
}

// ReplaceClients swaps the whole roster for a file import. Synced rosters go
// through UpsertClients instead so external IDs survive.
func (d *DB) ReplaceClients(clients []internal.ClientRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM clients`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO clients (externalId, name, mailingAddress, updatedAt) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range clients {
		if _, err := stmt.Exec(c.ExternalID, c.Name, c.MailingAddress, c.UpdatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) UpsertClients(clients []internal.ClientRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO clients (externalId, name, mailingAddress, updatedAt, lastSeenAt)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(externalId) DO UPDATE SET
  name=excluded.name,
  mailingAddress=excluded.mailingAddress,
  updatedAt=excluded.updatedAt,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range clients {
		if _, err := stmt.Exec(c.ExternalID, c.Name, c.MailingAddress, c.UpdatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ListClients() ([]internal.ClientRecord, error) {
	rows, err := d.conn.Query(`SELECT id, externalId, name, mailingAddress, updatedAt FROM clients`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ClientRecord
	for rows.Next() {
		var c internal.ClientRecord
		if err := rows.Scan(&c.ID, &c.ExternalID, &c.Name, &c.MailingAddress, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) ReplaceZipEntries(entries map[string]string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO zipcodes (zip, cityState) VALUES (?, ?)
ON CONFLICT(zip) DO UPDATE SET cityState = excluded.cityState, updatedAt = CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for zip, cityState := range entries {
		if _, err := stmt.Exec(zip, cityState); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ListZipEntries() (map[string]string, error) {
	rows, err := d.conn.Query(`SELECT zip, cityState FROM zipcodes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var zip, cityState string
		if err := rows.Scan(&zip, &cityState); err != nil {
			return nil, err
		}
		out[zip] = cityState
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, campaignID int64, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, campaignId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`,
		traceID, campaignID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
