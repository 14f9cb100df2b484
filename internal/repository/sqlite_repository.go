package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteRepository persists the four entity tables in a single SQLite
// file following the Single Writer Principle: one open connection plus
// a mutex around every write, WAL journal for concurrent readers,
// foreign keys enforced at the connection level.
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex // Mutex to ensure single writer
}

// NewSQLiteRepository opens (or creates) the database and bootstraps
// the schema.
func NewSQLiteRepository(dbPath string, logger *zap.Logger) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // Single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &SQLiteRepository{
		db:     db,
		logger: logger,
	}

	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return r, nil
}

// initSchema creates the database schema
func (r *SQLiteRepository) initSchema() error {
	schema := `
	-- Locations: physical areas, natural key = name
	CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	-- Boxes: containers placed at a location, natural key = code (global)
	CREATE TABLE IF NOT EXISTS boxes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT UNIQUE NOT NULL,
		location_id INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (location_id) REFERENCES locations(id) ON DELETE RESTRICT
	);

	-- Parts: catalog entries, natural key = part_number
	CREATE TABLE IF NOT EXISTS parts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		part_number TEXT UNIQUE NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	-- Inventory items: quantity of a part inside a box.
	-- part_number is a cached projection of the referenced part.
	-- UNIQUE(box_id, part_id) makes the find-or-create path safe
	-- against racing duplicate adds.
	CREATE TABLE IF NOT EXISTS inventory_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		box_id INTEGER NOT NULL,
		part_id INTEGER NOT NULL,
		part_number TEXT NOT NULL,
		description TEXT,
		quantity INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (box_id) REFERENCES boxes(id) ON DELETE CASCADE,
		FOREIGN KEY (part_id) REFERENCES parts(id) ON DELETE RESTRICT,
		UNIQUE(box_id, part_id),
		CHECK(quantity >= 0)
	);

	-- Indexes for natural-key and relationship lookups
	CREATE INDEX IF NOT EXISTS idx_boxes_location_id ON boxes(location_id);
	CREATE INDEX IF NOT EXISTS idx_inventory_items_box_id ON inventory_items(box_id);
	CREATE INDEX IF NOT EXISTS idx_inventory_items_part_number ON inventory_items(part_number);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// ---- Locations ----

// InsertLocation inserts a location, or returns the existing row when
// the name is already taken. The bool reports whether a row was
// inserted.
func (r *SQLiteRepository) InsertLocation(ctx context.Context, name, description string) (*models.Location, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO locations (name, description, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
		name, description, now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert location: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Lost the race or repeat add: hand back the existing row.
		existing, err := r.findLocation(ctx, `SELECT id, name, description, created_at FROM locations WHERE name = ?`, name)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get insert id: %w", err)
	}
	return &models.Location{ID: id, Name: name, Description: description, CreatedAt: now}, true, nil
}

func (r *SQLiteRepository) FindLocationByID(ctx context.Context, id int64) (*models.Location, error) {
	return r.findLocation(ctx, `SELECT id, name, description, created_at FROM locations WHERE id = ?`, id)
}

func (r *SQLiteRepository) FindLocationByName(ctx context.Context, name string) (*models.Location, error) {
	return r.findLocation(ctx, `SELECT id, name, description, created_at FROM locations WHERE name = ?`, name)
}

func (r *SQLiteRepository) findLocation(ctx context.Context, query string, arg interface{}) (*models.Location, error) {
	var loc models.Location
	var description sql.NullString
	var createdAtStr string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(&loc.ID, &loc.Name, &description, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find location: %w", err)
	}

	loc.Description = description.String
	loc.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return &loc, nil
}

func (r *SQLiteRepository) ListLocations(ctx context.Context) ([]models.Location, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := make([]models.Location, 0)
	for rows.Next() {
		var loc models.Location
		var description sql.NullString
		var createdAtStr string
		if err := rows.Scan(&loc.ID, &loc.Name, &description, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		loc.Description = description.String
		loc.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}
	return locations, nil
}

func (r *SQLiteRepository) DeleteLocation(ctx context.Context, id int64) (bool, error) {
	return r.deleteByID(ctx, "location", `DELETE FROM locations WHERE id = ?`, id)
}

// ---- Parts ----

// InsertPart inserts a part, or returns the existing row when the part
// number is already registered.
func (r *SQLiteRepository) InsertPart(ctx context.Context, partNumber, description string) (*models.Part, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO parts (part_number, description, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(part_number) DO NOTHING`,
		partNumber, description, now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert part: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		existing, err := r.findPart(ctx, `SELECT id, part_number, description, created_at FROM parts WHERE part_number = ?`, partNumber)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get insert id: %w", err)
	}
	return &models.Part{ID: id, PartNumber: partNumber, Description: description, CreatedAt: now}, true, nil
}

func (r *SQLiteRepository) FindPartByID(ctx context.Context, id int64) (*models.Part, error) {
	return r.findPart(ctx, `SELECT id, part_number, description, created_at FROM parts WHERE id = ?`, id)
}

func (r *SQLiteRepository) FindPartByNumber(ctx context.Context, partNumber string) (*models.Part, error) {
	return r.findPart(ctx, `SELECT id, part_number, description, created_at FROM parts WHERE part_number = ?`, partNumber)
}

func (r *SQLiteRepository) findPart(ctx context.Context, query string, arg interface{}) (*models.Part, error) {
	var part models.Part
	var description sql.NullString
	var createdAtStr string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(&part.ID, &part.PartNumber, &description, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find part: %w", err)
	}

	part.Description = description.String
	part.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return &part, nil
}

func (r *SQLiteRepository) ListParts(ctx context.Context) ([]models.Part, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, part_number, description, created_at FROM parts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	defer rows.Close()

	parts := make([]models.Part, 0)
	for rows.Next() {
		var part models.Part
		var description sql.NullString
		var createdAtStr string
		if err := rows.Scan(&part.ID, &part.PartNumber, &description, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		part.Description = description.String
		part.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
		parts = append(parts, part)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parts: %w", err)
	}
	return parts, nil
}

func (r *SQLiteRepository) DeletePart(ctx context.Context, id int64) (bool, error) {
	return r.deleteByID(ctx, "part", `DELETE FROM parts WHERE id = ?`, id)
}

// ---- Boxes ----

// InsertBox inserts a box, or returns the existing row when the code
// is already taken. The existing row may belong to a different
// location; the caller decides whether that is acceptable.
func (r *SQLiteRepository) InsertBox(ctx context.Context, code string, locationID int64) (*models.Box, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO boxes (code, location_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(code) DO NOTHING`,
		code, locationID, now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert box: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		existing, err := r.findBox(ctx, `SELECT id, code, location_id, created_at FROM boxes WHERE code = ?`, code)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get insert id: %w", err)
	}
	return &models.Box{ID: id, Code: code, LocationID: locationID, CreatedAt: now}, true, nil
}

func (r *SQLiteRepository) FindBoxByID(ctx context.Context, id int64) (*models.Box, error) {
	return r.findBox(ctx, `SELECT id, code, location_id, created_at FROM boxes WHERE id = ?`, id)
}

func (r *SQLiteRepository) FindBoxByCode(ctx context.Context, code string) (*models.Box, error) {
	return r.findBox(ctx, `SELECT id, code, location_id, created_at FROM boxes WHERE code = ?`, code)
}

func (r *SQLiteRepository) findBox(ctx context.Context, query string, arg interface{}) (*models.Box, error) {
	var box models.Box
	var createdAtStr string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(&box.ID, &box.Code, &box.LocationID, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find box: %w", err)
	}

	box.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return &box, nil
}

func (r *SQLiteRepository) ListBoxes(ctx context.Context) ([]models.Box, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, location_id, created_at FROM boxes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list boxes: %w", err)
	}
	defer rows.Close()

	boxes := make([]models.Box, 0)
	for rows.Next() {
		var box models.Box
		var createdAtStr string
		if err := rows.Scan(&box.ID, &box.Code, &box.LocationID, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan box: %w", err)
		}
		box.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
		boxes = append(boxes, box)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating boxes: %w", err)
	}
	return boxes, nil
}

// DeleteBox removes a box. Child inventory items go with it in the
// same statement via ON DELETE CASCADE.
func (r *SQLiteRepository) DeleteBox(ctx context.Context, id int64) (bool, error) {
	return r.deleteByID(ctx, "box", `DELETE FROM boxes WHERE id = ?`, id)
}

// ---- Inventory items ----

// InsertInventoryItem inserts an item, or returns the existing row for
// the same (box, part) pair. The UNIQUE constraint serializes racing
// adds: at most one insert wins, the loser reads the winner's row.
func (r *SQLiteRepository) InsertInventoryItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items (box_id, part_id, part_number, description, quantity, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(box_id, part_id) DO NOTHING`,
		item.BoxID, item.PartID, item.PartNumber, item.Description, item.Quantity, now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert inventory item: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		existing, err := r.FindItemByBoxAndPart(ctx, item.BoxID, item.PartID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get insert id: %w", err)
	}

	created := *item
	created.ID = id
	created.UpdatedAt = now
	return &created, true, nil
}

func (r *SQLiteRepository) FindItemByID(ctx context.Context, id int64) (*models.InventoryItem, error) {
	return r.findItem(ctx, `
		SELECT id, box_id, part_id, part_number, description, quantity, updated_at
		FROM inventory_items WHERE id = ?`, id)
}

func (r *SQLiteRepository) FindItemByBoxAndPart(ctx context.Context, boxID, partID int64) (*models.InventoryItem, error) {
	return r.findItem(ctx, `
		SELECT id, box_id, part_id, part_number, description, quantity, updated_at
		FROM inventory_items WHERE box_id = ? AND part_id = ?`, boxID, partID)
}

func (r *SQLiteRepository) findItem(ctx context.Context, query string, args ...interface{}) (*models.InventoryItem, error) {
	var item models.InventoryItem
	var description sql.NullString
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&item.ID, &item.BoxID, &item.PartID, &item.PartNumber,
		&description, &item.Quantity, &updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory item: %w", err)
	}

	item.Description = description.String
	item.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return &item, nil
}

func (r *SQLiteRepository) ListItemsByBox(ctx context.Context, boxID int64) ([]models.InventoryItem, error) {
	return r.listItems(ctx, `
		SELECT id, box_id, part_id, part_number, description, quantity, updated_at
		FROM inventory_items WHERE box_id = ? ORDER BY id`, boxID)
}

func (r *SQLiteRepository) ListItemsByPartNumber(ctx context.Context, partNumber string) ([]models.InventoryItem, error) {
	return r.listItems(ctx, `
		SELECT id, box_id, part_id, part_number, description, quantity, updated_at
		FROM inventory_items WHERE part_number = ? ORDER BY id`, partNumber)
}

func (r *SQLiteRepository) listItems(ctx context.Context, query string, args ...interface{}) ([]models.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}
	defer rows.Close()

	items := make([]models.InventoryItem, 0)
	for rows.Next() {
		var item models.InventoryItem
		var description sql.NullString
		var updatedAtStr string
		if err := rows.Scan(
			&item.ID, &item.BoxID, &item.PartID, &item.PartNumber,
			&description, &item.Quantity, &updatedAtStr,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		item.Description = description.String
		item.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory items: %w", err)
	}
	return items, nil
}

// UpdateInventoryItem replaces the part reference, description and
// quantity of an item and refreshes its timestamp. Returns false when
// no row has the given id.
func (r *SQLiteRepository) UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET part_id = ?, part_number = ?, description = ?, quantity = ?, updated_at = ?
		WHERE id = ?`,
		item.PartID, item.PartNumber, item.Description, item.Quantity,
		now.Format(time.RFC3339), item.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update inventory item: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	item.UpdatedAt = now
	return true, nil
}

func (r *SQLiteRepository) DeleteInventoryItem(ctx context.Context, id int64) (bool, error) {
	return r.deleteByID(ctx, "inventory item", `DELETE FROM inventory_items WHERE id = ?`, id)
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, entity, query string, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", entity, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
