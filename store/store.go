// Package store is local implementation of draft-save and bundle-create
// endpoints backed by SQLite.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrNotFound is returned by lookups.
var ErrNotFound = errors.New("not found")

// MemoryPath opens private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
	id                TEXT PRIMARY KEY,
	product_id        TEXT NOT NULL,
	logo_file_url     TEXT NOT NULL,
	logo_file_name    TEXT NOT NULL,
	logo_file_size    INTEGER NOT NULL,
	logo_width        INTEGER,
	logo_height       INTEGER,
	crop_data         TEXT NOT NULL,
	cropped_image_url TEXT NOT NULL,
	preview_image_url TEXT NOT NULL,
	bundle_id         TEXT,
	bundle_name       TEXT,
	created_at        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS bundles (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS bundle_items (
	bundle_id        TEXT NOT NULL REFERENCES bundles(id),
	position         INTEGER NOT NULL,
	product_id       TEXT NOT NULL,
	customization_id TEXT NOT NULL REFERENCES drafts(id),
	quantity         INTEGER NOT NULL,
	unit_price       TEXT NOT NULL,
	PRIMARY KEY (bundle_id, position)
);
`

// Store serializes access to single connection.
type Store struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *zap.Logger
	now  func() time.Time
}

func Open(path string, log *zap.Logger) (*Store, error) {
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate}
	if path == MemoryPath {
		flags = append(flags, sqlite.OpenMemory)
	} else {
		flags = append(flags, sqlite.OpenWAL)
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("unable to open database %q: %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, "PRAGMA foreign_keys = ON;"+schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare database schema: %w", err)
	}
	s := &Store{conn: conn, log: log.Named("store"), now: time.Now}
	s.log.Debug("Database opened", zap.String("path", path))
	return s, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// lock acquires connection and arranges for context cancellation to
// interrupt running statements.
func (s *Store) lock(ctx context.Context) (*sqlite.Conn, func(), error) {
	s.mu.Lock()
	if s.conn == nil {
		s.mu.Unlock()
		return nil, nil, errors.New("store is closed")
	}
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}
	s.conn.SetInterrupt(ctx.Done())
	return s.conn, func() {
		s.conn.SetInterrupt(nil)
		s.mu.Unlock()
	}, nil
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// SaveDraft stores customization and returns its identifier.
func (s *Store) SaveDraft(ctx context.Context, req DraftRequest) (DraftResponse, error) {
	if len(req.ProductID) == 0 {
		return DraftResponse{}, errors.New("draft has no product")
	}
	cropData, err := json.Marshal(req.CropData)
	if err != nil {
		return DraftResponse{}, fmt.Errorf("unable to serialize crop: %w", err)
	}
	id, err := newID()
	if err != nil {
		return DraftResponse{}, err
	}

	var w, h any
	if req.LogoDimensions != nil {
		w, h = req.LogoDimensions.Width, req.LogoDimensions.Height
	}

	conn, unlock, err := s.lock(ctx)
	if err != nil {
		return DraftResponse{}, err
	}
	defer unlock()

	err = sqlitex.Execute(conn, `INSERT INTO drafts (id, product_id, logo_file_url, logo_file_name, logo_file_size,
		logo_width, logo_height, crop_data, cropped_image_url, preview_image_url, bundle_id, bundle_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			id, req.ProductID, req.LogoFileURL, req.LogoFileName, req.LogoFileSize,
			w, h, string(cropData), req.CroppedImageURL, req.PreviewImageURL,
			nullable(req.BundleID), nullable(req.BundleName), s.now().UTC().Format(time.RFC3339Nano),
		}})
	if err != nil {
		return DraftResponse{}, fmt.Errorf("unable to save draft: %w", err)
	}
	s.log.Debug("Draft saved", zap.String("id", id), zap.String("product", req.ProductID))
	return DraftResponse{DraftID: id}, nil
}

// CreateBundle stores bundle referencing saved drafts and links drafts to
// it. Either everything is stored or nothing.
func (s *Store) CreateBundle(ctx context.Context, req BundleRequest) (_ BundleResponse, err error) {
	if len(req.Items) == 0 {
		return BundleResponse{}, errors.New("bundle has no items")
	}
	id, err := newID()
	if err != nil {
		return BundleResponse{}, err
	}

	conn, unlock, err := s.lock(ctx)
	if err != nil {
		return BundleResponse{}, err
	}
	defer unlock()

	defer sqlitex.Save(conn)(&err)

	err = sqlitex.Execute(conn, `INSERT INTO bundles (id, name, created_at) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{id, req.BundleName, s.now().UTC().Format(time.RFC3339Nano)}})
	if err != nil {
		return BundleResponse{}, fmt.Errorf("unable to save bundle: %w", err)
	}

	for i, it := range req.Items {
		err = sqlitex.Execute(conn, `UPDATE drafts SET bundle_id = ?, bundle_name = ? WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{id, req.BundleName, it.CustomizationID}})
		if err != nil {
			return BundleResponse{}, fmt.Errorf("unable to link draft %q: %w", it.CustomizationID, err)
		}
		if conn.Changes() == 0 {
			return BundleResponse{}, fmt.Errorf("customization %q: %w", it.CustomizationID, ErrNotFound)
		}
		err = sqlitex.Execute(conn, `INSERT INTO bundle_items (bundle_id, position, product_id, customization_id, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{id, i, it.ProductID, it.CustomizationID, it.Quantity, it.UnitPrice.String()}})
		if err != nil {
			return BundleResponse{}, fmt.Errorf("unable to save bundle item: %w", err)
		}
	}
	s.log.Debug("Bundle saved", zap.String("id", id), zap.Int("items", len(req.Items)))
	return BundleResponse{BundleID: id}, nil
}

// Draft returns stored draft.
func (s *Store) Draft(ctx context.Context, id string) (*DraftRequest, error) {
	conn, unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var d *DraftRequest
	err = sqlitex.Execute(conn, `SELECT product_id, logo_file_url, logo_file_name, logo_file_size, logo_width, logo_height,
		crop_data, cropped_image_url, preview_image_url, bundle_id, bundle_name FROM drafts WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				d = &DraftRequest{
					ProductID:       stmt.ColumnText(0),
					LogoFileURL:     stmt.ColumnText(1),
					LogoFileName:    stmt.ColumnText(2),
					LogoFileSize:    stmt.ColumnInt64(3),
					CroppedImageURL: stmt.ColumnText(7),
					PreviewImageURL: stmt.ColumnText(8),
					BundleID:        stmt.ColumnText(9),
					BundleName:      stmt.ColumnText(10),
				}
				if stmt.ColumnType(4) != sqlite.TypeNull {
					d.LogoDimensions = &Dimensions{Width: stmt.ColumnInt(4), Height: stmt.ColumnInt(5)}
				}
				return json.Unmarshal([]byte(stmt.ColumnText(6)), &d.CropData)
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to read draft: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("draft %q: %w", id, ErrNotFound)
	}
	return d, nil
}

// Bundle returns stored bundle with items in original order.
func (s *Store) Bundle(ctx context.Context, id string) (*BundleRequest, error) {
	conn, unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var b *BundleRequest
	err = sqlitex.Execute(conn, `SELECT name FROM bundles WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				b = &BundleRequest{BundleName: stmt.ColumnText(0)}
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to read bundle: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("bundle %q: %w", id, ErrNotFound)
	}

	err = sqlitex.Execute(conn, `SELECT product_id, customization_id, quantity, unit_price FROM bundle_items
		WHERE bundle_id = ? ORDER BY position`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				price, err := decimal.NewFromString(stmt.ColumnText(3))
				if err != nil {
					return err
				}
				b.Items = append(b.Items, BundleItemRequest{
					ProductID:       stmt.ColumnText(0),
					CustomizationID: stmt.ColumnText(1),
					Quantity:        stmt.ColumnInt(2),
					UnitPrice:       price,
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to read bundle items: %w", err)
	}
	return b, nil
}

func nullable(s string) any {
	if len(s) == 0 {
		return nil
	}
	return s
}
