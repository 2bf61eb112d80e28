package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ameliebruno/daybound/internal/arc"
	"github.com/ameliebruno/daybound/internal/storage"
	"github.com/ameliebruno/daybound/internal/storylet"
)

// Authored content is stored as JSON documents keyed by ID. Content is
// written by seeding tools and read-mostly at runtime, so a blob column
// beats a wide relational mapping of nested steps and options.

// PutStorylet upserts one storylet document.
func (s *Store) PutStorylet(ctx context.Context, item storylet.Storylet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("storylet id is required")
	}
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode storylet: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO storylets (id, body) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET body = excluded.body`,
		item.ID,
		string(body),
	)
	if err != nil {
		return fmt.Errorf("put storylet: %w", err)
	}
	return nil
}

// GetStorylet returns one storylet by ID.
func (s *Store) GetStorylet(ctx context.Context, id string) (storylet.Storylet, error) {
	if err := ctx.Err(); err != nil {
		return storylet.Storylet{}, err
	}
	if err := s.ready(); err != nil {
		return storylet.Storylet{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storylet.Storylet{}, fmt.Errorf("storylet id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT body FROM storylets WHERE id = ?`, id)
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storylet.Storylet{}, storage.ErrNotFound
		}
		return storylet.Storylet{}, fmt.Errorf("get storylet: %w", err)
	}
	var item storylet.Storylet
	if err := json.Unmarshal([]byte(body), &item); err != nil {
		return storylet.Storylet{}, fmt.Errorf("decode storylet: %w", err)
	}
	return item, nil
}

// ListStorylets returns every storylet, ordered by ID.
func (s *Store) ListStorylets(ctx context.Context) ([]storylet.Storylet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT body FROM storylets ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list storylets: %w", err)
	}
	defer rows.Close()

	var items []storylet.Storylet
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("list storylets: %w", err)
		}
		var item storylet.Storylet
		if err := json.Unmarshal([]byte(body), &item); err != nil {
			return nil, fmt.Errorf("decode storylet: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list storylets: %w", err)
	}
	return items, nil
}

// PutArcDefinition upserts one arc definition document.
func (s *Store) PutArcDefinition(ctx context.Context, def arc.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(def.Key) == "" {
		return fmt.Errorf("arc key is required")
	}
	body, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode arc definition: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO arc_definitions (arc_key, body) VALUES (?, ?)
		 ON CONFLICT (arc_key) DO UPDATE SET body = excluded.body`,
		def.Key,
		string(body),
	)
	if err != nil {
		return fmt.Errorf("put arc definition: %w", err)
	}
	return nil
}

// GetArcDefinition returns one arc definition by key.
func (s *Store) GetArcDefinition(ctx context.Context, key string) (arc.Definition, error) {
	if err := ctx.Err(); err != nil {
		return arc.Definition{}, err
	}
	if err := s.ready(); err != nil {
		return arc.Definition{}, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return arc.Definition{}, fmt.Errorf("arc key is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT body FROM arc_definitions WHERE arc_key = ?`, key)
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return arc.Definition{}, storage.ErrNotFound
		}
		return arc.Definition{}, fmt.Errorf("get arc definition: %w", err)
	}
	var def arc.Definition
	if err := json.Unmarshal([]byte(body), &def); err != nil {
		return arc.Definition{}, fmt.Errorf("decode arc definition: %w", err)
	}
	return def, nil
}

// ListArcDefinitions returns every arc definition, ordered by key.
func (s *Store) ListArcDefinitions(ctx context.Context) ([]arc.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT body FROM arc_definitions ORDER BY arc_key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list arc definitions: %w", err)
	}
	defer rows.Close()

	var defs []arc.Definition
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("list arc definitions: %w", err)
		}
		var def arc.Definition
		if err := json.Unmarshal([]byte(body), &def); err != nil {
			return nil, fmt.Errorf("decode arc definition: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list arc definitions: %w", err)
	}
	return defs, nil
}
