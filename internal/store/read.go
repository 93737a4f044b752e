package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/replaylab/combotrace/internal/combo"
	"github.com/replaylab/combotrace/internal/replay"
)

// ReadGame retrieves a game's settings by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadGame(ctx context.Context, gameID string) (*replay.GameSettings, error) {
	var settingsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT settings FROM games WHERE id = ?
	`, gameID).Scan(&settingsJSON)
	if err != nil {
		return nil, err
	}

	var settings replay.GameSettings
	if err := json.Unmarshal([]byte(settingsJSON), &settings); err != nil {
		return nil, fmt.Errorf("read game: unmarshal settings: %w", err)
	}
	return &settings, nil
}

// ListGames returns the IDs of all stored games, ordered by ID for
// deterministic output.
func (s *Store) ListGames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM games ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}

	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// ReadCombos returns all combos for a game with their moves attached.
// Results are ordered by start frame, then by detection position, so
// repeated reads of the same game are identical.
//
// Returns an empty slice (not nil) if the game has no combos.
func (s *Store) ReadCombos(ctx context.Context, gameID string) ([]*combo.Combo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT combo_index, victim_index, start_frame, end_frame,
		       start_percent, current_percent, end_percent, did_kill, last_hit_by
		FROM combos
		WHERE game_id = ?
		ORDER BY start_frame ASC, combo_index ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query combos: %w", err)
	}
	defer rows.Close()

	var combos []*combo.Combo
	var indexes []int
	for rows.Next() {
		c, idx, err := scanCombo(rows)
		if err != nil {
			return nil, err
		}
		combos = append(combos, c)
		indexes = append(indexes, idx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate combos: %w", err)
	}

	for i, c := range combos {
		moves, err := s.readMoves(ctx, gameID, indexes[i])
		if err != nil {
			return nil, err
		}
		c.Moves = moves
	}

	// Return empty slice instead of nil
	if combos == nil {
		combos = []*combo.Combo{}
	}

	return combos, nil
}

// readMoves returns the moves of one combo in detection order.
func (s *Store) readMoves(ctx context.Context, gameID string, comboIndex int) ([]*combo.Move, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT attacker_index, frame, move_id, hit_count, damage
		FROM moves
		WHERE game_id = ? AND combo_index = ?
		ORDER BY move_index ASC
	`, gameID, comboIndex)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	var moves []*combo.Move
	for rows.Next() {
		var m combo.Move
		if err := rows.Scan(&m.AttackerIndex, &m.FrameNumber, &m.MoveID, &m.HitCount, &m.Damage); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		moves = append(moves, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}

	return moves, nil
}

// scanCombo scans a combo row, returning the combo and its stored index.
func scanCombo(rows *sql.Rows) (*combo.Combo, int, error) {
	var c combo.Combo
	var comboIndex, didKill int
	var endFrame sql.NullInt32
	var endPercent sql.NullFloat64
	var lastHitBy sql.NullInt64

	if err := rows.Scan(
		&comboIndex, &c.VictimIndex, &c.StartFrame, &endFrame,
		&c.StartPercent, &c.CurrentPercent, &endPercent, &didKill, &lastHitBy,
	); err != nil {
		return nil, 0, fmt.Errorf("scan combo: %w", err)
	}

	c.DidKill = didKill != 0
	if endFrame.Valid {
		v := endFrame.Int32
		c.EndFrame = &v
	}
	if endPercent.Valid {
		v := endPercent.Float64
		c.EndPercent = &v
	}
	if lastHitBy.Valid {
		v := int(lastHitBy.Int64)
		c.LastHitBy = &v
	}

	return &c, comboIndex, nil
}
