package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/replaylab/combotrace/internal/combo"
	"github.com/replaylab/combotrace/internal/replay"
)

// WriteGame inserts a game record into the store.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Settings are serialized to JSON.
func (s *Store) WriteGame(ctx context.Context, gameID string, settings *replay.GameSettings) error {
	if settings == nil {
		return fmt.Errorf("write game: settings are required")
	}

	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("write game: marshal settings: %w", err)
	}

	isTeams := 0
	if settings.IsTeams {
		isTeams = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO games (id, stage_id, is_teams, settings)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, gameID, settings.StageID, isTeams, string(settingsJSON))
	if err != nil {
		return fmt.Errorf("write game: %w", err)
	}

	return nil
}

// WriteCombos inserts a game's detected combos and their moves in a
// single transaction. Rows are keyed by (game_id, combo_index) and
// (game_id, combo_index, move_index) with ON CONFLICT DO NOTHING, so
// rewriting the same detection output is a no-op.
//
// The game referenced by gameID must exist (foreign key constraint).
func (s *Store) WriteCombos(ctx context.Context, gameID string, combos []*combo.Combo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write combos: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for i, c := range combos {
		if c == nil {
			return fmt.Errorf("write combos: combos[%d] is nil", i)
		}

		didKill := 0
		if c.DidKill {
			didKill = 1
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO combos
			(game_id, combo_index, victim_index, start_frame, end_frame,
			 start_percent, current_percent, end_percent, did_kill, last_hit_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(game_id, combo_index) DO NOTHING
		`,
			gameID, i, c.VictimIndex, c.StartFrame, nullableInt32(c.EndFrame),
			c.StartPercent, c.CurrentPercent, nullableFloat(c.EndPercent),
			didKill, nullableInt(c.LastHitBy),
		)
		if err != nil {
			return fmt.Errorf("write combos: insert combo %d: %w", i, err)
		}

		for j, m := range c.Moves {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO moves
				(game_id, combo_index, move_index, attacker_index, frame,
				 move_id, hit_count, damage)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(game_id, combo_index, move_index) DO NOTHING
			`,
				gameID, i, j, m.AttackerIndex, m.FrameNumber,
				m.MoveID, m.HitCount, m.Damage,
			)
			if err != nil {
				return fmt.Errorf("write combos: insert move %d of combo %d: %w", j, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write combos: commit: %w", err)
	}

	return nil
}

func nullableInt32(v *int32) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
