package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/replaylab/combotrace/internal/melee"
	"github.com/replaylab/combotrace/internal/replay"
	"github.com/replaylab/combotrace/internal/testutil"
)

// executeCommand runs the root command with the given args, capturing
// combined output.
func executeCommand(args ...string) (string, error) {
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

const (
	stateWait    = melee.ActionStateID(0x00E)
	stateAttack  = melee.ActionStateID(0x02F)
	stateHitstun = melee.ActionStateID(0x04B)
)

// writeReplayFixture writes a replay file containing exactly one combo:
// one hit at frame 2 for 10%, closed by the reset window timeout.
func writeReplayFixture(t *testing.T) string {
	t.Helper()

	b := testutil.NewGameBuilder(2, 0)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0), testutil.WithStocks(4)),
		1: testutil.Player(stateWait, testutil.WithPercent(0), testutil.WithStocks(4)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateAttack, testutil.WithCounter(1), testutil.WithLastAttack(17)),
		1: testutil.Player(stateWait, testutil.WithPercent(0)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateAttack, testutil.WithCounter(2), testutil.WithLastAttack(17)),
		1: testutil.Player(stateHitstun, testutil.WithPercent(10), testutil.WithLastHitBy(0)),
	})
	// Enough vulnerable frames to exceed the default reset window.
	for i := 0; i < melee.ComboStringResetFrames+1; i++ {
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateWait),
			1: testutil.Player(stateWait, testutil.WithPercent(10)),
		})
	}

	data, err := json.Marshal(b.File())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "game.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
