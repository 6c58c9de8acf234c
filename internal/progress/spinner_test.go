package progress

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelUpdate(t *testing.T) {
	t.Parallel()

	var m tea.Model = model{desc: "Fetching"}
	assert.Contains(t, m.View(), "Fetching")
	assert.Contains(t, m.View(), frames[0])

	next, cmd := m.Update(tickMsg{})
	assert.NotNil(t, cmd)
	assert.Contains(t, next.View(), frames[1])

	next, _ = next.Update(describeMsg("Searching article 3"))
	assert.True(t, strings.HasPrefix(next.View(), "Searching article 3"))

	next, cmd = next.Update(stopMsg{})
	require.NotNil(t, cmd)
	assert.Contains(t, next.View(), "Searching article 3 complete.")

	_, cmd = next.Update(tickMsg{})
	assert.Nil(t, cmd)
}

func TestFramesWrap(t *testing.T) {
	t.Parallel()

	m := model{frame: len(frames) - 1}
	next, _ := m.Update(tickMsg{})
	assert.Equal(t, 0, next.(model).frame)
}

func TestTerminalTaskFinishes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	task := NewTerminal(&buf, nil).Start("Exporting")
	task.Describe("Exporting article 1")
	task.Done()
	task.Done()

	assert.Contains(t, buf.String(), "complete.")
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	task := Discard{}.Start("anything")
	task.Describe("more")
	task.Done()
}
