package tui_test

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/progrock"
	"go.trai.ch/cleardep/internal/adapters/tui"
	"go.trai.ch/cleardep/internal/core/domain"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func update(vertexes []*progrock.Vertex, logs ...*progrock.VertexLog) tui.MsgStatusUpdate {
	return tui.MsgStatusUpdate{Update: &progrock.StatusUpdate{Vertexes: vertexes, Logs: logs}}
}

func statuses(m *tui.Model) map[string]domain.VertexStatus {
	out := make(map[string]domain.VertexStatus, len(m.Tasks))
	for _, t := range m.Tasks {
		out[t.Name] = t.Status
	}
	return out
}

func TestNewModel(t *testing.T) {
	m := tui.NewModel([]string{"core", "app", "core"})

	require.Len(t, m.Tasks, 2)
	assert.Equal(t, "core", m.Tasks[0].Name)
	assert.Equal(t, "app", m.Tasks[1].Name)
	assert.Equal(t, domain.VertexStatusPending, m.Tasks[0].Status)
	assert.Nil(t, m.Init())
}

func TestModel_StatusUpdates(t *testing.T) {
	m := tui.NewModel([]string{"core", "app", "lib"})
	now := timestamppb.New(time.Now())
	failure := "exit status 1"

	m.Update(update([]*progrock.Vertex{{Id: "v1", Name: "core", Started: now}}))
	assert.Equal(t, domain.VertexStatusRunning, m.TaskMap["core"].Status)
	assert.Equal(t, "core", m.ActiveTask)

	m.Update(update(
		[]*progrock.Vertex{{Id: "v1", Name: "core", Started: now, Completed: now}},
		&progrock.VertexLog{Vertex: "v1", Data: []byte("compiled\n")},
	))
	assert.Equal(t, domain.VertexStatusCompleted, m.TaskMap["core"].Status)
	assert.Equal(t, "compiled\n", m.TaskMap["core"].Logs.String())

	m.Update(update([]*progrock.Vertex{{Id: "v2", Name: "app", Started: now, Completed: now, Error: &failure}}))
	assert.Equal(t, domain.VertexStatusFailed, m.TaskMap["app"].Status)

	m.Update(update([]*progrock.Vertex{{Id: "v3", Name: "extra", Started: now, Completed: now, Cached: true}}))
	assert.Equal(t, domain.VertexStatusCached, m.TaskMap["extra"].Status)
	assert.Len(t, m.Tasks, 4, "unknown vertices are appended")

	_, cmd := m.Update(tui.MsgBuildEnded{})
	require.NotNil(t, cmd)
	assert.True(t, m.Ended)
	assert.Equal(t, map[string]domain.VertexStatus{
		"core":  domain.VertexStatusCompleted,
		"app":   domain.VertexStatusFailed,
		"lib":   domain.VertexStatusSkipped,
		"extra": domain.VertexStatusCached,
	}, statuses(m))
}

func TestModel_LogsOfUnknownVertexAreDropped(t *testing.T) {
	m := tui.NewModel([]string{"core"})

	m.Update(update(nil, &progrock.VertexLog{Vertex: "nope", Data: []byte("x")}))
	assert.Zero(t, m.TaskMap["core"].Logs.Len())
}

func TestModel_Keys(t *testing.T) {
	m := tui.NewModel(nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Nil(t, cmd)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_View(t *testing.T) {
	m := tui.NewModel([]string{"core", "app"})
	assert.Equal(t, "Initializing...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	now := timestamppb.New(time.Now())
	m.Update(update([]*progrock.Vertex{{Id: "v1", Name: "core", Started: now}}))

	view := m.View()
	assert.Contains(t, view, "TASKS")
	assert.Contains(t, view, "> ● core")
	assert.Contains(t, view, "○ app")
	assert.Contains(t, view, "LOGS: core")
	assert.Contains(t, view, "0/2 tasks finished")
}
