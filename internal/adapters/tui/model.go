// Package tui renders the progress of a build in the terminal.
package tui

import (
	"bytes"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
	"go.trai.ch/cleardep/internal/core/domain"
)

const (
	taskListWidthRatio = 0.3
	logPaneBorderWidth = 4
)

// MsgStatusUpdate carries one update recorded by the build's telemetry.
type MsgStatusUpdate struct {
	Update *progrock.StatusUpdate
}

// MsgBuildEnded is sent once the build has returned.
type MsgBuildEnded struct{}

// TaskNode is one task of the build schedule.
type TaskNode struct {
	Name   string
	Status domain.VertexStatus
	Logs   bytes.Buffer
}

// Model is the Bubble Tea model of the build view. Tasks are listed in schedule order; the
// log pane follows the task that started last.
type Model struct {
	Tasks      []*TaskNode
	TaskMap    map[string]*TaskNode
	VertexMap  map[string]*TaskNode
	Viewport   viewport.Model
	AutoScroll bool
	ActiveTask string
	Ended      bool
}

// NewModel creates a model listing tasks as pending.
func NewModel(tasks []string) *Model {
	m := &Model{
		Tasks:      make([]*TaskNode, 0, len(tasks)),
		TaskMap:    make(map[string]*TaskNode, len(tasks)),
		VertexMap:  make(map[string]*TaskNode),
		Viewport:   viewport.New(0, 0),
		AutoScroll: true,
	}
	for _, name := range tasks {
		m.task(name)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		listWidth := int(float64(msg.Width) * taskListWidthRatio)
		m.Viewport.Width = msg.Width - listWidth - logPaneBorderWidth
		m.Viewport.Height = msg.Height - 2

	case MsgStatusUpdate:
		m.apply(msg.Update)

	case MsgBuildEnded:
		for _, t := range m.Tasks {
			if !t.Status.IsTerminal() {
				t.Status = domain.VertexStatusSkipped
			}
		}
		m.Ended = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) apply(update *progrock.StatusUpdate) {
	for _, v := range update.Vertexes {
		node, ok := m.VertexMap[v.Id]
		if !ok {
			node = m.task(v.Name)
			m.VertexMap[v.Id] = node
		}
		switch {
		case v.Error != nil:
			node.Status = domain.VertexStatusFailed
		case v.Cached:
			node.Status = domain.VertexStatusCached
		case v.Completed != nil:
			node.Status = domain.VertexStatusCompleted
		case v.Started != nil:
			node.Status = domain.VertexStatusRunning
			m.ActiveTask = node.Name
			m.refresh()
		}
	}
	for _, l := range update.Logs {
		node, ok := m.VertexMap[l.Vertex]
		if !ok {
			continue
		}
		node.Logs.Write(l.Data)
		if node.Name == m.ActiveTask {
			m.refresh()
		}
	}
}

func (m *Model) task(name string) *TaskNode {
	if node, ok := m.TaskMap[name]; ok {
		return node
	}
	node := &TaskNode{Name: name, Status: domain.VertexStatusPending}
	m.Tasks = append(m.Tasks, node)
	m.TaskMap[name] = node
	return node
}

func (m *Model) refresh() {
	node, ok := m.TaskMap[m.ActiveTask]
	if !ok {
		return
	}
	m.Viewport.SetContent(node.Logs.String())
	if m.AutoScroll {
		m.Viewport.GotoBottom()
	}
}
