package schedule_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/engine/schedule"
)

func TestFlatten_RequiredTasksFirst(t *testing.T) {
	g := newGraph(t, "a", "b", "c", "d", "e")
	g.link("a", "b", "a", "c", "b", "d", "c", "d", "d", "e")

	s, err := schedule.NewBuilder(g.list("a"), domain.RebuildAll, quietLogger(t)).CreateBuildSchedule(nil, nil)
	require.NoError(t, err)

	tasks, err := s.Flatten()
	require.NoError(t, err)
	require.Len(t, tasks, 5)

	pos := make(map[*schedule.Task]int, len(tasks))
	for i, task := range tasks {
		pos[task] = i
	}
	for _, task := range tasks {
		for _, r := range task.RequiredTasks() {
			assert.Less(t, pos[r], pos[task], "%s placed before required %s", task, r)
		}
	}
	assert.Equal(t, []string{"e"}, unitNames(tasks[0].Units()))
	assert.Equal(t, []string{"a"}, unitNames(tasks[4].Units()))

	again, err := s.Flatten()
	require.NoError(t, err)
	assert.Equal(t, tasks, again)
}

func TestNeedsToBeBuilt_RequiredTaskFailed(t *testing.T) {
	g := newGraph(t, "a", "b")
	g.link("a", "b")

	s, err := schedule.NewBuilder(g.list("a"), domain.RebuildAll, quietLogger(t)).CreateBuildSchedule(nil, nil)
	require.NoError(t, err)
	tasks, err := s.Flatten()
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	taskB, taskA := tasks[0], tasks[1]

	taskB.SetState(domain.TaskFailure)
	g.write("a", "changed")

	needs, err := taskA.NeedsToBeBuilt(nil, nil)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestNeedsToBeBuilt_RequiredTaskUnfinished(t *testing.T) {
	g := newGraph(t, "a", "b")
	g.link("a", "b")

	s, err := schedule.NewBuilder(g.list("a"), domain.RebuildAll, quietLogger(t)).CreateBuildSchedule(nil, nil)
	require.NoError(t, err)
	tasks, err := s.Flatten()
	require.NoError(t, err)
	taskB, taskA := tasks[0], tasks[1]

	for _, state := range []domain.TaskState{domain.TaskOpen, domain.TaskInProgress} {
		taskB.SetState(state)
		_, err := taskA.NeedsToBeBuilt(nil, nil)
		require.ErrorIs(t, err, domain.ErrIllegalBuildState)
	}
}

func TestNeedsToBeBuilt_Consistency(t *testing.T) {
	g := newGraph(t, "a", "b")
	g.link("a", "b")
	g.get("b").SetInterfaceHash(1)
	require.NoError(t, g.get("a").UpdateModuleDependencyInterface(g.get("b")))

	s, err := schedule.NewBuilder(g.list("a"), domain.RebuildAll, quietLogger(t)).CreateBuildSchedule(nil, nil)
	require.NoError(t, err)
	tasks, err := s.Flatten()
	require.NoError(t, err)
	taskB, taskA := tasks[0], tasks[1]
	taskB.SetState(domain.TaskSuccess)

	needs, err := taskA.NeedsToBeBuilt(nil, nil)
	require.NoError(t, err)
	assert.False(t, needs)

	g.get("b").SetInterfaceHash(2)
	needs, err = taskA.NeedsToBeBuilt(nil, nil)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestNeedsToBeBuilt_InterfaceModeSkipsDeepCheck(t *testing.T) {
	g := newGraph(t, "a", "b")
	g.link("a", "b")
	g.get("b").SetInterfaceHash(1)
	require.NoError(t, g.get("a").UpdateModuleDependencyInterface(g.get("b")))
	g.write("b", "changed")

	s, err := schedule.NewBuilder(g.list("a"), domain.RebuildInconsistentInterface, quietLogger(t)).CreateBuildSchedule(nil, nil)
	require.NoError(t, err)
	tasks, err := s.Flatten()
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	taskB, taskA := tasks[0], tasks[1]
	taskB.SetState(domain.TaskSuccess)

	needs, err := taskA.NeedsToBeBuilt(nil, nil)
	require.NoError(t, err)
	assert.False(t, needs, "b kept its interface")

	needs, err = taskB.NeedsToBeBuilt(nil, nil)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestTaskString(t *testing.T) {
	g := newGraph(t, "a", "b")
	g.link("a", "b")

	s, err := schedule.NewBuilder(g.list("a"), domain.RebuildAll, quietLogger(t)).CreateBuildSchedule(nil, nil)
	require.NoError(t, err)
	tasks, err := s.Flatten()
	require.NoError(t, err)

	assert.Equal(t, "Task_1()[b]", tasks[0].String())
	assert.Equal(t, "Task_0(1)[a]", tasks[1].String())
	assert.Contains(t, s.String(), "1 root tasks, 2 tasks")
}

func TestScheduleString(t *testing.T) {
	g := newGraph(t, "a", "b", "c")
	g.link("a", "b", "b", "c", "c", "b")

	s, err := schedule.NewBuilder(g.list("a"), domain.RebuildAll, quietLogger(t)).CreateBuildSchedule(nil, nil)
	require.NoError(t, err)
	_, err = s.Flatten()
	require.NoError(t, err)

	gold := goldie.New(t)
	gold.Assert(t, "schedule_cycle", []byte(s.String()))
}
