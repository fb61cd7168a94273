package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
		ok   bool
	}{
		{"", PriorityLow, true},
		{"low", PriorityLow, true},
		{"Medium", PriorityMedium, true},
		{" high ", PriorityHigh, true},
		{"urgent", "", false},
	}
	for _, tc := range tests {
		got, ok := ParsePriority(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestTaskFilter_Matches(t *testing.T) {
	yes, no := true, false
	task := Task{Priority: PriorityHigh, Category: "home", Completed: true}

	assert.True(t, TaskFilter{}.Matches(task))
	assert.True(t, TaskFilter{Priority: PriorityHigh, Category: "home", Completed: &yes}.Matches(task))
	assert.False(t, TaskFilter{Priority: PriorityLow}.Matches(task))
	assert.False(t, TaskFilter{Category: "work"}.Matches(task))
	assert.False(t, TaskFilter{Completed: &no}.Matches(task))
}

func TestTaskFilter_Key(t *testing.T) {
	yes := true
	assert.Equal(t, "c=&done=any&p=", TaskFilter{}.Key())
	assert.Equal(t, "c=home&done=true&p=high", TaskFilter{Priority: PriorityHigh, Category: "home", Completed: &yes}.Key())
}

func TestTaskFilter_KeyEscapesSeparators(t *testing.T) {
	a := TaskFilter{Priority: Priority("low&c=work"), Category: ""}
	b := TaskFilter{Priority: PriorityLow, Category: "work"}
	c := TaskFilter{Priority: Priority("low|c=work")}
	d := TaskFilter{Priority: PriorityLow, Category: "work|c="}

	assert.NotEqual(t, a.Key(), b.Key())
	assert.NotEqual(t, c.Key(), d.Key())
}

func TestTaskPatch_ApplyOnlySuppliedFields(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	orig := Task{
		ID:          "t1",
		UserID:      "u1",
		Title:       "Buy milk",
		Description: "2 liters",
		Priority:    PriorityLow,
		DueDate:     &due,
		Category:    "home",
	}

	done := true
	got := TaskPatch{Completed: &done}.Apply(orig)
	assert.True(t, got.Completed)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2 liters", got.Description)
	assert.Equal(t, &due, got.DueDate)
	assert.Equal(t, "u1", got.UserID)

	cleared := TaskPatch{DueDateSet: true}.Apply(orig)
	assert.Nil(t, cleared.DueDate)

	title := "  Buy oat milk "
	high := PriorityHigh
	renamed := TaskPatch{Title: &title, Priority: &high}.Apply(orig)
	assert.Equal(t, "Buy oat milk", renamed.Title)
	assert.Equal(t, PriorityHigh, renamed.Priority)
}

func TestSortByDueDate_NullsLast(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d1, d2 := base.Add(24*time.Hour), base.Add(48*time.Hour)
	tasks := []Task{
		{ID: "none-old", CreatedAt: base},
		{ID: "late", DueDate: &d2, CreatedAt: base},
		{ID: "none-new", CreatedAt: base.Add(time.Hour)},
		{ID: "early", DueDate: &d1, CreatedAt: base},
	}

	SortByDueDate(tasks)

	ids := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		ids = append(ids, tk.ID)
	}
	require.Equal(t, []string{"early", "late", "none-old", "none-new"}, ids)
}
