package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnownCategories(t *testing.T) {
	for _, c := range []Category{Project, Canvas, Backend, System, MongoDB, Agents, Deploy, Account} {
		assert.True(t, Known(c), "category %s", c)
	}
	assert.False(t, Known(Category("billing")))
	assert.False(t, Known(Category("")))
}

func TestRequiresContextID(t *testing.T) {
	tests := []struct {
		category Category
		want     bool
	}{
		{Project, false},
		{Account, false},
		{Canvas, true},
		{Backend, true},
		{System, true},
		{MongoDB, true},
		{Agents, true},
		{Deploy, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RequiresContextID(tt.category), "category %s", tt.category)
	}
}

func TestCategoriesStableOrder(t *testing.T) {
	first := Categories()
	second := Categories()
	assert.Equal(t, first, second)
	assert.Len(t, first, 8)
}

func TestToolName(t *testing.T) {
	assert.Equal(t, "canvas_LIST_FILES", ToolName(Canvas, "LIST_FILES"))
	assert.Equal(t, "project_LIST", ToolName(Project, "LIST"))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Read File", Title("READ_FILE"))
	assert.Equal(t, "List", Title("LIST"))
	assert.Equal(t, "Do A B", Title("DO_A_B"))
}
