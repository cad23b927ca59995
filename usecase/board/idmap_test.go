package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDMapBindIsStable(t *testing.T) {
	m := NewIDMap()

	a := m.Bind("card-a")
	b := m.Bind("card-b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, m.Bind("card-a"))

	remote, ok := m.Remote(b)
	assert.True(t, ok)
	assert.Equal(t, "card-b", remote)

	local, ok := m.Local("card-a")
	assert.True(t, ok)
	assert.Equal(t, a, local)
	assert.Equal(t, 2, m.Len())
}

func TestIDMapAssignAndForget(t *testing.T) {
	m := NewIDMap()

	id := m.Next()
	m.Assign(id, "uuid-1")
	remote, ok := m.Remote(id)
	assert.True(t, ok)
	assert.Equal(t, "uuid-1", remote)

	m.Forget(id)
	_, ok = m.Remote(id)
	assert.False(t, ok)
	_, ok = m.Local("uuid-1")
	assert.False(t, ok)

	assert.Greater(t, m.Next(), id)
}
