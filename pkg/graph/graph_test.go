package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTxStateMachine_Monotonic(t *testing.T) {
	t.Parallel()

	m := NewTxStateMachine()
	assert.True(t, m.IsActive())

	assert.True(t, m.Commit())
	assert.False(t, m.IsActive())
	assert.Equal(t, TxCommitted, m.State())

	assert.False(t, m.Commit(), "second commit must not succeed")
	assert.False(t, m.Rollback(), "rollback after commit must not succeed")
}

func TestTxStateMachine_Rollback(t *testing.T) {
	t.Parallel()

	m := NewTxStateMachine()
	assert.True(t, m.Rollback())
	assert.Equal(t, TxRolledBack, m.State())
	assert.False(t, m.Commit())
}
