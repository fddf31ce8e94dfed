package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cis/pkg/domain-errors"
)

func TestTransitionTable(t *testing.T) {
	type row map[Action]Status
	want := map[Status]row{
		StatusAvailable:  {ActionGenerate: StatusAssigned, ActionReserve: StatusReserved, ActionRegister: StatusAssigned},
		StatusReserved:   {ActionGenerate: StatusAssigned, ActionRegister: StatusAssigned, ActionDeprecate: StatusDeprecated, ActionRelease: StatusReleased},
		StatusAssigned:   {ActionDeprecate: StatusDeprecated, ActionRelease: StatusReleased, ActionPublish: StatusPublished},
		StatusPublished:  {ActionDeprecate: StatusDeprecated},
		StatusDeprecated: {},
		StatusReleased:   {},
	}

	for _, from := range Statuses() {
		for _, action := range Actions() {
			next, ok := Transition(from, action)
			expected, allowed := want[from][action]
			assert.Equal(t, allowed, ok, "%s/%s", from, action)
			assert.Equal(t, expected, next, "%s/%s", from, action)
			if ok {
				assert.Equal(t, Target(action), next, "%s/%s", from, action)
			}
		}
	}
}

func TestTransitionIsPure(t *testing.T) {
	first, ok1 := Transition(StatusReserved, ActionRelease)
	second, ok2 := Transition(StatusReserved, ActionRelease)
	assert.Equal(t, first, second)
	assert.Equal(t, ok1, ok2)
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range Statuses() {
		terminal := true
		for _, a := range Actions() {
			if _, ok := Transition(s, a); ok {
				terminal = false
			}
		}
		assert.Equal(t, terminal, s.IsTerminal(), s)
	}
}

func TestApply(t *testing.T) {
	t.Run("available cannot be deprecated", func(t *testing.T) {
		_, err := Apply("138875005", StatusAvailable, ActionDeprecate)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.Equal(t, "Cannot deprecate 138875005, current status: Available", err.Error())
	})

	t.Run("permitted transition", func(t *testing.T) {
		next, err := Apply("138875005", StatusAssigned, ActionPublish)
		require.NoError(t, err)
		assert.Equal(t, StatusPublished, next)
	})
}

func TestParse(t *testing.T) {
	s, err := ParseStatus("assigned")
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, s)

	a, err := ParseAction("DEPRECATE")
	require.NoError(t, err)
	assert.Equal(t, ActionDeprecate, a)

	_, err = ParseStatus("gone")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	_, err = ParseAction("")
	assert.Error(t, err)
}
