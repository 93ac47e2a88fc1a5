package objdiff_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvil8/go-test-tools/factory"
	"github.com/anvil8/go-test-tools/internal/domain"
	"github.com/anvil8/go-test-tools/objdiff"
)

func buildUsers(t *testing.T) []*domain.User {
	t.Helper()
	users, err := factory.Build[domain.User](factory.Fields{
		"ID":       []uuid.UUID{uuid.New(), uuid.New(), uuid.New()},
		"Username": []string{"john", "tom", "anna"},
		"LastName": []string{"Smith", "Green", "Brown"},
	})
	require.NoError(t, err)
	return users
}

func TestNoDiff(t *testing.T) {
	users := buildUsers(t)
	list := objdiff.NewList([]string{"Username", "LastName"}, users...)

	assert.False(t, list.HasDiff(users, true))
	assert.Empty(t, list.Diff(users, true))
}

func TestUnorderedIgnoresOrder(t *testing.T) {
	users := buildUsers(t)
	list := objdiff.NewList([]string{"Username"}, users...)

	shuffled := []*domain.User{users[2], users[0], users[1]}
	assert.False(t, list.HasDiff(shuffled, false))
	assert.Empty(t, list.Diff(shuffled, false))
}

func TestOrderedDetectsWrongOrder(t *testing.T) {
	users := buildUsers(t)
	list := objdiff.NewList([]string{"Username"}, users...)

	shuffled := []*domain.User{users[2], users[0], users[1]}
	assert.True(t, list.HasDiff(shuffled, true))

	msg := list.Diff(shuffled, true)
	assert.Contains(t, msg, "wrong ID order")
	assert.Contains(t, msg, users[0].ObjectID())
}

func TestLengthMismatch(t *testing.T) {
	users := buildUsers(t)
	list := objdiff.NewList([]string{"Username", "LastName"}, users...)

	assert.True(t, list.HasDiff(users[:2], false))

	msg := list.Diff(users[:2], false)
	assert.Contains(t, msg, "expected 3 objects but got 2")
	assert.Contains(t, msg, "Missing objects:")
	assert.Contains(t, msg, "User(Username=anna, LastName=Brown)")
}

func TestMissingAndExtra(t *testing.T) {
	users := buildUsers(t)
	list := objdiff.NewList([]string{"Username"}, users...)

	stranger, err := factory.BuildOne[domain.User](factory.Fields{
		"ID":       uuid.New(),
		"Username": "mallory",
	})
	require.NoError(t, err)

	actual := []*domain.User{users[0], users[1], stranger}
	assert.True(t, list.HasDiff(actual, false))

	msg := list.Diff(actual, false)
	assert.Contains(t, msg, "Missing objects:")
	assert.Contains(t, msg, "User(Username=anna)")
	assert.Contains(t, msg, "Extra objects:")
	assert.Contains(t, msg, "User(Username=mallory)")
}

func TestTrackedFieldChange(t *testing.T) {
	users := buildUsers(t)
	list := objdiff.NewList([]string{"Username", "LastName"}, users...)

	renamed := *users[1]
	renamed.LastName = "Blue"
	actual := []*domain.User{users[0], &renamed, users[2]}

	// Identity still matches, so HasDiff stays false; Diff surfaces the
	// field-level change for debugging.
	assert.False(t, list.HasDiff(actual, true))

	msg := list.Diff(actual, true)
	assert.Contains(t, msg, "tracked fields differ")
	assert.Contains(t, msg, users[1].ObjectID())
	assert.Contains(t, msg, "Blue")
}

func TestUnknownTrackedField(t *testing.T) {
	users := buildUsers(t)
	list := objdiff.NewList([]string{"Nickname"}, users...)

	msg := list.Diff(users[:2], false)
	assert.Contains(t, msg, "<no such field>")
}
