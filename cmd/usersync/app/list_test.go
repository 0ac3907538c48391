package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/usersync/internal/users"
)

func TestRenderUsers(t *testing.T) {
	t.Parallel()

	cardID := int64(7)
	details := []users.UserDetails{
		{
			User:       users.User{ID: 1, Name: "Leanne Graham", Email: "sincere@april.biz", CreditCardID: &cardID},
			Address:    users.Address{ID: 1, Street: "Kulas Light", City: "Gwenborough"},
			Company:    users.Company{ID: 1, Name: "Romaguera-Crona"},
			CreditCard: &users.CreditCard{ID: cardID, Type: "Visa", Number: "4111111111111111", Owner: "Leanne Graham"},
		},
		{
			User:    users.User{ID: 2, Name: "Ervin Howell", Email: "shanna@melissa.tv"},
			Address: users.Address{ID: 2, Street: "Victor Plains", City: "Wisokyburgh"},
			Company: users.Company{ID: 2, Name: "Deckow-Crist"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderUsers(&buf, details))

	out := buf.String()
	assert.Contains(t, out, "Leanne Graham")
	assert.Contains(t, out, "Ervin Howell")
	assert.Contains(t, out, "Gwenborough")
	assert.Contains(t, out, "Wisokyburgh")
	assert.Contains(t, out, "4111111111111111")
	assert.Contains(t, out, "N/A")
	assert.NotContains(t, out, noUsersMessage)
}

func TestRenderUsers_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, renderUsers(&buf, nil))
	assert.Equal(t, noUsersMessage+"\n", buf.String())
}
