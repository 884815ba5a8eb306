package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type items map[string]string

func (i items) Keys() (map[string]string, error) {
	return i, nil
}

func TestDefaultMapper_Hides_Secrets(t *testing.T) {
	req := require.New(t)

	row := DefaultMapper("chat_users_db", `{"bob":"pw2","alice":"pw1"}`)

	req.Equal("CREDENTIALS", row.Type)
	req.Equal("2 account(s): alice, bob", row.Detail)
	req.NotContains(row.Detail, "pw1")
}

func TestDefaultMapper_Identity(t *testing.T) {
	req := require.New(t)
	req.Equal(InspectRow{Key: "globalchat_user", Type: "IDENTITY", Detail: "alice"},
		DefaultMapper("globalchat_user", `{"username":"alice","avatar":"x"}`))
	req.Equal("Error: malformed identity", DefaultMapper("globalchat_user", "{").Detail)
	req.Equal("RAW", DefaultMapper("theme", "dark").Type)
}

func TestInspectRows_Prefix_And_Order(t *testing.T) {
	req := require.New(t)
	source := items{"globalchat_user": `{"username":"a"}`, "chat_users_db": "{}", "theme": "dark"}

	rows, err := InspectRows(source, "", nil)
	req.NoError(err)
	req.Equal([]string{"chat_users_db", "globalchat_user", "theme"}, []string{rows[0].Key, rows[1].Key, rows[2].Key})

	rows, err = InspectRows(source, "chat", nil)
	req.NoError(err)
	req.Len(rows, 1)
}

func TestDebugHandler(t *testing.T) {
	req := require.New(t)
	handler := DebugHandler(items{"globalchat_user": `{"username":"alice"}`}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect", nil))

	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), "globalchat_user")
	req.Contains(rec.Body.String(), "IDENTITY")
}
