package command

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { token = "" })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseBookID(t *testing.T) {
	id, err := parseBookID("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := parseBookID(bad)
		assert.Error(t, err, bad)
	}
}

func TestBooksList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"ok","data":[{"id":1,"title":"Dune","isbn":"0441013597","status":1,"borrowed_by":42}]}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "books", "list", "--api", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "borrowed")
}

func TestBooksBorrow_PassesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/borrow/5", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"message":"Book borrowed successfully"}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "books", "borrow", "5", "--api", srv.URL, "--token", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Book borrowed successfully")
}

func TestUsersCheck_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"success":false,"message":"username already exists"}`))
	}))
	defer srv.Close()

	_, err := runCLI(t, "users", "register", "-u", "alice", "-p", "h1", "--api", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already exists")
}
