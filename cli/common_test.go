package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/krancour/bizdesk/sdk/session"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
)

const (
	testToken    = "opensesame"
	testEmail    = "tony@starkindustries.example"
	testPassword = "ironman"
)

var (
	testUser = session.User{
		ID:     "tony",
		Name:   "Tony Stark",
		Email:  testEmail,
		Role:   session.RoleAdmin,
		Active: true,
	}
	testTenants = []session.Tenant{
		{ID: "t1", Name: "Stark Industries"},
		{ID: "t2", Name: "Avengers"},
	}
)

// withTestHome points the home directory and the session file at a fresh
// temporary directory for the duration of a test.
func withTestHome(t *testing.T) string {
	home, err := ioutil.TempDir("", "bizdesk-cli-test")
	require.NoError(t, err)
	oldHome := os.Getenv("HOME")
	homedir.DisableCache = true
	require.NoError(t, os.Setenv("HOME", home))
	require.NoError(t, os.Setenv("BIZDESK_SESSION_STORE", "file"))
	require.NoError(
		t,
		os.Setenv("BIZDESK_SESSION_FILE", filepath.Join(home, "session")),
	)
	t.Cleanup(func() {
		os.Setenv("HOME", oldHome)
		os.Unsetenv("BIZDESK_SESSION_STORE")
		os.Unsetenv("BIZDESK_SESSION_FILE")
		os.RemoveAll(home)
	})
	return home
}

func newTestAPIServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/v1/auth/login" {
					credentials := map[string]string{}
					require.NoError(t, json.NewDecoder(r.Body).Decode(&credentials))
					if credentials["password"] != testPassword {
						w.WriteHeader(http.StatusOK)
						fmt.Fprintln(
							w,
							`{"success":false,"message":"Invalid email or password"}`,
						)
						return
					}
					userJSON, err := json.Marshal(testUser)
					require.NoError(t, err)
					w.WriteHeader(http.StatusOK)
					fmt.Fprintf(
						w,
						`{"success":true,"token":%q,"user":%s,"expiresIn":3600}`,
						testToken,
						userJSON,
					)
					return
				}
				if r.Header.Get("Authorization") != "Bearer "+testToken {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				switch r.URL.Path {
				case "/v1/tenants/user":
					w.WriteHeader(http.StatusOK)
					require.NoError(t, json.NewEncoder(w).Encode(testTenants))
				case "/v1/auth/me":
					w.WriteHeader(http.StatusOK)
					require.NoError(t, json.NewEncoder(w).Encode(testUser))
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			},
		),
	)
}

func runApp(args ...string) (string, error) {
	out := &bytes.Buffer{}
	app := newApp()
	app.Writer = out
	err := app.Run(append([]string{"bizdesk"}, args...))
	return out.String(), err
}
