package cli

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	gsheet "painel/internal/sheets/google"
)

func TestRunOAuthInit(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`)
	}))
	defer tokenServer.Close()

	cfg := &oauth2.Config{
		ClientID: "id",
		Endpoint: oauth2.Endpoint{AuthURL: "https://auth.example/auth", TokenURL: tokenServer.URL},
		Scopes:   []string{"scope"},
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- runOAuthInit(context.Background(), pw, cfg, ln, tokenFile)
		pw.Close()
	}()

	lines := bufio.NewScanner(pr)
	require.True(t, lines.Scan())
	assert.Contains(t, lines.Text(), "Open this URL")
	require.True(t, lines.Scan())
	authURL, err := url.Parse(lines.Text())
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	redirect := authURL.Query().Get("redirect_uri")
	require.NotEmpty(t, state)
	assert.True(t, strings.HasSuffix(redirect, "/callback"))

	go func() {
		for lines.Scan() {
		}
	}()

	resp, err := http.Get(redirect + "?state=wrong&code=x")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(redirect + "?state=" + url.QueryEscape(state) + "&code=the-code")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("oauth init did not finish")
	}

	tok, err := gsheet.LoadToken(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "rt", tok.RefreshToken)
}
