package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	gsheet "painel/internal/sheets/google"
)

const authorizationTimeout = 5 * time.Minute

func newOAuthInitCommand() *cobra.Command {
	var port string
	var tokenFile string

	cmd := &cobra.Command{
		Use:   "oauth-init",
		Short: "Authorize read access to the spreadsheet and save the OAuth token",
		Long: "Reads the OAuth client from GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE,\n" +
			"prints the consent URL and waits for the redirect on http://localhost:<port>/callback.\n" +
			"The redirect URI must be authorized on the OAuth client.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenFile == "" {
				tokenFile = os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")
			}
			if tokenFile == "" {
				tokenFile = "token.json"
			}
			cfg, err := gsheet.OAuthConfig(gsheet.Config{
				OAuthClientFile: os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"),
				OAuthClientJSON: os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"),
			})
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", "localhost:"+port)
			if err != nil {
				return fmt.Errorf("listen for redirect: %w", err)
			}
			return runOAuthInit(cmd.Context(), cmd.OutOrStdout(), cfg, ln, tokenFile)
		},
	}

	cmd.Flags().StringVar(&port, "port", "8085", "local port for the OAuth redirect")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "where to save the token (default GOOGLE_OAUTH_TOKEN_FILE or token.json)")

	return cmd
}

// runOAuthInit serves the redirect on ln and saves the exchanged token. It owns ln.
func runOAuthInit(ctx context.Context, out io.Writer, cfg *oauth2.Config, ln net.Listener, tokenFile string) error {
	cfg.RedirectURL = "http://" + ln.Addr().String() + "/callback"
	state := uuid.NewString()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			http.Error(w, "OAuth error: "+q.Get("error"), http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("authorization denied: %s", q.Get("error")):
			default:
			}
		case q.Get("state") != state:
			http.Error(w, "invalid state", http.StatusBadRequest)
		default:
			fmt.Fprintln(w, "Autorização concluída. Você pode fechar esta janela.")
			select {
			case codeCh <- q.Get("code"):
			default:
			}
		}
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	fmt.Fprintf(out, "Open this URL to authorize:\n%s\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	ctx, cancel := context.WithTimeout(ctx, authorizationTimeout)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("token exchange: %w", err)
		}
		if err := gsheet.SaveToken(tokenFile, tok); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved token to %s\n", tokenFile)
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.New("authorization timed out")
		}
		return ctx.Err()
	}
}
