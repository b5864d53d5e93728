package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const testToken = "opensesame"

// withTestHome points the CLI's configuration at a temporary directory for
// the duration of the test.
func withTestHome(t *testing.T) string {
	dir := t.TempDir()
	origHomeFn := homeFn
	homeFn = func() (string, error) {
		return dir, nil
	}
	t.Cleanup(func() {
		homeFn = origHomeFn
	})
	return dir
}

// loggedInTo saves a configuration pointing at the provided server.
func loggedInTo(t *testing.T, server *httptest.Server) {
	withTestHome(t)
	require.NoError(
		t,
		saveConfig(&config{APIAddress: server.URL, APIToken: testToken}),
	)
}

func runApp(args ...string) error {
	app := cli.NewApp()
	app.Name = "accounts"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    flagInsecure,
			Aliases: []string{"k"},
		},
	}
	app.Commands = []*cli.Command{
		deletionRequestCommand,
		loginCommand,
		logoutCommand,
		userCommand,
	}
	return app.Run(append([]string{"accounts"}, args...))
}

func requireBearerToken(t *testing.T, r *http.Request) {
	require.Equal(
		t,
		fmt.Sprintf("Bearer %s", testToken),
		r.Header.Get("Authorization"),
	)
}
