package accounts

import (
	"testing"

	"github.com/krancour/accounts/sdk/internal/restmachinery"
	"github.com/stretchr/testify/require"
)

const (
	testAPIAddress          = "localhost:8080"
	testAPIToken            = "11235813213455"
	testClientAllowInsecure = true
	testUserID              = "auth0|tony"
)

func requireBaseClient(t *testing.T, baseClient *restmachinery.BaseClient) {
	require.NotNil(t, baseClient)
	require.Equal(t, testAPIAddress, baseClient.APIAddress)
	require.Equal(t, testAPIToken, baseClient.APIToken)
	require.NotNil(t, baseClient.HTTPClient)
}
