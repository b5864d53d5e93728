package accounts

// APIClient is the root of a tree of more specialized API clients.
type APIClient interface {
	// Users returns a specialized client for User management.
	Users() UsersClient
	// DeletionRequests returns a specialized client for account deletion
	// request management.
	DeletionRequests() DeletionRequestsClient
	// Identity returns a specialized client for inspecting the caller's own
	// identity.
	Identity() IdentityClient
}

type apiClient struct {
	usersClient            UsersClient
	deletionRequestsClient DeletionRequestsClient
	identityClient         IdentityClient
}

// NewAPIClient returns an APIClient.
func NewAPIClient(
	apiAddress string,
	apiToken string,
	allowInsecure bool,
) APIClient {
	return &apiClient{
		usersClient: NewUsersClient(apiAddress, apiToken, allowInsecure),
		deletionRequestsClient: NewDeletionRequestsClient(
			apiAddress,
			apiToken,
			allowInsecure,
		),
		identityClient: NewIdentityClient(apiAddress, apiToken, allowInsecure),
	}
}

func (a *apiClient) Users() UsersClient {
	return a.usersClient
}

func (a *apiClient) DeletionRequests() DeletionRequestsClient {
	return a.deletionRequestsClient
}

func (a *apiClient) Identity() IdentityClient {
	return a.identityClient
}
