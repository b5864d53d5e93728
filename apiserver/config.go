package main

// nolint: lll
import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/krancour/accounts/apiserver/internal/accounts"
	accountsMinio "github.com/krancour/accounts/apiserver/internal/accounts/minio"
	accountsMongodb "github.com/krancour/accounts/apiserver/internal/accounts/mongodb"
	accountsREST "github.com/krancour/accounts/apiserver/internal/accounts/rest"
	"github.com/krancour/accounts/apiserver/internal/authx"
	authxMongodb "github.com/krancour/accounts/apiserver/internal/authx/mongodb"
	authxRedis "github.com/krancour/accounts/apiserver/internal/authx/redis"
	authxREST "github.com/krancour/accounts/apiserver/internal/authx/rest"
	"github.com/krancour/accounts/apiserver/internal/lib/auth0"
	"github.com/krancour/accounts/apiserver/internal/lib/mongodb"
	"github.com/krancour/accounts/apiserver/internal/lib/oidc"
	"github.com/krancour/accounts/apiserver/internal/lib/redis"
	"github.com/krancour/accounts/apiserver/internal/lib/restmachinery"
	"github.com/krancour/accounts/apiserver/internal/lib/restmachinery/authn"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	sessionsBackendMongoDB = "mongodb"
	sessionsBackendRedis   = "redis"
)

type sessionsConfig struct {
	Backend string `envconfig:"SESSIONS_BACKEND" default:"mongodb"`
}

func getAPIServerFromEnvironment() (restmachinery.Server, error) {
	ctx := context.Background()

	// API server config
	apiConfig, err := restmachinery.GetConfigFromEnvironment()
	if err != nil {
		return nil, err
	}

	// Common
	database, err := mongodb.Database(ctx)
	if err != nil {
		return nil, err
	}

	// Users
	usersStore, err := accountsMongodb.NewUsersStore(database)
	if err != nil {
		return nil, err
	}
	avatarStore, err := getAvatarStoreFromEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	usersService := accounts.NewUsersService(usersStore, avatarStore)

	// Identity sync-- depends on users
	auth0Config, err := auth0.GetConfigFromEnvironment()
	if err != nil {
		return nil, err
	}
	var rolesProvider accounts.RolesProvider
	if auth0Config.Enabled() {
		rolesProvider = auth0.NewClient(auth0Config)
	} else {
		log.Println(
			"WARNING: Auth0 management API is not configured; new identities " +
				"cannot be synchronized",
		)
	}
	identitySyncService :=
		accounts.NewIdentitySyncService(usersStore, rolesProvider)

	// Account deletion requests
	deletionRequestsStore, err := accountsMongodb.NewDeletionRequestsStore(database)
	if err != nil {
		return nil, err
	}
	deletionRequestsService :=
		accounts.NewDeletionRequestsService(deletionRequestsStore)

	// Sessions
	oauth2Config, oidcIdentityVerifier, err :=
		oidc.GetConfigAndVerifierFromEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	sessionsStore, err := getSessionsStoreFromEnvironment(ctx, database)
	if err != nil {
		return nil, err
	}
	sessionsService := authx.NewSessionsService(
		sessionsStore,
		oauth2Config,
		oidcIdentityVerifier,
		apiConfig.SessionTTL(),
	)

	baseEndpoints := &restmachinery.BaseEndpoints{
		SessionAuthFilter: authn.NewSessionAuthFilter(sessionsService.GetByToken),
		RequireAuthFilter: authn.NewRequireIdentityFilter(),
	}

	return restmachinery.NewServer(
		apiConfig,
		baseEndpoints,
		[]restmachinery.Endpoints{
			authxREST.NewSessionsEndpoints(
				baseEndpoints,
				authxREST.SessionsEndpointsConfig{
					CookieSecure: apiConfig.SessionCookieSecure(),
					CookieTTL:    apiConfig.SessionTTL(),
					LogoutURL:    logoutURL(auth0Config, oauth2Config),
				},
				sessionsService,
			),
			authxREST.NewIdentityEndpoints(
				baseEndpoints,
				authn.NewIdentitySyncFilter(identitySyncService.Sync),
			),
			accountsREST.NewUsersEndpoints(baseEndpoints, usersService),
			accountsREST.NewDeletionRequestsEndpoints(
				baseEndpoints,
				deletionRequestsService,
			),
		},
	), nil
}

func getAvatarStoreFromEnvironment(
	ctx context.Context,
) (accounts.AvatarStore, error) {
	config, err := accountsMinio.GetConfigFromEnvironment()
	if err != nil {
		return nil, err
	}
	if !config.Enabled {
		return nil, nil
	}
	client, err := accountsMinio.Client(config)
	if err != nil {
		return nil, err
	}
	return accountsMinio.NewAvatarStore(ctx, client, config)
}

func getSessionsStoreFromEnvironment(
	ctx context.Context,
	database *mongo.Database,
) (authx.SessionsStore, error) {
	config := sessionsConfig{}
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}
	switch config.Backend {
	case sessionsBackendMongoDB:
		return authxMongodb.NewSessionsStore(database)
	case sessionsBackendRedis:
		redisConfig, err := redis.GetConfigFromEnvironment()
		if err != nil {
			return nil, err
		}
		redisClient, err := redis.Client(ctx, redisConfig)
		if err != nil {
			return nil, err
		}
		return authxRedis.NewSessionsStore(redisClient, redisConfig.Prefix), nil
	default:
		return nil, errors.Errorf(
			"unrecognized value %q for SESSIONS_BACKEND; must be %q or %q",
			config.Backend,
			sessionsBackendMongoDB,
			sessionsBackendRedis,
		)
	}
}

// logoutURL returns where browsers go after logging out. It is empty unless
// both an Auth0 domain and OpenID Connect are configured.
func logoutURL(auth0Config auth0.Config, oauth2Config *oauth2.Config) string {
	if oauth2Config == nil {
		return ""
	}
	returnTo := fmt.Sprintf(
		"%s/",
		strings.TrimSuffix(oauth2Config.RedirectURL, "/callback"),
	)
	return auth0Config.LogoutURL(oauth2Config.ClientID, returnTo)
}
