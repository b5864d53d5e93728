package mongodb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	envconfigPrefix = "MONGODB"
	connectTimeout  = 10 * time.Second
)

// config represents common configuration options for a MongoDB connection
type config struct {
	Host       string `envconfig:"HOST" default:"localhost"`
	Port       int    `envconfig:"PORT" default:"27017"`
	Database   string `envconfig:"DATABASE" required:"true"`
	ReplicaSet string `envconfig:"REPLICA_SET"`
	Username   string `envconfig:"USERNAME"`
	Password   string `envconfig:"PASSWORD"`
}

// connectionString assembles a MongoDB URI from discrete settings.
func (c config) connectionString() string {
	var credentials string
	if c.Username != "" {
		credentials = fmt.Sprintf("%s:%s@", c.Username, c.Password)
	}
	connectionString := fmt.Sprintf(
		"mongodb://%s%s:%d/%s",
		credentials,
		c.Host,
		c.Port,
		c.Database,
	)
	if c.ReplicaSet != "" {
		connectionString =
			fmt.Sprintf("%s?replicaSet=%s", connectionString, c.ReplicaSet)
	}
	return connectionString
}

// Database returns a connection to a MongoDB database specified by environment
// variables. MONGODB_CONNECTION_STRING and MONGODB_DATABASE, when both set,
// take precedence over the discrete MONGODB_* settings.
func Database(ctx context.Context) (*mongo.Database, error) {
	connectionString := os.Getenv("MONGODB_CONNECTION_STRING")
	database := os.Getenv("MONGODB_DATABASE")
	if connectionString == "" {
		c := config{}
		if err := envconfig.Process(envconfigPrefix, &c); err != nil {
			return nil, errors.Wrap(
				err,
				"error getting mongo configuration from environment",
			)
		}
		connectionString = c.connectionString()
		database = c.Database
	}
	if database == "" {
		return nil, errors.New(
			"a value is required for the MONGODB_DATABASE environment variable",
		)
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, connectTimeout)
	defer connectCancel()
	client, err := mongo.Connect(
		connectCtx,
		options.Client().ApplyURI(connectionString).SetWriteConcern(
			writeconcern.Majority(),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to mongo")
	}
	return client.Database(database), nil
}
