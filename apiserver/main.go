package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/krancour/accounts/internal/version"
)

func main() {
	// A .env file is a convenience for local development only
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal(err)
	}

	log.Printf(
		"Starting Accounts API Server -- version %s -- commit %s",
		version.Version(),
		version.Commit(),
	)

	apiServer, err := getAPIServerFromEnvironment()
	if err != nil {
		log.Fatal(err)
	}

	log.Println(apiServer.ListenAndServe())
}
