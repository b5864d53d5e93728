package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path"

	"github.com/krancour/accounts/internal/file"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

type config struct {
	APIAddress string `json:"apiAddress"`
	APIToken   string `json:"apiToken"`
}

// homeFn locates the directory the CLI keeps its configuration in. It is
// overridden by tests.
var homeFn = getAccountsHome

func getConfig() (*config, error) {
	accountsHome, err := homeFn()
	if err != nil {
		return nil, errors.Wrapf(err, "error finding accounts home")
	}
	configFile := path.Join(accountsHome, "config")
	if !file.Exists(configFile) {
		return nil, errors.Errorf(
			"no accounts configuration was found at %s; please use "+
				"`accounts login` to continue",
			configFile,
		)
	}

	configBytes, err := ioutil.ReadFile(configFile)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error reading accounts config file at %s",
			configFile,
		)
	}

	config := &config{}
	if err := json.Unmarshal(configBytes, config); err != nil {
		return nil, errors.Wrapf(
			err,
			"error parsing accounts config file at %s",
			configFile,
		)
	}

	return config, nil
}

func saveConfig(config *config) error {
	accountsHome, err := homeFn()
	if err != nil {
		return errors.Wrapf(err, "error finding accounts home")
	}
	if _, err = os.Stat(accountsHome); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(
				err,
				"error checking for existence of accounts home at %s",
				accountsHome,
			)
		}
		if err = os.MkdirAll(accountsHome, 0700); err != nil {
			return errors.Wrapf(
				err,
				"error creating accounts home at %s",
				accountsHome,
			)
		}
	}
	configFile := path.Join(accountsHome, "config")

	configBytes, err := json.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}
	// The file holds a session token.
	if err := ioutil.WriteFile(configFile, configBytes, 0600); err != nil {
		return errors.Wrapf(err, "error writing to %s", configFile)
	}
	return nil
}

func deleteConfig() error {
	accountsHome, err := homeFn()
	if err != nil {
		return errors.Wrapf(err, "error finding accounts home")
	}
	configFile := path.Join(accountsHome, "config")

	if err := os.Remove(configFile); err != nil {
		return errors.Wrap(err, "error deleting configuration")
	}

	return nil
}

func getAccountsHome() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return path.Join(homeDir, ".accounts"), nil
}
