package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path"

	"github.com/krancour/bizdesk/internal/file"
	"github.com/krancour/bizdesk/sdk/session"
	"github.com/pkg/errors"
)

type config struct {
	APIAddress string `json:"apiAddress"`
}

func getConfig() (*config, error) {
	configFile, err := getConfigFile()
	if err != nil {
		return nil, err
	}
	if !file.Exists(configFile) {
		return nil, errors.Errorf(
			"no bizdesk configuration was found at %s; please use "+
				"`bizdesk login` to continue",
			configFile,
		)
	}

	configBytes, err := ioutil.ReadFile(configFile)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error reading bizdesk config file at %s",
			configFile,
		)
	}

	config := &config{}
	if err := json.Unmarshal(configBytes, config); err != nil {
		return nil, errors.Wrapf(
			err,
			"error parsing bizdesk config file at %s",
			configFile,
		)
	}

	return config, nil
}

func saveConfig(config *config) error {
	bizdeskHome, err := session.Home()
	if err != nil {
		return errors.Wrap(err, "error finding bizdesk home")
	}
	if err = os.MkdirAll(bizdeskHome, 0700); err != nil {
		return errors.Wrapf(err, "error creating bizdesk home at %s", bizdeskHome)
	}
	configFile := path.Join(bizdeskHome, "config")

	configBytes, err := json.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}
	if err := ioutil.WriteFile(configFile, configBytes, 0644); err != nil {
		return errors.Wrapf(err, "error writing to %s", configFile)
	}
	return nil
}

func deleteConfig() error {
	configFile, err := getConfigFile()
	if err != nil {
		return err
	}
	if !file.Exists(configFile) {
		return nil
	}
	if err := os.Remove(configFile); err != nil {
		return errors.Wrap(err, "error deleting configuration")
	}
	return nil
}

func getConfigFile() (string, error) {
	bizdeskHome, err := session.Home()
	if err != nil {
		return "", errors.Wrap(err, "error finding bizdesk home")
	}
	return path.Join(bizdeskHome, "config"), nil
}
