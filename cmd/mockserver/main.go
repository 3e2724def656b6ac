// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/goccy/go-json"
	"github.com/joeshaw/envdecode"
	"github.com/relabs-tech/utilities/core/logger"
	"github.com/relabs-tech/utilities/core/mockserver"
	"github.com/relabs-tech/utilities/core/schema"
	"github.com/sirupsen/logrus"
)

var configurationJSON string = `
{
	"collections": [
	  {
		"resource": "widget",
		"items": [
		  { "id": "1", "name": "first" },
		  { "id": "2", "name": "second" }
		]
	  },
	  {
		"resource": "widget/part",
		"items": [
		  { "id": "1", "widget_id": "1", "name": "wheel" }
		]
	  }
	],
	"singletons": [
	  {
		"resource": "settings",
		"operations": ["read", "update"],
		"items": [
		  { "theme": "light" }
		]
	  }
	]
}
`

// Service holds the configuration for this service
//
// use SEED_FILE=seed.json to serve your own collections, SCHEMA_DIR=schemas to validate
// bodies against the JSON schemas in that directory
type Service struct {
	Port      int    `env:"PORT,default=3000" description:"the port to listen on"`
	SeedFile  string `env:"SEED_FILE,optional" description:"JSON file with the collections to serve"`
	SchemaDir string `env:"SCHEMA_DIR,optional" description:"directory with JSON schemas, with referenced schemas in a refs subdirectory"`
	LogLevel  string `env:"LOG_LEVEL,default=info" description:"the log level"`
}

// Configuration is the content of the seed file
type Configuration struct {
	Collections []mockserver.Collection `json:"collections"`
	Singletons  []mockserver.Singleton  `json:"singletons"`
}

func main() {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}

	level, err := logrus.ParseLevel(service.LogLevel)
	if err != nil {
		panic(err)
	}
	logger.InitLogger(level)

	server, err := newServer(service)
	if err != nil {
		logger.Default().WithError(err).Fatalln("cannot create mock server")
	}

	logger.Default().Infoln("serving", server.Resources())
	logger.Default().Infof("listen on port :%d", service.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", service.Port), server); err != nil {
		logger.Default().WithError(err).Fatalln("server stopped")
	}
}

func newServer(service *Service) (*mockserver.Server, error) {
	data := []byte(configurationJSON)
	if service.SeedFile != "" {
		var err error
		data, err = os.ReadFile(service.SeedFile)
		if err != nil {
			return nil, err
		}
	}
	var config Configuration
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var validator *schema.Validator
	if service.SchemaDir != "" {
		var err error
		validator, err = schema.NewValidatorFromFS(os.DirFS(service.SchemaDir), ".")
		if err != nil {
			return nil, err
		}
	}

	return mockserver.New(&mockserver.Builder{
		Prefix:      "/api",
		Collections: config.Collections,
		Singletons:  config.Singletons,
		Validator:   validator,
	}), nil
}
