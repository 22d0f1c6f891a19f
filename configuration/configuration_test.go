package configuration

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v2"
)

// configStruct is a canonical example configuration, which should map to configYamlV0_1
var configStruct = Configuration{
	Version: "0.1",
	Log: struct {
		Level     Loglevel               `yaml:"level"`
		Formatter string                 `yaml:"formatter,omitempty"`
		Fields    map[string]interface{} `yaml:"fields,omitempty"`
	}{
		Level:  "info",
		Fields: map[string]interface{}{"environment": "test"},
	},
	Storage: Storage{
		"somedriver": Parameters{
			"string1": "string-value1",
			"bool1":   true,
			"int1":    42,
			"path1":   "/some-path",
		},
	},
	Cache: Cache{
		"inmemory": Parameters{
			"size": 512,
		},
	},
	Notifications: Notifications{
		Endpoints: []Endpoint{
			{
				Name: "endpoint-1",
				URL:  "http://example.com",
				Headers: http.Header{
					"Authorization": []string{"Bearer <example>"},
				},
				Timeout:   500 * time.Millisecond,
				Threshold: 5,
				Backoff:   time.Second,
			},
		},
	},
}

// configYamlV0_1 is a Version 0.1 yaml document representing configStruct
const configYamlV0_1 = `
version: 0.1
log:
  level: info
  fields:
    environment: test
storage:
  somedriver:
    string1: string-value1
    bool1: true
    int1: 42
    path1: /some-path
cache:
  inmemory:
    size: 512
notifications:
  endpoints:
    - name: endpoint-1
      url:  http://example.com
      headers:
        Authorization: [Bearer <example>]
      timeout: 500ms
      threshold: 5
      backoff: 1s
`

// inmemoryConfigYamlV0_1 is a Version 0.1 yaml document specifying an inmemory
// storage driver with no parameters
const inmemoryConfigYamlV0_1 = `
version: 0.1
log:
  level: info
storage: inmemory
`

type ConfigSuite struct {
	suite.Suite
	expectedConfig *Configuration
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (suite *ConfigSuite) SetupTest() {
	suite.expectedConfig = copyConfig(configStruct)
}

// TestMarshalRoundtrip validates that configStruct can be marshaled and
// unmarshaled without changing any parameters
func (suite *ConfigSuite) TestMarshalRoundtrip() {
	configBytes, err := yaml.Marshal(suite.expectedConfig)
	suite.Require().NoError(err)
	config, err := Parse(bytes.NewReader(configBytes))
	suite.T().Log(string(configBytes))
	suite.Require().NoError(err)
	suite.Require().Equal(suite.expectedConfig, config)
}

// TestParseSimple validates that configYamlV0_1 can be parsed into a struct
// matching configStruct
func (suite *ConfigSuite) TestParseSimple() {
	config, err := Parse(bytes.NewReader([]byte(configYamlV0_1)))
	suite.Require().NoError(err)
	suite.Require().Equal(suite.expectedConfig, config)
}

// TestParseInmemory validates that configuration yaml with storage provided as
// a string can be parsed into a Configuration struct with no storage parameters
func (suite *ConfigSuite) TestParseInmemory() {
	suite.expectedConfig.Storage = Storage{"inmemory": Parameters{}}
	suite.expectedConfig.Log.Fields = nil
	suite.expectedConfig.Cache = nil
	suite.expectedConfig.Notifications = Notifications{}

	config, err := Parse(bytes.NewReader([]byte(inmemoryConfigYamlV0_1)))
	suite.Require().NoError(err)
	suite.Require().Equal(suite.expectedConfig, config)
}

// TestParseIncomplete validates that an incomplete yaml configuration cannot
// be parsed without providing environment variables to fill in the missing
// components.
func (suite *ConfigSuite) TestParseIncomplete() {
	incompleteConfigYaml := "version: 0.1"
	_, err := Parse(bytes.NewReader([]byte(incompleteConfigYaml)))
	suite.Require().Error(err)

	suite.expectedConfig.Log.Fields = nil
	suite.expectedConfig.Storage = Storage{"filesystem": Parameters{"rootdirectory": "/tmp/testroot"}}
	suite.expectedConfig.Cache = nil
	suite.expectedConfig.Notifications = Notifications{}

	// Note: this also tests that DMS_STORAGE and
	// DMS_STORAGE_FILESYSTEM_ROOTDIRECTORY can be used together
	suite.T().Setenv("DMS_STORAGE", "filesystem")
	suite.T().Setenv("DMS_STORAGE_FILESYSTEM_ROOTDIRECTORY", "/tmp/testroot")

	config, err := Parse(bytes.NewReader([]byte(incompleteConfigYaml)))
	suite.Require().NoError(err)
	suite.Require().Equal(suite.expectedConfig, config)
}

// TestParseWithSameEnvStorage validates that providing environment variables
// that match the given storage type will only include environment-defined
// parameters and remove yaml-defined parameters
func (suite *ConfigSuite) TestParseWithSameEnvStorage() {
	suite.expectedConfig.Storage = Storage{"somedriver": Parameters{"region": "us-east-1"}}

	suite.T().Setenv("DMS_STORAGE", "somedriver")
	suite.T().Setenv("DMS_STORAGE_SOMEDRIVER_REGION", "us-east-1")

	config, err := Parse(bytes.NewReader([]byte(configYamlV0_1)))
	suite.Require().NoError(err)
	suite.Require().Equal(suite.expectedConfig, config)
}

// TestParseWithDifferentEnvStorageParams validates that providing environment variables that change
// and add to the given storage parameters will change and add parameters to the parsed
// Configuration struct
func (suite *ConfigSuite) TestParseWithDifferentEnvStorageParams() {
	suite.expectedConfig.Storage.setParameter("string1", "us-west-1")
	suite.expectedConfig.Storage.setParameter("bool1", true)
	suite.expectedConfig.Storage.setParameter("newparam", "some Value")

	suite.T().Setenv("DMS_STORAGE_SOMEDRIVER_STRING1", "us-west-1")
	suite.T().Setenv("DMS_STORAGE_SOMEDRIVER_BOOL1", "true")
	suite.T().Setenv("DMS_STORAGE_SOMEDRIVER_NEWPARAM", "some Value")

	config, err := Parse(bytes.NewReader([]byte(configYamlV0_1)))
	suite.Require().NoError(err)
	suite.Require().Equal(suite.expectedConfig, config)
}

// TestParseWithDifferentEnvCache validates that providing an environment
// variable that changes the cache provider is reflected in the parsed
// Configuration struct
func (suite *ConfigSuite) TestParseWithDifferentEnvCache() {
	suite.expectedConfig.Cache = Cache{"redis": Parameters{"addr": "localhost:6379"}}

	suite.T().Setenv("DMS_CACHE", "redis")
	suite.T().Setenv("DMS_CACHE_REDIS_ADDR", "localhost:6379")

	config, err := Parse(bytes.NewReader([]byte(configYamlV0_1)))
	suite.Require().NoError(err)
	suite.Require().Equal(suite.expectedConfig, config)
}

// TestParseWithSameEnvLoglevel validates that providing an environment variable defining the log
// level to the same as the one provided in the yaml will not change the parsed Configuration struct
func (suite *ConfigSuite) TestParseWithSameEnvLoglevel() {
	suite.T().Setenv("DMS_LOG_LEVEL", "info")

	config, err := Parse(bytes.NewReader([]byte(configYamlV0_1)))
	suite.Require().NoError(err)
	suite.Require().Equal(suite.expectedConfig, config)
}

// TestParseWithDifferentEnvLoglevel validates that providing an environment variable defining the
// log level will override the value provided in the yaml document
func (suite *ConfigSuite) TestParseWithDifferentEnvLoglevel() {
	suite.expectedConfig.Log.Level = "error"

	suite.T().Setenv("DMS_LOG_LEVEL", "error")

	config, err := Parse(bytes.NewReader([]byte(configYamlV0_1)))
	suite.Require().NoError(err)
	suite.Require().Equal(suite.expectedConfig, config)
}

// TestParseInvalidLoglevel validates that the parser will fail to parse a
// configuration if the loglevel is malformed
func (suite *ConfigSuite) TestParseInvalidLoglevel() {
	invalidConfigYaml := "version: 0.1\nlog:\n  level: derp\nstorage: inmemory"
	_, err := Parse(bytes.NewReader([]byte(invalidConfigYaml)))
	suite.Require().Error(err)

	suite.T().Setenv("DMS_LOG_LEVEL", "derp")

	_, err = Parse(bytes.NewReader([]byte(configYamlV0_1)))
	suite.Require().Error(err)
}

// TestParseInvalidVersion validates that the parser will fail to parse a newer configuration
// version than the CurrentVersion
func (suite *ConfigSuite) TestParseInvalidVersion() {
	suite.expectedConfig.Version = MajorMinorVersion(CurrentVersion.Major(), CurrentVersion.Minor()+1)
	configBytes, err := yaml.Marshal(suite.expectedConfig)
	suite.Require().NoError(err)
	_, err = Parse(bytes.NewReader(configBytes))
	suite.Require().Error(err)
}

// TestParseHTTP validates that the HTTP section is parsed, including the
// debug sub-section and duration values
func (suite *ConfigSuite) TestParseHTTP() {
	yamlWithHTTP := configYamlV0_1 + `
http:
  addr: :8080
  prefix: /dms/
  draintimeout: 10s
  debug:
    addr: :8081
    prometheus:
      enabled: true
      path: /metrics
`
	config, err := Parse(bytes.NewReader([]byte(yamlWithHTTP)))
	suite.Require().NoError(err)
	suite.Require().Equal(":8080", config.HTTP.Addr)
	suite.Require().Equal("/dms/", config.HTTP.Prefix)
	suite.Require().Equal(10*time.Second, config.HTTP.DrainTimeout)
	suite.Require().Equal(":8081", config.HTTP.Debug.Addr)
	suite.Require().True(config.HTTP.Debug.Prometheus.Enabled)
	suite.Require().Equal("/metrics", config.HTTP.Debug.Prometheus.Path)
}

func (suite *ConfigSuite) TestParseHealth() {
	yamlWithHealth := configYamlV0_1 + `
health:
  storagedriver:
    enabled: true
    interval: 5s
    threshold: 3
  tcp:
    - addr: backend:3306
      timeout: 3s
      interval: 10s
`
	config, err := Parse(bytes.NewReader([]byte(yamlWithHealth)))
	suite.Require().NoError(err)
	suite.Require().True(config.Health.StorageDriver.Enabled)
	suite.Require().Equal(5*time.Second, config.Health.StorageDriver.Interval)
	suite.Require().Equal(3, config.Health.StorageDriver.Threshold)
	suite.Require().Len(config.Health.TCPCheckers, 1)
	suite.Require().Equal("backend:3306", config.Health.TCPCheckers[0].Addr)
	suite.Require().Equal(3*time.Second, config.Health.TCPCheckers[0].Timeout)
}

func copyConfig(config Configuration) *Configuration {
	configCopy := new(Configuration)

	configCopy.Version = MajorMinorVersion(config.Version.Major(), config.Version.Minor())
	configCopy.Log = config.Log
	configCopy.Log.Fields = make(map[string]interface{}, len(config.Log.Fields))
	for k, v := range config.Log.Fields {
		configCopy.Log.Fields[k] = v
	}

	configCopy.Storage = Storage{config.Storage.Type(): Parameters{}}
	for k, v := range config.Storage.Parameters() {
		configCopy.Storage.setParameter(k, v)
	}

	if config.Cache != nil {
		configCopy.Cache = Cache{config.Cache.Type(): Parameters{}}
		for k, v := range config.Cache.Parameters() {
			configCopy.Cache.setParameter(k, v)
		}
	}

	configCopy.Notifications = Notifications{Endpoints: []Endpoint{}}
	configCopy.Notifications.Endpoints = append(configCopy.Notifications.Endpoints, config.Notifications.Endpoints...)

	configCopy.HTTP = config.HTTP

	return configCopy
}
