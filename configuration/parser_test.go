package configuration

import (
	"os"
	"reflect"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type localConfiguration struct {
	Version Version `yaml:"version"`
	Log     *Log    `yaml:"log"`
}

type Log struct {
	Formatter string `yaml:"formatter,omitempty"`
}

var expectedConfig = localConfiguration{
	Version: "0.1",
	Log: &Log{
		Formatter: "json",
	},
}

const testConfig = `version: "0.1"
log:
  formatter: "text"`

type ParserSuite struct{}

var _ = check.Suite(new(ParserSuite))

func (suite *ParserSuite) TestParserOverwriteInitializedPointer(c *check.C) {
	config := localConfiguration{}

	os.Setenv("DMS_LOG_FORMATTER", "json")
	defer os.Unsetenv("DMS_LOG_FORMATTER")

	p := NewParser("dms", []VersionedParseInfo{
		{
			Version: "0.1",
			ParseAs: reflect.TypeOf(config),
			ConversionFunc: func(c interface{}) (interface{}, error) {
				return c, nil
			},
		},
	})

	err := p.Parse([]byte(testConfig), &config)
	c.Assert(err, check.IsNil)
	c.Assert(config, check.DeepEquals, expectedConfig)
}

func (suite *ParserSuite) TestParserUnsupportedVersion(c *check.C) {
	config := localConfiguration{}

	p := NewParser("dms", []VersionedParseInfo{
		{
			Version: "0.1",
			ParseAs: reflect.TypeOf(config),
			ConversionFunc: func(c interface{}) (interface{}, error) {
				return c, nil
			},
		},
	})

	err := p.Parse([]byte(`version: "42.0"`), &config)
	c.Assert(err, check.NotNil)
}
