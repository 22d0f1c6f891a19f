package filesystem

import (
	"os"
	"testing"

	storagedriver "github.com/heavydata/dms/storage/driver"
	"github.com/heavydata/dms/storage/driver/testsuites"
)

// Test hooks up gocheck into the "go test" runner.
func Test(t *testing.T) { testsuites.Test(t) }

func init() {
	root, err := os.MkdirTemp("", "driver-")
	if err != nil {
		panic(err)
	}

	driverConstructor := func() (storagedriver.StorageDriver, error) {
		return New(DriverParameters{RootDirectory: root}), nil
	}
	testsuites.RegisterSuite(driverConstructor, testsuites.NeverSkip)
}

func TestFromParametersImpl(t *testing.T) {
	tests := []struct {
		params   map[string]interface{}
		expected DriverParameters
		fail     bool
	}{
		{
			params:   map[string]interface{}{},
			expected: DriverParameters{RootDirectory: defaultRootDirectory},
		},
		{
			params:   map[string]interface{}{"rootdirectory": "/tmp/testroot"},
			expected: DriverParameters{RootDirectory: "/tmp/testroot"},
		},
		{
			params: map[string]interface{}{"rootdirectory": 42},
			fail:   true,
		},
	}

	for _, tt := range tests {
		params, err := fromParametersImpl(tt.params)
		if tt.fail {
			if err == nil {
				t.Fatalf("expected error for parameters %v", tt.params)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *params != tt.expected {
			t.Fatalf("unexpected parameters: %v != %v", *params, tt.expected)
		}
	}
}
