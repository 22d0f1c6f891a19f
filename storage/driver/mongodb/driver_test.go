package mongodb

import (
	"os"
	"testing"

	storagedriver "github.com/heavydata/dms/storage/driver"
	"github.com/heavydata/dms/storage/driver/testsuites"
)

// Test hooks up gocheck into the "go test" runner.
func Test(t *testing.T) { testsuites.Test(t) }

func init() {
	url := os.Getenv("MONGODB_URL")

	driverConstructor := func() (storagedriver.StorageDriver, error) {
		return New(url, "dms_test")
	}

	skipCheck := func() string {
		if url == "" {
			return "MONGODB_URL must be set to run MongoDB driver tests"
		}
		return ""
	}

	testsuites.RegisterSuite(driverConstructor, skipCheck)
}
