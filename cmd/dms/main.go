package main

import (
	"os"

	_ "net/http/pprof"

	_ "github.com/heavydata/dms/storage/cache/memory"
	_ "github.com/heavydata/dms/storage/cache/redis"
	_ "github.com/heavydata/dms/storage/driver/filesystem"
	_ "github.com/heavydata/dms/storage/driver/inmemory"
	_ "github.com/heavydata/dms/storage/driver/mongodb"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
