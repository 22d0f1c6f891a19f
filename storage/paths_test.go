package storage

import (
	"testing"

	"github.com/opencontainers/go-digest"

	"github.com/heavydata/dms"
)

func TestPathMapper(t *testing.T) {
	for _, testcase := range []struct {
		spec     pathSpec
		expected string
		err      bool
	}{
		{
			spec:     databasesRootPathSpec{},
			expected: "/dms/v1/databases",
		},
		{
			spec:     schemaPathSpec{database: "production"},
			expected: "/dms/v1/databases/production/schema",
		},
		{
			spec:     objectsRootPathSpec{database: "production", collection: "Beam"},
			expected: "/dms/v1/databases/production/collections/Beam/objects",
		},
		{
			spec: objectDataPathSpec{
				database:   "production",
				collection: "Beam",
				id:         dms.ObjectID("5f1f77bcf86cd799439011aa"),
			},
			expected: "/dms/v1/databases/production/collections/Beam/objects/5f1f77bcf86cd799439011aa/data",
		},
		{
			spec: blobDataPathSpec{
				digest: digest.Digest("sha256:abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789"),
			},
			expected: "/dms/v1/blobs/sha256/ab/abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789/data",
		},
		{
			spec: blobDataPathSpec{digest: digest.Digest("garbage")},
			err:  true,
		},
	} {
		p, err := pathFor(testcase.spec)
		if testcase.err {
			if err == nil {
				t.Fatalf("expected error for spec %#v", testcase.spec)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error mapping %#v: %v", testcase.spec, err)
		}
		if p != testcase.expected {
			t.Fatalf("unexpected path generated: %q != %q", p, testcase.expected)
		}
	}
}
