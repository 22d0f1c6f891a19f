package v1

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/heavydata/dms"
)

type urlBuilderTestCase struct {
	description  string
	expectedPath string
	build        func(ub *URLBuilder) (string, error)
}

func makeURLBuilderTestCases() []urlBuilderTestCase {
	id := dms.ObjectID("5fdc3a9d8ea9cdd545cf4c83")

	return []urlBuilderTestCase{
		{
			description:  "test base url",
			expectedPath: "/v1/",
			build: func(ub *URLBuilder) (string, error) {
				return ub.BuildBaseURL()
			},
		},
		{
			description:  "test schema url",
			expectedPath: "/v1/dms0/schema",
			build: func(ub *URLBuilder) (string, error) {
				return ub.BuildSchemaURL("dms0")
			},
		},
		{
			description:  "test collections url",
			expectedPath: "/v1/dms0/ls",
			build: func(ub *URLBuilder) (string, error) {
				return ub.BuildCollectionsURL("dms0")
			},
		},
		{
			description:  "test objects url",
			expectedPath: "/v1/dms0/BeamState",
			build: func(ub *URLBuilder) (string, error) {
				return ub.BuildObjectsURL("dms0", "BeamState")
			},
		},
		{
			description:  "test object list url",
			expectedPath: "/v1/dms0/BeamState/ls",
			build: func(ub *URLBuilder) (string, error) {
				return ub.BuildObjectListURL("dms0", "BeamState")
			},
		},
		{
			description:  "test object url",
			expectedPath: "/v1/dms0/BeamState/5fdc3a9d8ea9cdd545cf4c83",
			build: func(ub *URLBuilder) (string, error) {
				return ub.BuildObjectURL("dms0", "BeamState", id)
			},
		},
		{
			description:  "test attribute url",
			expectedPath: "/v1/dms0/BeamState/5fdc3a9d8ea9cdd545cf4c83/attr?path=beam.length",
			build: func(ub *URLBuilder) (string, error) {
				return ub.BuildAttributeURL("dms0", "BeamState", id, "beam.length")
			},
		},
	}
}

func TestURLBuilder(t *testing.T) {
	roots := []string{
		"http://example.com",
		"https://example.com",
		"http://localhost:5000",
		"https://localhost:5443",
	}

	for _, root := range roots {
		for _, relative := range []bool{true, false} {
			ub, err := NewURLBuilderFromString(root, relative)
			if err != nil {
				t.Fatalf("unexpected error creating urlbuilder: %v", err)
			}

			for _, testCase := range makeURLBuilderTestCases() {
				buildURL, err := testCase.build(ub)
				if err != nil {
					t.Fatalf("%s: error building url: %v", testCase.description, err)
				}

				expectedURL := testCase.expectedPath
				if !relative {
					expectedURL = root + expectedURL
				}

				if buildURL != expectedURL {
					t.Fatalf("%s: %q != %q", testCase.description, buildURL, expectedURL)
				}
			}
		}
	}
}

func TestURLBuilderWithPrefix(t *testing.T) {
	r := &http.Request{
		URL:  &url.URL{Path: "/dms-prefix/v1/dms0/schema"},
		Host: "example.com",
	}

	ub := NewURLBuilderFromRequest(r, false)

	base, err := ub.BuildBaseURL()
	if err != nil {
		t.Fatalf("unexpected error building base url: %v", err)
	}

	if expected := "http://example.com/dms-prefix/v1/"; base != expected {
		t.Fatalf("%q != %q", base, expected)
	}
}
