package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gorilla/mux"
)

type routeTestCase struct {
	RequestURI string
	Vars       map[string]string
	RouteName  string
	StatusCode int
}

// TestRouter registers a test handler with all the routes and ensures that
// each route returns the expected path variables. No method verification is
// present. This is not meant to be exhaustive but as a check to ensure that
// the expected variables are extracted.
func TestRouter(t *testing.T) {
	t.Parallel()
	tests := []routeTestCase{
		{
			RouteName:  RouteNameBase,
			RequestURI: "/v1/",
			Vars:       map[string]string{},
		},
		{
			RouteName:  RouteNameSchema,
			RequestURI: "/v1/dms0/schema",
			Vars: map[string]string{
				"database": "dms0",
			},
		},
		{
			RouteName:  RouteNameCollections,
			RequestURI: "/v1/dms0/ls",
			Vars: map[string]string{
				"database": "dms0",
			},
		},
		{
			RouteName:  RouteNameObjects,
			RequestURI: "/v1/dms0/BeamState",
			Vars: map[string]string{
				"database":   "dms0",
				"collection": "BeamState",
			},
		},
		{
			RouteName:  RouteNameObjectList,
			RequestURI: "/v1/dms0/BeamState/ls",
			Vars: map[string]string{
				"database":   "dms0",
				"collection": "BeamState",
			},
		},
		{
			RouteName:  RouteNameObject,
			RequestURI: "/v1/dms0/BeamState/5fdc3a9d8ea9cdd545cf4c83",
			Vars: map[string]string{
				"database":   "dms0",
				"collection": "BeamState",
				"id":         "5fdc3a9d8ea9cdd545cf4c83",
			},
		},
		{
			RouteName:  RouteNameAttribute,
			RequestURI: "/v1/dms0/BeamState/5fdc3a9d8ea9cdd545cf4c83/attr",
			Vars: map[string]string{
				"database":   "dms0",
				"collection": "BeamState",
				"id":         "5fdc3a9d8ea9cdd545cf4c83",
			},
		},
		{
			// database names are lower case
			RouteName:  RouteNameSchema,
			RequestURI: "/v1/DMS0/schema",
			StatusCode: http.StatusNotFound,
		},
		{
			// object ids are 24 hex characters
			RouteName:  RouteNameObject,
			RequestURI: "/v1/dms0/BeamState/not-an-id",
			StatusCode: http.StatusNotFound,
		},
	}

	checkTestRouter(t, tests, "", true)
	checkTestRouter(t, tests, "/prefix/", true)
}

func checkTestRouter(t *testing.T, tests []routeTestCase, prefix string, deeplyEqual bool) {
	router := RouterWithPrefix(prefix)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testCase := routeTestCase{
			RequestURI: r.RequestURI,
			Vars:       mux.Vars(r),
			RouteName:  mux.CurrentRoute(r).GetName(),
		}

		enc := json.NewEncoder(w)

		if err := enc.Encode(testCase); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Startup test server
	server := httptest.NewServer(router)
	defer server.Close()

	for _, testcase := range tests {
		if prefix != "" {
			testcase.RequestURI = prefix + testcase.RequestURI[1:]
		}
		// Register the endpoint
		route := router.GetRoute(testcase.RouteName)
		if route == nil {
			t.Fatalf("route for name %q not found", testcase.RouteName)
		}

		route.Handler(testHandler)

		u := server.URL + testcase.RequestURI

		resp, err := http.Get(u)
		if err != nil {
			t.Fatalf("error issuing get request: %v", err)
		}

		if testcase.StatusCode == 0 {
			// Override default, zero-value
			testcase.StatusCode = http.StatusOK
		}

		if resp.StatusCode != testcase.StatusCode {
			t.Fatalf("unexpected status for %s: %v %v", u, resp.Status, resp.StatusCode)
		}

		if testcase.StatusCode != http.StatusOK {
			resp.Body.Close()
			// We don't care about json response.
			continue
		}

		dec := json.NewDecoder(resp.Body)

		var actualRouteInfo routeTestCase
		if err := dec.Decode(&actualRouteInfo); err != nil {
			t.Fatalf("error reading json response: %v", err)
		}
		// Needs to be set out of band
		actualRouteInfo.StatusCode = resp.StatusCode

		if actualRouteInfo.RouteName != testcase.RouteName {
			t.Fatalf("incorrect route %q matched, expected %q", actualRouteInfo.RouteName, testcase.RouteName)
		}

		if deeplyEqual && !reflect.DeepEqual(actualRouteInfo.Vars, testcase.Vars) {
			t.Fatalf("unexpected route: %#v != %#v", actualRouteInfo, testcase)
		}

		resp.Body.Close()
	}
}
