package v1

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/heavydata/dms"
)

// URLBuilder creates API urls from a single base endpoint. It can be used to
// create urls for use in a DMS client or server.
//
// All urls will be created from the given base, including the api version.
// For example, if a root of "/foo/" is provided, urls generated will be
// fashioned with "/foo/v1/...".
type URLBuilder struct {
	root     *url.URL // url root (ie http://localhost/)
	router   *mux.Router
	relative bool
}

// NewURLBuilder creates a URLBuilder with provided root url object.
func NewURLBuilder(root *url.URL, relative bool) *URLBuilder {
	return &URLBuilder{
		root:     root,
		router:   Router(),
		relative: relative,
	}
}

// NewURLBuilderFromString workes identically to NewURLBuilder except it takes
// a string argument for the root, returning an error if it is not a valid
// url.
func NewURLBuilderFromString(root string, relative bool) (*URLBuilder, error) {
	u, err := url.Parse(root)
	if err != nil {
		return nil, err
	}

	return NewURLBuilder(u, relative), nil
}

// NewURLBuilderFromRequest uses information from an *http.Request to
// construct the root url.
func NewURLBuilderFromRequest(r *http.Request, relative bool) *URLBuilder {
	var (
		scheme = "http"
		host   = r.Host
	)

	if r.TLS != nil {
		scheme = "https"
	} else if len(r.URL.Scheme) > 0 {
		scheme = r.URL.Scheme
	}

	basePath := routeDescriptorsMap[RouteNameBase].Path

	requestPath := r.URL.Path
	index := strings.Index(requestPath, basePath)

	u := &url.URL{
		Scheme: scheme,
		Host:   host,
	}

	if index > 0 {
		// The index+1 is important because we want to include the trailing
		// slash of the prefix.
		u.Path = requestPath[0 : index+1]
	}

	return NewURLBuilder(u, relative)
}

// BuildBaseURL constructs a base url for the API, typically just "/v1/".
func (ub *URLBuilder) BuildBaseURL() (string, error) {
	route := ub.cloneRoute(RouteNameBase)

	baseURL, err := route.URL()
	if err != nil {
		return "", err
	}

	return baseURL.String(), nil
}

// BuildSchemaURL constructs a url for the schema of the given database.
func (ub *URLBuilder) BuildSchemaURL(database string) (string, error) {
	route := ub.cloneRoute(RouteNameSchema)

	schemaURL, err := route.URL("database", database)
	if err != nil {
		return "", err
	}

	return schemaURL.String(), nil
}

// BuildCollectionsURL constructs a url to list the collections of a database.
func (ub *URLBuilder) BuildCollectionsURL(database string) (string, error) {
	route := ub.cloneRoute(RouteNameCollections)

	collectionsURL, err := route.URL("database", database)
	if err != nil {
		return "", err
	}

	return collectionsURL.String(), nil
}

// BuildObjectsURL constructs a url for creating documents in a collection.
func (ub *URLBuilder) BuildObjectsURL(database, collection string) (string, error) {
	route := ub.cloneRoute(RouteNameObjects)

	objectsURL, err := route.URL("database", database, "collection", collection)
	if err != nil {
		return "", err
	}

	return objectsURL.String(), nil
}

// BuildObjectListURL constructs a url to list the object ids of a collection.
func (ub *URLBuilder) BuildObjectListURL(database, collection string) (string, error) {
	route := ub.cloneRoute(RouteNameObjectList)

	listURL, err := route.URL("database", database, "collection", collection)
	if err != nil {
		return "", err
	}

	return listURL.String(), nil
}

// BuildObjectURL constructs a url for the document identified by database,
// collection and object id.
func (ub *URLBuilder) BuildObjectURL(database, collection string, id dms.ObjectID) (string, error) {
	route := ub.cloneRoute(RouteNameObject)

	objectURL, err := route.URL("database", database, "collection", collection, "id", id.String())
	if err != nil {
		return "", err
	}

	return objectURL.String(), nil
}

// BuildAttributeURL constructs a url for the attr endpoint of a document.
func (ub *URLBuilder) BuildAttributeURL(database, collection string, id dms.ObjectID, path string) (string, error) {
	route := ub.cloneRoute(RouteNameAttribute)

	attrURL, err := route.URL("database", database, "collection", collection, "id", id.String())
	if err != nil {
		return "", err
	}

	q := attrURL.Query()
	q.Set("path", path)
	attrURL.RawQuery = q.Encode()

	return attrURL.String(), nil
}

// cloneRoute returns a clone of the named route from the internal routing
// table. Routes must be cloned to avoid modifying them during url generation.
func (ub *URLBuilder) cloneRoute(name string) clonedRoute {
	route := new(mux.Route)
	root := new(url.URL)

	*route = *ub.router.GetRoute(name) // clone the route
	*root = *ub.root

	return clonedRoute{Route: route, root: root, relative: ub.relative}
}

type clonedRoute struct {
	*mux.Route
	root     *url.URL
	relative bool
}

func (cr clonedRoute) URL(pairs ...string) (*url.URL, error) {
	routeURL, err := cr.Route.URL(pairs...)
	if err != nil {
		return nil, err
	}

	if cr.relative {
		return routeURL, nil
	}

	if routeURL.Scheme == "" && routeURL.User == nil && routeURL.Host == "" {
		routeURL.Path = routeURL.Path[1:]
	}

	url := cr.root.ResolveReference(routeURL)
	url.Scheme = cr.root.Scheme
	return url, nil
}
