package v1

import (
	"net/http"
)

// APIVersionHeader is set on every response so that clients can verify they
// are talking to a DMS v1 endpoint.
const APIVersionHeader = "DMS-API-Version"

// APIVersion is the value carried by APIVersionHeader.
const APIVersion = "dms/1.0"

const (
	// databaseNameFragment matches database names within a route path. It is
	// the unanchored form of dms.DatabaseNameRegexp.
	databaseNameFragment = `[a-z0-9]+(?:[._-][a-z0-9]+)*`

	// collectionNameFragment matches collection names as they appear in
	// runtime schemas.
	collectionNameFragment = `[A-Za-z_][A-Za-z0-9_]*`

	// objectIDFragment matches the 24 character hex form of an object id.
	objectIDFragment = `[0-9a-fA-F]{24}`
)

var pathParameterDescriptor = ParameterDescriptor{
	Name:        "path",
	Type:        "query",
	Format:      `a.b[0].c`,
	Description: `Dot path to descend through link fields before rendering.`,
}

// APIDescriptor exports descriptions of the layout of the v1 API.
var APIDescriptor = struct {
	// RouteDescriptors provides a list of the routes available in the API.
	RouteDescriptors []RouteDescriptor
}{
	RouteDescriptors: routeDescriptors,
}

// RouteDescriptor describes a route specified by name.
type RouteDescriptor struct {
	// Name is the name of the route, as specified in RouteNameXXX exports.
	// These names a should be considered a unique reference for a route. If
	// the route is registered with gorilla, this is the name that will be
	// used.
	Name string

	// Path is a gorilla/mux-compatible regexp that can be used to match the
	// route. For any incoming method and path, only one route descriptor
	// should match.
	Path string

	// Entity should be a short, human-readable description of the object
	// targeted by the endpoint.
	Entity string

	// Description should provide an accurate overview of the functionality
	// provided by the route.
	Description string

	// Methods should describe the various HTTP methods that may be used on
	// this route, including request and response formats.
	Methods []MethodDescriptor
}

// MethodDescriptor provides a description of the requests that may be
// conducted with the target method.
type MethodDescriptor struct {
	// Method is an HTTP method, such as GET, PUT or POST.
	Method string

	// Description should provide an overview of the functionality provided
	// by the covered method.
	Description string

	// QueryParameters provides a list of query parameters accepted by the
	// method.
	QueryParameters []ParameterDescriptor
}

// ParameterDescriptor describes the format of a request parameter, which may
// be a path variable, a query parameter or a header.
type ParameterDescriptor struct {
	// Name is the name of the parameter, either of the path component or
	// query parameter.
	Name string

	// Type specifies the type of the parameter, such as string, integer, etc.
	Type string

	// Description provides a human-readable description of the parameter.
	Description string

	// Required means the field is required when set.
	Required bool

	// Format is a specifying the string format accepted by this parameter.
	Format string
}

var routeDescriptors = []RouteDescriptor{
	{
		Name:        RouteNameBase,
		Path:        "/v1/",
		Entity:      "Base",
		Description: `Base V1 API route, useful for lightweight version checks and validating client configuration.`,
		Methods: []MethodDescriptor{
			{
				Method:      http.MethodGet,
				Description: "Check that the server supports the DMS V1 API.",
			},
		},
	},
	{
		Name:        RouteNameSchema,
		Path:        "/v1/{database:" + databaseNameFragment + "}/schema",
		Entity:      "Schema",
		Description: "The runtime schema describing the collections of a database.",
		Methods: []MethodDescriptor{
			{
				Method:      http.MethodGet,
				Description: "Fetch the schema currently installed for the database.",
			},
			{
				Method:      http.MethodPut,
				Description: "Install a schema. Fails with SCHEMA_CONFLICT if the database already has one, unless force is set.",
				QueryParameters: []ParameterDescriptor{
					{
						Name:        "force",
						Type:        "boolean",
						Description: `Replace an existing schema instead of failing.`,
					},
				},
			},
		},
	},
	{
		Name:        RouteNameCollections,
		Path:        "/v1/{database:" + databaseNameFragment + "}/ls",
		Entity:      "Collections",
		Description: "The collection names declared by the database schema.",
		Methods: []MethodDescriptor{
			{
				Method:      http.MethodGet,
				Description: "List the collections of the database, in sorted order.",
			},
		},
	},
	{
		Name:        RouteNameObjects,
		Path:        "/v1/{database:" + databaseNameFragment + "}/{collection:" + collectionNameFragment + "}",
		Entity:      "Objects",
		Description: "A collection of documents.",
		Methods: []MethodDescriptor{
			{
				Method:      http.MethodPost,
				Description: "Create a document, recursively creating inline linked documents and resolving relative references.",
			},
		},
	},
	{
		Name:        RouteNameObjectList,
		Path:        "/v1/{database:" + databaseNameFragment + "}/{collection:" + collectionNameFragment + "}/ls",
		Entity:      "Objects",
		Description: "The object ids stored in a collection.",
		Methods: []MethodDescriptor{
			{
				Method:      http.MethodGet,
				Description: "List the object ids of the collection.",
			},
		},
	},
	{
		Name:        RouteNameObject,
		Path:        "/v1/{database:" + databaseNameFragment + "}/{collection:" + collectionNameFragment + "}/{id:" + objectIDFragment + "}",
		Entity:      "Object",
		Description: "A single document, addressed by collection and object id.",
		Methods: []MethodDescriptor{
			{
				Method:      http.MethodGet,
				Description: "Fetch a document, optionally descending a dot path and resolving links.",
				QueryParameters: []ParameterDescriptor{
					pathParameterDescriptor,
					{
						Name:        "max_level",
						Type:        "integer",
						Description: `Resolve links this many levels deep. -1 resolves without limit, 0 omits link fields.`,
					},
					{
						Name:        "meta",
						Type:        "boolean",
						Description: `Include a _meta entry with the id and collection of each resolved object.`,
					},
					{
						Name:        "tracking",
						Type:        "boolean",
						Description: `Return recorded relative references verbatim instead of resolving tracked link fields.`,
					},
				},
			},
			{
				Method:      http.MethodPatch,
				Description: "Update fields of an existing document. Link fields accept object ids only.",
			},
		},
	},
	{
		Name:        RouteNameAttribute,
		Path:        "/v1/{database:" + databaseNameFragment + "}/{collection:" + collectionNameFragment + "}/{id:" + objectIDFragment + "}/attr",
		Entity:      "Attribute",
		Description: "A single non-link attribute of a document.",
		Methods: []MethodDescriptor{
			{
				Method:      http.MethodGet,
				Description: "Fetch one attribute value, traversing link segments in the middle of the path.",
				QueryParameters: []ParameterDescriptor{
					pathParameterDescriptor,
				},
			},
		},
	},
}

var routeDescriptorsMap map[string]RouteDescriptor

func init() {
	routeDescriptorsMap = make(map[string]RouteDescriptor, len(routeDescriptors))

	for _, descriptor := range routeDescriptors {
		routeDescriptorsMap[descriptor.Name] = descriptor
	}
}
