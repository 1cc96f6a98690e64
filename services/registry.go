package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	"github.com/melizalab/nbank-registry/auth"
	"github.com/melizalab/nbank-registry/config"
	"github.com/melizalab/nbank-registry/core"
	"github.com/melizalab/nbank-registry/resolver"
	"github.com/melizalab/nbank-registry/store"
)

// This type implements the RegistryService interface, exposing a registry
// database over HTTP and serving downloads of resources that resolve to
// files on the server.
type registry struct {
	// name of the service
	Name string
	// service version identifier
	Version string
	// time which the service was started
	StartTime time.Time
	// port on which the service currently runs
	Port int
	// router for REST endpoints
	Router *mux.Router
	// API wrapper
	API huma.API
	// HTTP server
	Server *http.Server
	// registry database
	Store *store.Store
	// resolves resources to files for downloads
	Resolver *resolver.Resolver
	// checks credentials for requests that change the registry
	Authenticator *auth.Authenticator
}

// authorizes a client to change the registry, returning the user named in
// the Basic authorization header
func (service *registry) authorize(authorizationHeader string) (store.Actor, error) {
	encoded, found := strings.CutPrefix(authorizationHeader, "Basic ")
	if !found {
		return store.Actor{}, huma.Error401Unauthorized("Authentication credentials were not provided")
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return store.Actor{}, huma.Error401Unauthorized("Invalid authorization header")
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return store.Actor{}, huma.Error401Unauthorized("Invalid authorization header")
	}
	user, err := service.Authenticator.Authenticate(username, password)
	if err != nil {
		return store.Actor{}, huma.Error401Unauthorized(err.Error())
	}
	return store.Actor{Name: user.Name, Superuser: user.IsSuper}, nil
}

type ServiceInfoOutput struct {
	Body ServiceInfoResponse `doc:"information about the service itself"`
}

// handler method for root (no authorization needed for this one)
func (service *registry) getRoot(ctx context.Context,
	input *struct{}) (*ServiceInfoOutput, error) {

	slog.Info("Querying root endpoint...")
	return &ServiceInfoOutput{
		Body: ServiceInfoResponse{
			Name:          service.Name,
			Version:       service.Version,
			Uptime:        int(service.uptime()),
			Documentation: config.Service.BasePath + "/docs",
			Info:          absoluteURL(ctx, "/info/"),
			Resources:     absoluteURL(ctx, "/resources/"),
			DataTypes:     absoluteURL(ctx, "/datatypes/"),
			Archives:      absoluteURL(ctx, "/archives/"),
		},
	}, nil
}

type InfoOutput struct {
	Body InfoResponse `doc:"the registry's name and versions"`
}

func (service *registry) getInfo(ctx context.Context,
	input *struct{}) (*InfoOutput, error) {
	return &InfoOutput{
		Body: InfoResponse{
			Name:       "django-neurobank",
			Version:    service.Version,
			ApiVersion: core.ApiVersion,
		},
	}, nil
}

//-----------
// Datatypes
//-----------

type DataTypeOutput struct {
	Body   DataTypeResponse
	Status int
}

type DataTypesOutput struct {
	Body []DataTypeResponse `doc:"all datatypes, ordered by name"`
}

func (service *registry) getDataTypes(ctx context.Context,
	input *struct{}) (*DataTypesOutput, error) {

	dtypes, err := service.Store.ListDataTypes(ctx)
	if err != nil {
		return nil, registryError(err)
	}
	output := &DataTypesOutput{Body: make([]DataTypeResponse, len(dtypes))}
	for i, dtype := range dtypes {
		output.Body[i] = dataTypeResponse(dtype)
	}
	return output, nil
}

func (service *registry) getDataType(ctx context.Context,
	input *struct {
		Name string `path:"name" example:"wav-file" doc:"the name of a datatype"`
	}) (*DataTypeOutput, error) {

	dtype, err := service.Store.DataType(ctx, input.Name)
	if err != nil {
		return nil, registryError(err)
	}
	return &DataTypeOutput{Body: dataTypeResponse(dtype), Status: http.StatusOK}, nil
}

func (service *registry) createDataType(ctx context.Context,
	input *struct {
		Authorization string           `header:"Authorization" doc:"Basic authorization header"`
		Body          DataTypeResponse `doc:"the new datatype"`
	}) (*DataTypeOutput, error) {

	actor, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("User %s is adding datatype %s...", actor.Name, input.Body.Name))
	dtype := core.DataType{
		Name:         input.Body.Name,
		ContentType:  input.Body.ContentType,
		Downloadable: input.Body.Downloadable,
		Extension:    input.Body.Extension,
	}
	if err := service.Store.CreateDataType(ctx, dtype); err != nil {
		return nil, submissionError(err)
	}
	return &DataTypeOutput{Body: dataTypeResponse(dtype), Status: http.StatusCreated}, nil
}

//----------
// Archives
//----------

type ArchiveOutput struct {
	Body   ArchiveResponse
	Status int
}

type ArchivesOutput struct {
	Body []ArchiveResponse `doc:"archives passing the filters, ordered by name"`
}

func (service *registry) getArchives(ctx context.Context,
	input *struct {
		Name   string `query:"name" doc:"case-insensitive prefix of the archive name"`
		Scheme string `query:"scheme" doc:"case-insensitive prefix of the archive scheme"`
		Root   string `query:"root" doc:"archive root (case-insensitive)"`
	}) (*ArchivesOutput, error) {

	archives, err := service.Store.ListArchives(ctx, store.ArchiveFilter{
		Name:   input.Name,
		Scheme: input.Scheme,
		Root:   input.Root,
	})
	if err != nil {
		return nil, registryError(err)
	}
	output := &ArchivesOutput{Body: make([]ArchiveResponse, len(archives))}
	for i, archive := range archives {
		output.Body[i] = archiveResponse(archive)
	}
	return output, nil
}

func (service *registry) getArchive(ctx context.Context,
	input *struct {
		Name string `path:"name" example:"local" doc:"the name of an archive"`
	}) (*ArchiveOutput, error) {

	archive, err := service.Store.Archive(ctx, input.Name)
	if err != nil {
		return nil, registryError(err)
	}
	return &ArchiveOutput{Body: archiveResponse(archive), Status: http.StatusOK}, nil
}

func (service *registry) createArchive(ctx context.Context,
	input *struct {
		Authorization string          `header:"Authorization" doc:"Basic authorization header"`
		Body          ArchiveResponse `doc:"the new archive"`
	}) (*ArchiveOutput, error) {

	actor, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("User %s is adding archive %s...", actor.Name, input.Body.Name))
	archive := core.Archive{Name: input.Body.Name, Scheme: input.Body.Scheme, Root: input.Body.Root}
	if err := service.Store.CreateArchive(ctx, archive); err != nil {
		return nil, submissionError(err)
	}
	return &ArchiveOutput{Body: archiveResponse(archive), Status: http.StatusCreated}, nil
}

func (service *registry) updateArchive(ctx context.Context,
	input *struct {
		Authorization string              `header:"Authorization" doc:"Basic authorization header"`
		Name          string              `path:"name" example:"local" doc:"the name of an archive"`
		Body          ArchivePatchRequest `doc:"fields to change"`
	}) (*ArchiveOutput, error) {

	actor, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("User %s is updating archive %s...", actor.Name, input.Name))
	archive, err := service.Store.UpdateArchive(ctx, input.Name, store.ArchivePatch{
		Name:   input.Body.Name,
		Scheme: input.Body.Scheme,
		Root:   input.Body.Root,
	})
	if err != nil {
		return nil, registryError(err)
	}
	return &ArchiveOutput{Body: archiveResponse(archive), Status: http.StatusOK}, nil
}

//-----------
// Resources
//-----------

// builds the representation of a resource, including a download URL if
// the resource resolves to a file
func (service *registry) resourceResponse(ctx context.Context, resource core.Resource) ResourceResponse {
	response := ResourceResponse{
		Name:      resource.Name,
		Sha1:      resource.Sha1,
		Dtype:     resource.Dtype.Name,
		Metadata:  resource.Metadata,
		Locations: make([]string, len(resource.Locations)),
		CreatedBy: resource.CreatedBy,
		CreatedOn: resource.CreatedOn,
		Filename:  resource.Filename(),
	}
	for i, loc := range resource.Locations {
		response.Locations[i] = loc.Archive.Name
	}
	if _, err := service.Resolver.ResolveToPath(resource); err == nil {
		response.DownloadUrl = requestInfo(ctx).DownloadBase + url.PathEscape(resource.Name)
	}
	return response
}

type ResourceOutput struct {
	Body   ResourceResponse
	Status int
}

type ResourcesOutput struct {
	Link       string `header:"Link" doc:"links to neighboring pages of results"`
	TotalCount string `header:"X-Total-Count" doc:"the number of resources passing the filters"`
	Body       []ResourceResponse
}

// query parameters for listing resources
type ListResourcesInput struct {
	Name           string `query:"name" doc:"case-insensitive substring of the resource name"`
	Sha1           string `query:"sha1" doc:"case-insensitive substring of the SHA1 hash"`
	Dtype          string `query:"dtype" doc:"case-insensitive substring of the datatype name"`
	Location       string `query:"location" doc:"case-insensitive substring of the name of an archive holding the resource"`
	CreatedBy      string `query:"created_by" doc:"case-insensitive substring of the registering user's name"`
	Scheme         string `query:"scheme" doc:"case-insensitive prefix of the scheme of an archive holding the resource"`
	CreatedOn      string `query:"created_on" example:"2024-01-31" doc:"registration date (YYYY-MM-DD)"`
	CreatedOnYear  int    `query:"created_on__year" example:"2024" doc:"registration year"`
	CreatedOnRange string `query:"created_on__range" example:"2024-01-01,2024-01-31" doc:"inclusive range of registration dates"`
	Page           int    `query:"page" minimum:"1" default:"1" doc:"page of results"`
	PageSize       int    `query:"page_size" minimum:"0" doc:"results per page (default set by the service)"`

	// metadata__ filters, which can't be declared as fields
	metadata []store.MetadataFilter
	// the request URL, for pagination links
	url url.URL
}

// collects metadata filters from the query string
func (input *ListResourcesInput) Resolve(ctx huma.Context) []error {
	input.url = ctx.URL()
	for param, values := range input.url.Query() {
		if filter, ok := store.ParseMetadataFilter(param, values[0]); ok {
			input.metadata = append(input.metadata, filter)
		}
	}
	if input.CreatedOnRange != "" {
		if from, to, found := strings.Cut(input.CreatedOnRange, ","); !found || from == "" || to == "" {
			return []error{&huma.ErrorDetail{
				Location: "query.created_on__range",
				Message:  "expected two dates separated by a comma",
				Value:    input.CreatedOnRange,
			}}
		}
	}
	return nil
}

func (input *ListResourcesInput) filter() store.ResourceFilter {
	filter := store.ResourceFilter{
		Name:          input.Name,
		Sha1:          input.Sha1,
		Dtype:         input.Dtype,
		Location:      input.Location,
		CreatedBy:     input.CreatedBy,
		Scheme:        input.Scheme,
		CreatedOn:     input.CreatedOn,
		CreatedOnYear: input.CreatedOnYear,
		Metadata:      input.metadata,
	}
	if from, to, found := strings.Cut(input.CreatedOnRange, ","); found {
		filter.CreatedAfter, filter.CreatedBefore = strings.TrimSpace(from), strings.TrimSpace(to)
	}
	return filter
}

// Returns a Link header value with first, prev, next, and last links for
// the given page.
func paginationLinks(ctx context.Context, requestURL url.URL, page, pageSize, count int) string {
	if pageSize <= 0 || count <= pageSize {
		return ""
	}
	lastPage := (count + pageSize - 1) / pageSize
	view := clientViewFrom(ctx)
	link := func(n int, rel string) string {
		query := requestURL.Query()
		query.Set("page", strconv.Itoa(n))
		u := url.URL{
			Scheme:   view.scheme,
			Host:     view.host,
			Path:     requestURL.Path,
			RawQuery: query.Encode(),
		}
		return fmt.Sprintf(`<%s>; rel="%s"`, u.String(), rel)
	}
	links := []string{link(1, "first")}
	if page > 1 {
		links = append(links, link(min(page-1, lastPage), "prev"))
	}
	if page < lastPage {
		links = append(links, link(page+1, "next"))
	}
	links = append(links, link(lastPage, "last"))
	return strings.Join(links, ", ")
}

func (service *registry) getResources(ctx context.Context,
	input *ListResourcesInput) (*ResourcesOutput, error) {

	pageSize := input.PageSize
	if pageSize == 0 {
		pageSize = config.Service.PageSize
	}
	page := store.Page{Number: input.Page, Size: pageSize}
	result, err := service.Store.ListResources(ctx, input.filter(), page)
	if err != nil {
		return nil, registryError(err)
	}
	output := &ResourcesOutput{
		Link:       paginationLinks(ctx, input.url, max(input.Page, 1), pageSize, result.Count),
		TotalCount: strconv.Itoa(result.Count),
		Body:       make([]ResourceResponse, len(result.Resources)),
	}
	for i, resource := range result.Resources {
		output.Body[i] = service.resourceResponse(ctx, resource)
	}
	return output, nil
}

func (service *registry) getResource(ctx context.Context,
	input *struct {
		Name string `path:"name" example:"st11_1" doc:"the name of a resource"`
	}) (*ResourceOutput, error) {

	resource, err := service.Store.Resource(ctx, input.Name)
	if err != nil {
		return nil, registryError(err)
	}
	return &ResourceOutput{Body: service.resourceResponse(ctx, resource), Status: http.StatusOK}, nil
}

func (service *registry) createResource(ctx context.Context,
	input *struct {
		Authorization string          `header:"Authorization" doc:"Basic authorization header"`
		Body          ResourceRequest `doc:"the new resource"`
	}) (*ResourceOutput, error) {

	actor, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	resource, err := service.Store.CreateResource(ctx, store.ResourceCreate{
		Name:      input.Body.Name,
		Sha1:      input.Body.Sha1,
		Dtype:     input.Body.Dtype,
		Metadata:  input.Body.Metadata,
		Locations: input.Body.Locations,
	}, actor)
	if err != nil {
		return nil, submissionError(err)
	}
	slog.Info(fmt.Sprintf("User %s registered resource %s", actor.Name, resource.Name))
	return &ResourceOutput{Body: service.resourceResponse(ctx, resource), Status: http.StatusCreated}, nil
}

func (service *registry) updateResource(ctx context.Context,
	input *struct {
		Authorization string               `header:"Authorization" doc:"Basic authorization header"`
		Name          string               `path:"name" example:"st11_1" doc:"the name of a resource"`
		Body          ResourcePatchRequest `doc:"fields to change"`
	}) (*ResourceOutput, error) {

	actor, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("User %s is updating resource %s...", actor.Name, input.Name))
	resource, err := service.Store.UpdateResource(ctx, input.Name, store.ResourcePatch{
		Name:      input.Body.Name,
		Sha1:      input.Body.Sha1,
		Dtype:     input.Body.Dtype,
		Metadata:  input.Body.Metadata,
		Locations: input.Body.Locations,
	}, actor)
	if err != nil {
		return nil, submissionError(err)
	}
	return &ResourceOutput{Body: service.resourceResponse(ctx, resource), Status: http.StatusOK}, nil
}

type DeletionOutput struct {
	Status int
}

func (service *registry) deleteResource(ctx context.Context,
	input *struct {
		Authorization string `header:"Authorization" doc:"Basic authorization header"`
		Name          string `path:"name" example:"st11_1" doc:"the name of a resource"`
	}) (*DeletionOutput, error) {

	actor, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("User %s is deleting resource %s...", actor.Name, input.Name))
	if err := service.Store.DeleteResource(ctx, input.Name, actor); err != nil {
		return nil, registryError(err)
	}
	return &DeletionOutput{Status: http.StatusNoContent}, nil
}

//-----------
// Locations
//-----------

type LocationOutput struct {
	Body   core.LocationView
	Status int
}

type LocationsOutput struct {
	Body []core.LocationView `doc:"the resource's locations, followed by the registry itself if the resource can be downloaded"`
}

func (service *registry) getLocations(ctx context.Context,
	input *struct {
		Name    string `path:"name" example:"st11_1" doc:"the name of a resource"`
		Archive string `query:"archive" doc:"case-insensitive substring of the archive name"`
		Scheme  string `query:"scheme" doc:"case-insensitive prefix of the archive scheme"`
	}) (*LocationsOutput, error) {

	resource, err := service.Store.Resource(ctx, input.Name)
	if err != nil {
		return nil, registryError(err)
	}
	filter := core.LocationFilter{Archive: input.Archive, Scheme: input.Scheme}
	return &LocationsOutput{
		Body: resolver.ListLocations(resource, requestInfo(ctx), filter),
	}, nil
}

func (service *registry) addLocation(ctx context.Context,
	input *struct {
		Authorization string          `header:"Authorization" doc:"Basic authorization header"`
		Name          string          `path:"name" example:"st11_1" doc:"the name of a resource"`
		Body          LocationRequest `doc:"the archive holding the resource"`
	}) (*LocationOutput, error) {

	actor, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("User %s is adding resource %s to archive %s...",
		actor.Name, input.Name, input.Body.ArchiveName))
	location, err := service.Store.AddLocation(ctx, input.Name, input.Body.ArchiveName)
	if err != nil {
		return nil, submissionError(err)
	}
	return &LocationOutput{Body: location.View(), Status: http.StatusCreated}, nil
}

func (service *registry) getLocation(ctx context.Context,
	input *struct {
		Name    string `path:"name" example:"st11_1" doc:"the name of a resource"`
		Archive string `path:"archive" example:"local" doc:"the name of an archive"`
	}) (*LocationOutput, error) {

	location, err := service.Store.Location(ctx, input.Name, input.Archive)
	if err != nil {
		return nil, registryError(err)
	}
	return &LocationOutput{Body: location.View(), Status: http.StatusOK}, nil
}

func (service *registry) deleteLocation(ctx context.Context,
	input *struct {
		Authorization string `header:"Authorization" doc:"Basic authorization header"`
		Name          string `path:"name" example:"st11_1" doc:"the name of a resource"`
		Archive       string `path:"archive" example:"local" doc:"the name of an archive"`
	}) (*DeletionOutput, error) {

	actor, err := service.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("User %s is removing resource %s from archive %s...",
		actor.Name, input.Name, input.Archive))
	if err := service.Store.DeleteLocation(ctx, input.Name, input.Archive, actor); err != nil {
		return nil, registryError(err)
	}
	return &DeletionOutput{Status: http.StatusNoContent}, nil
}

//------------
// Bulk lists
//------------

// checks that a bulk request names at least one resource
func bulkNames(request BulkRequest) ([]string, error) {
	if len(request.Names) == 0 {
		return nil, huma.Error400BadRequest("names: a non-empty list of resource names is required")
	}
	return request.Names, nil
}

// returns a response that writes the given records as newline-delimited JSON
func ndjsonResponse[T any](records []T) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			ctx.SetHeader("Content-Type", "application/x-ndjson")
			ctx.SetStatus(http.StatusOK)
			encoder := json.NewEncoder(ctx.BodyWriter())
			for _, record := range records {
				if err := encoder.Encode(record); err != nil {
					slog.Error(fmt.Sprintf("Couldn't write bulk response: %s", err))
					return
				}
			}
		},
	}
}

func (service *registry) bulkResources(ctx context.Context,
	input *struct {
		Body BulkRequest
	}) (*huma.StreamResponse, error) {

	names, err := bulkNames(input.Body)
	if err != nil {
		return nil, err
	}
	resources, err := service.Store.ResourcesByName(ctx, names)
	if err != nil {
		return nil, registryError(err)
	}
	records := make([]ResourceResponse, len(resources))
	for i, resource := range resources {
		records[i] = service.resourceResponse(ctx, resource)
	}
	return ndjsonResponse(records), nil
}

func (service *registry) bulkLocations(ctx context.Context,
	input *struct {
		Body BulkRequest
	}) (*huma.StreamResponse, error) {

	names, err := bulkNames(input.Body)
	if err != nil {
		return nil, err
	}
	resources, err := service.Store.ResourcesByName(ctx, names)
	if err != nil {
		return nil, registryError(err)
	}
	filter := core.LocationFilter{Archive: input.Body.Archive, Scheme: input.Body.Scheme}
	info := requestInfo(ctx)
	records := make([]ResourceLocationsRecord, 0, len(resources))
	for _, resource := range resources {
		locations := resolver.ListLocations(resource, info, filter)
		if len(locations) == 0 {
			continue
		}
		records = append(records, ResourceLocationsRecord{
			Name:      resource.Name,
			Filename:  resource.Filename(),
			Locations: locations,
		})
	}
	return ndjsonResponse(records), nil
}

// returns the uptime for the service in seconds
func (service *registry) uptime() float64 {
	return time.Since(service.StartTime).Seconds()
}

// constructs a registry service given our configuration and its collaborators
func NewRegistryService(db *store.Store, res *resolver.Resolver,
	authenticator *auth.Authenticator) (RegistryService, error) {
	if db == nil {
		return nil, fmt.Errorf("No registry database was given.")
	}
	if res == nil {
		return nil, fmt.Errorf("No resolver was given.")
	}
	if authenticator == nil {
		return nil, fmt.Errorf("No authenticator was given.")
	}

	service := new(registry)
	service.Name = config.Service.Name
	service.Version = core.Version
	service.Port = -1
	service.Store = db
	service.Resolver = res
	service.Authenticator = authenticator

	// set up routing, with everything mounted under the base path
	service.Router = mux.NewRouter()
	router := service.Router
	if config.Service.BasePath != "" {
		router = service.Router.PathPrefix(config.Service.BasePath).Subrouter()
	}
	router.Use(requestContext)

	// downloads are plain handlers
	router.HandleFunc("/download/", service.downloadBase).Methods("GET", "HEAD")
	router.HandleFunc("/download/{name}", service.download).Methods("GET", "HEAD")
	router.HandleFunc("/download/{name}/", service.download).Methods("GET", "HEAD")

	apiConfig := huma.DefaultConfig(service.Name, service.Version)
	if config.Service.BasePath != "" {
		apiConfig.Servers = []*huma.Server{{URL: config.Service.BasePath}}
	}
	api := humamux.New(router, apiConfig)
	service.API = api

	huma.Get(api, "/", service.getRoot)
	huma.Get(api, "/info/", service.getInfo)

	huma.Get(api, "/datatypes/", service.getDataTypes)
	huma.Post(api, "/datatypes/", service.createDataType)
	huma.Get(api, "/datatypes/{name}/", service.getDataType)

	huma.Get(api, "/archives/", service.getArchives)
	huma.Post(api, "/archives/", service.createArchive)
	huma.Get(api, "/archives/{name}/", service.getArchive)
	huma.Patch(api, "/archives/{name}/", service.updateArchive)

	huma.Get(api, "/resources/", service.getResources)
	huma.Post(api, "/resources/", service.createResource)
	huma.Get(api, "/resources/{name}/", service.getResource)
	huma.Patch(api, "/resources/{name}/", service.updateResource)
	huma.Delete(api, "/resources/{name}/", service.deleteResource)

	huma.Get(api, "/resources/{name}/locations/", service.getLocations)
	huma.Post(api, "/resources/{name}/locations/", service.addLocation)
	huma.Get(api, "/resources/{name}/locations/{archive}/", service.getLocation)
	huma.Delete(api, "/resources/{name}/locations/{archive}/", service.deleteLocation)

	huma.Post(api, "/bulk/resources/", service.bulkResources)
	huma.Post(api, "/bulk/locations/", service.bulkLocations)

	return service, nil
}

// starts the registry service
func (service *registry) Start(port int) error {
	slog.Info(fmt.Sprintf("Starting %s service on port %d...", service.Name, port))
	slog.Info(fmt.Sprintf("(Accepting up to %d connections)", config.Service.MaxConnections))

	service.StartTime = time.Now()

	// create a listener that limits the number of incoming connections
	service.Port = port
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return err
	}
	defer listener.Close()
	listener = netutil.LimitListener(listener, config.Service.MaxConnections)

	// start the server
	service.Server = &http.Server{
		Handler: service.Router}
	err = service.Server.Serve(listener)

	// we don't report the server closing as an error
	if err != http.ErrServerClosed {
		return err
	}
	return nil
}

// gracefully shuts down the service without interrupting active connections
func (service *registry) Shutdown(ctx context.Context) error {
	var err error
	if service.Server != nil {
		err = service.Server.Shutdown(ctx)
	}
	if closeErr := service.Store.Close(); err == nil {
		err = closeErr
	}
	return err
}

// closes down the service abruptly, freeing all resources
func (service *registry) Close() {
	if service.Server != nil {
		service.Server.Close()
	}
	service.Store.Close()
}
