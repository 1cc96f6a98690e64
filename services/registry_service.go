package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/melizalab/nbank-registry/core"
)

// This package-specific helper function writes an error to an
// http.ResponseWriter in the same problem+json form huma uses for errors
// returned by its handlers.
func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(code)
	data, err := json.Marshal(huma.NewError(code, message))
	if err != nil {
		slog.Error(err.Error())
		return
	}
	w.Write(data)
}

// this type encodes a JSON object for responding to root queries
type ServiceInfoResponse struct {
	Name          string `json:"name" example:"neurobank registry" doc:"The name of the service"`
	Version       string `json:"version" example:"0.4.0" doc:"The version string (major.minor.patch)"`
	Uptime        int    `json:"uptime" example:"345600" doc:"The time the service has been up (seconds)"`
	Documentation string `json:"documentation" example:"/docs" doc:"The OpenAPI documentation endpoint"`
	Info          string `json:"info" doc:"URL of the registry info endpoint"`
	Resources     string `json:"resources" doc:"URL of the resource list"`
	DataTypes     string `json:"datatypes" doc:"URL of the datatype list"`
	Archives      string `json:"archives" doc:"URL of the archive list"`
}

// a response for a registry info query (GET)
type InfoResponse struct {
	Name       string `json:"name" example:"django-neurobank" doc:"The name of the registry implementation"`
	Version    string `json:"version" example:"0.4.0" doc:"The registry version"`
	ApiVersion string `json:"api_version" example:"1.0" doc:"The version of the REST API"`
}

// a datatype (GET/POST)
type DataTypeResponse struct {
	Name         string `json:"name" example:"wav-file" doc:"unique datatype name"`
	ContentType  string `json:"content_type,omitempty" example:"audio/wav" doc:"MIME type of resources of this type"`
	Downloadable bool   `json:"downloadable,omitempty" doc:"true if resources of this type can be downloaded"`
	Extension    string `json:"extension,omitempty" example:"wav" doc:"filename extension for downloads"`
}

func dataTypeResponse(dtype core.DataType) DataTypeResponse {
	return DataTypeResponse{
		Name:         dtype.Name,
		ContentType:  dtype.ContentType,
		Downloadable: dtype.Downloadable,
		Extension:    dtype.Extension,
	}
}

// an archive (GET/POST/PATCH)
type ArchiveResponse struct {
	Name   string `json:"name" example:"local" doc:"unique archive name"`
	Scheme string `json:"scheme" example:"neurobank" doc:"resolution scheme for the archive root"`
	Root   string `json:"root" example:"/home/data/archive" doc:"path or URL of the archive"`
}

func archiveResponse(archive core.Archive) ArchiveResponse {
	return ArchiveResponse{Name: archive.Name, Scheme: archive.Scheme, Root: archive.Root}
}

// a resource (GET/POST/PATCH)
type ResourceResponse struct {
	Name        string         `json:"name" example:"st11_1" doc:"unique resource name"`
	Sha1        string         `json:"sha1,omitempty" doc:"SHA1 hash of the resource content"`
	Dtype       string         `json:"dtype" example:"wav-file" doc:"datatype name"`
	Metadata    map[string]any `json:"metadata" doc:"free-form metadata"`
	Locations   []string       `json:"locations" doc:"names of the archives holding the resource"`
	CreatedBy   string         `json:"created_by" doc:"user who registered the resource"`
	CreatedOn   time.Time      `json:"created_on" doc:"time of registration"`
	Filename    string         `json:"filename" example:"st11_1.wav" doc:"suggested filename for downloads"`
	DownloadUrl string         `json:"download_url,omitempty" doc:"URL for downloading the resource, if available"`
}

// a request to register a resource (POST)
type ResourceRequest struct {
	Name      string         `json:"name,omitempty" example:"st11_1" doc:"unique name (generated if not given)"`
	Sha1      string         `json:"sha1,omitempty" doc:"SHA1 hash of the content"`
	Dtype     string         `json:"dtype" example:"wav-file" doc:"datatype name"`
	Metadata  map[string]any `json:"metadata,omitempty" doc:"free-form metadata"`
	Locations []string       `json:"locations,omitempty" doc:"names of archives holding the resource"`
}

// changes to a resource (PATCH)
type ResourcePatchRequest struct {
	Name      *string        `json:"name,omitempty" doc:"must match the current name if given"`
	Sha1      *string        `json:"sha1,omitempty" doc:"SHA1 hash (once set, may be changed only by a superuser)"`
	Dtype     *string        `json:"dtype,omitempty" doc:"datatype name"`
	Metadata  map[string]any `json:"metadata,omitempty" doc:"merged into current metadata; null values remove keys"`
	Locations []string       `json:"locations,omitempty" doc:"archives to add to the resource's locations"`
}

// changes to an archive (PATCH)
type ArchivePatchRequest struct {
	Name   *string `json:"name,omitempty"`
	Scheme *string `json:"scheme,omitempty"`
	Root   *string `json:"root,omitempty"`
}

// a request to add a location (POST)
type LocationRequest struct {
	ArchiveName string `json:"archive_name" example:"local" doc:"name of the archive holding the resource"`
}

// a request naming resources for a bulk query (POST)
type BulkRequest struct {
	Names []string `json:"names,omitempty" doc:"resource names, in the order records are wanted"`
	// location filters (bulk locations only)
	Archive string `json:"archive,omitempty" doc:"case-insensitive substring of the archive name"`
	Scheme  string `json:"scheme,omitempty" doc:"case-insensitive prefix of the archive scheme"`
}

// the locations of one resource, as streamed by a bulk locations query
type ResourceLocationsRecord struct {
	Name      string              `json:"name" example:"st11_1"`
	Filename  string              `json:"filename" example:"st11_1.wav"`
	Locations []core.LocationView `json:"locations"`
}

// RegistryService defines the interface for the registry's HTTP service.
type RegistryService interface {
	// Starts the service on the selected port, returning an error that indicates
	// success or failure.
	Start(port int) error
	// Gracefully shuts down the service without interrupting active connections.
	Shutdown(ctx context.Context) error
	// Closes down the service, freeing all resources.
	Close()
}
