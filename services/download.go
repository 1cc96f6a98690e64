package services

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/melizalab/nbank-registry/config"
	"github.com/melizalab/nbank-registry/core"
	"github.com/melizalab/nbank-registry/store"
)

// the download base exists only so clients can build URLs from it
func (service *registry) downloadBase(w http.ResponseWriter, r *http.Request) {
	writeError(w, "not found", http.StatusNotFound)
}

// handler for downloading a resource's content. Downloads aren't huma
// operations because their bodies are files, not JSON.
func (service *registry) download(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	slog.Info(fmt.Sprintf("Downloading resource %s...", name))

	resource, err := service.Store.Resource(r.Context(), name)
	if err != nil {
		var notFound store.NotFoundError
		if errors.As(err, &notFound) {
			writeError(w, err.Error(), http.StatusNotFound)
		} else {
			slog.Error(err.Error())
			writeError(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	filePath, err := service.Resolver.ResolveToPath(resource)
	if err != nil {
		writeError(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}

	contentType := resource.Dtype.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(resource))

	switch config.Sendfile.Backend {
	case config.SendfileNginx:
		sendNginx(w, filePath)
	default:
		sendSimple(w, r, filePath)
	}
}

func contentDisposition(resource core.Resource) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": resource.Filename()})
}

// streams the file from this process
func sendSimple(w http.ResponseWriter, r *http.Request, filePath string) {
	file, err := os.Open(filePath)
	if err != nil {
		slog.Error(fmt.Sprintf("Couldn't open %s: %s", filePath, err))
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		slog.Error(fmt.Sprintf("Couldn't stat %s: %s", filePath, err))
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

// Returns the internal nginx URL for a file, formed by replacing the sendfile
// root with the sendfile URL.
func accelRedirect(filePath string) (string, error) {
	rel, err := filepath.Rel(config.Sendfile.Root, filePath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside of the sendfile root %s", filePath, config.Sendfile.Root)
	}
	redirect := path.Join(config.Sendfile.URL, filepath.ToSlash(rel))
	if !strings.HasPrefix(redirect, "/") {
		redirect = "/" + redirect
	}
	return redirect, nil
}

// hands the transfer off to a fronting nginx server
func sendNginx(w http.ResponseWriter, filePath string) {
	redirect, err := accelRedirect(filePath)
	if err != nil {
		slog.Error(err.Error())
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("X-Accel-Redirect", redirect)
	w.WriteHeader(http.StatusOK)
}
