package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// The Resource type wraps a streamable mesh file or remote resource.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns the lowercased file extension (including the leading dot) of the
// resource path. Query strings of remote resources are ignored.
func (r *Resource) Ext() string {
	return strings.ToLower(path.Ext(r.url.Path))
}

// Returns the resource name without any leading directories.
func (r *Resource) Name() string {
	return path.Base(r.url.Path)
}

// Return the path to this resource on the local filesystem. The second
// return value is false if this is a remote or in-memory resource.
func (r *Resource) LocalPath() (string, bool) {
	if r.IsRemote() || r.url.Path == "" {
		return "", false
	}
	if _, err := os.Stat(r.url.Path); err != nil {
		return "", false
	}
	return r.url.Path, true
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Create a new Resource data stream. If relTo is specified and pathToResource
// does not define a scheme, then the path to the new Resource will be generated
// by concatenating the base path of relTo and pathToResource.
//
// Remote meshes are fetched using the net/http package. The caller must close
// the returned Resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	// Replace backslashes with forward slashes and try parsing as a URL
	resURL, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	// If this is a relative url, clone parent url and adjust its path
	if resURL.Scheme == "" && relTo != nil && !filepath.IsAbs(resURL.Path) {
		relPath := resURL.Path
		resURL, _ = url.Parse(relTo.url.String())
		prefix := resURL.Path
		if resURL.Scheme == "" {
			prefix, err = filepath.Abs(relTo.url.String())
			if err != nil {
				return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.url.String(), err.Error())
			}
		}
		resURL.Path = path.Join(filepath.ToSlash(filepath.Dir(prefix)), relPath)
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "":
		resURL.Path = filepath.Clean(resURL.Path)
		reader, err = os.Open(resURL.Path)
		if err != nil {
			return nil, fmt.Errorf("resource: %w", err)
		}
	case "http", "https":
		resp, err := http.Get(resURL.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %s", resURL.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", resURL.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", resURL.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        resURL,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	resURL, err := url.Parse(name)
	if err != nil {
		resURL = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        resURL,
	}
}
