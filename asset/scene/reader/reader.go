package reader

import (
	"fmt"

	"github.com/achilleasa/octrace/asset"
	"github.com/achilleasa/octrace/asset/scene"
)

// Options that control how a scene is loaded and indexed.
type Options struct {
	// Octree depth limit. A zero value selects scene.DefaultMaxDepth.
	OctreeDepth int

	// Fit the octree bounds to the scene geometry when the scene does not
	// define octree_bounds. When false, scene.DefaultBounds is used.
	FitBounds bool
}

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or http(s) URL.
func ReadScene(filename string, opts Options) (*scene.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return Read(res, opts)
}

// Read scene from a resource. The reader is selected based on the resource
// file extension.
func Read(res *asset.Resource, opts Options) (*scene.Scene, error) {
	var reader Reader
	switch res.Ext() {
	case ".obj":
		reader = newWavefrontReader(opts)
	default:
		return nil, fmt.Errorf("reader: unsupported scene format %q", res.Ext())
	}
	return reader.Read(res)
}
