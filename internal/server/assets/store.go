// Package assets is the boundary to the external binary-object store that
// holds recipe thumbnails. The rest of the server only handles the opaque
// reference strings returned by Store.
package assets

import (
	"context"
	"io"
)

// Object is an upload handed to a Store.
type Object struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// Store persists objects and deletes them by reference.
type Store interface {
	Store(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, ref string) error
}
