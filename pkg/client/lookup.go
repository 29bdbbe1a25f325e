package client

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/example/libnfs/pkg/api"
)

// MaxSymlinks bounds the number of symbolic links followed while resolving
// one path.
const MaxSymlinks = 40

// splitPath cleans p and returns its components below the root.
func splitPath(p string) []string {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil
	}
	return strings.Split(p[1:], "/")
}

// LookupPath resolves a file path to a file handle, starting from the root
func (c *Client) LookupPath(ctx context.Context, p string) ([]byte, error) {
	handle, _, err := c.Walk(ctx, p, true)
	return handle, err
}

// Walk resolves p one component at a time from the mount root. Symbolic
// links met along the way are followed; the final component is followed
// only if followLast is set. Absolute link targets are taken relative to
// the mount root; relative ones are joined to the link's directory and
// walked again from the root.
func (c *Client) Walk(ctx context.Context, p string, followLast bool) ([]byte, *api.FileAttributes, error) {
	handle, attrs, err := c.walk(ctx, p, followLast)
	if errors.Is(err, ErrStale) {
		// a cached directory went away under us; retry from the root
		c.handleCache.Clear()
		handle, attrs, err = c.walk(ctx, p, followLast)
	}
	return handle, attrs, err
}

func (c *Client) walk(ctx context.Context, p string, followLast bool) ([]byte, *api.FileAttributes, error) {
	root, err := c.GetRootFileHandle(ctx)
	if err != nil {
		return nil, nil, err
	}

	components := splitPath(p)
	handle := root
	current := "/"
	var attrs *api.FileAttributes

	// start from the deepest cached directory on the plain path
	for i := len(components) - 1; i > 0; i-- {
		prefix := "/" + strings.Join(components[:i], "/")
		if h, ok := c.handleCache.GetHandle(prefix); ok {
			handle, current, components = h, prefix, components[i:]
			break
		}
	}

	links := 0
	for i := 0; i < len(components); i++ {
		name := components[i]
		h, a, err := c.Lookup(ctx, handle, name)
		if err != nil {
			return nil, nil, err
		}
		last := i == len(components)-1

		if a.Type == api.FileType_SYMLINK && (!last || followLast) {
			links++
			if links > MaxSymlinks {
				return nil, nil, fmt.Errorf("resolve %s: %w", p, unix.ELOOP)
			}
			target, err := c.Readlink(ctx, h)
			if err != nil {
				return nil, nil, err
			}
			if !strings.HasPrefix(target, "/") {
				target = path.Join(current, target)
			}
			components, i = append(splitPath(target), components[i+1:]...), -1
			handle, current = root, "/"
			attrs = nil
			continue
		}

		current = path.Join(current, name)
		if a.Type == api.FileType_DIRECTORY {
			c.handleCache.StorePathHandle(current, h)
			c.handleCache.StoreHandlePath(h, current)
		}
		handle, attrs = h, a
	}

	if attrs == nil {
		if attrs, err = c.GetAttr(ctx, handle); err != nil {
			return nil, nil, err
		}
	}
	return handle, attrs, nil
}

// Forget drops cached handles for p and everything below it.
func (c *Client) Forget(p string) {
	c.handleCache.Invalidate(path.Clean("/" + p))
}
