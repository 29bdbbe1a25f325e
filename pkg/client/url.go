package client

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Scheme is the URL scheme of remote paths.
const Scheme = "nfs"

// URL is a parsed nfs://server[:port]/path address.
type URL struct {
	// Server is host:port, ready to dial.
	Server string
	Host   string
	Port   int

	// Path is the directory to mount. For ParseURL it excludes File.
	Path string
	// File is the final component, set by ParseURL only.
	File string

	// UID and GID come from the uid= and gid= query arguments.
	UID *uint32
	GID *uint32
}

// IsURL reports whether s starts with the nfs:// prefix.
func IsURL(s string) bool {
	return strings.HasPrefix(s, Scheme+"://")
}

// ParseURLDir parses raw treating the whole path as the directory to mount.
func ParseURLDir(raw string) (*URL, error) {
	return parseURL(raw, false)
}

// ParseURL parses raw into the directory to mount and the file below it.
func ParseURL(raw string) (*URL, error) {
	return parseURL(raw, true)
}

func parseURL(raw string, splitFile bool) (*URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if u.Scheme != Scheme {
		return nil, fmt.Errorf("%w: %q does not start with %s://", ErrInvalidPath, raw, Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q has no server", ErrInvalidPath, raw)
	}

	res := &URL{Host: u.Hostname(), Port: DefaultPort}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("%w: bad port %q", ErrInvalidPath, p)
		}
		res.Port = port
	}
	res.Server = net.JoinHostPort(res.Host, strconv.Itoa(res.Port))

	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		id, err := strconv.ParseUint(values[len(values)-1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad %s argument %q", ErrInvalidPath, key, values[0])
		}
		v := uint32(id)
		switch key {
		case "uid":
			res.UID = &v
		case "gid":
			res.GID = &v
		default:
			return nil, fmt.Errorf("%w: unknown url argument %q", ErrInvalidPath, key)
		}
	}

	p := path.Clean("/" + u.Path)
	if !splitFile {
		res.Path = p
		return res, nil
	}
	if p == "/" {
		return nil, fmt.Errorf("%w: %q names no file", ErrInvalidPath, raw)
	}
	res.Path, res.File = path.Split(p)
	res.Path = path.Clean(res.Path)
	return res, nil
}

// String formats the URL back into nfs:// form.
func (u *URL) String() string {
	s := Scheme + "://" + u.Server + u.Path
	if u.File != "" {
		s = strings.TrimSuffix(s, "/") + "/" + u.File
	}
	return s
}
