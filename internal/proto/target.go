package proto

import "strings"

// Target is the request URI split into the path to resolve and the argument
// string handed to a CGI program.
type Target struct {
	Path    string
	Args    string
	HasArgs bool
}

// ResolveTarget splits the URI on the first '?'. For GET, a query string is
// what makes the request CGI-bound. POST always carries arguments: the
// request body, or the empty string when there is none.
func ResolveTarget(req *Request) Target {
	path, query, found := strings.Cut(req.URI(), "?")
	switch req.Method() {
	case MethodPost:
		body, _ := req.Body()
		return Target{Path: path, Args: body, HasArgs: true}
	default:
		if !found {
			return Target{Path: path}
		}
		return Target{Path: path, Args: query, HasArgs: true}
	}
}
