package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveTarget(t *testing.T) {
	body := "a=1&b=2"
	cases := []struct {
		description string
		req         *Request
		expected    Target
	}{
		{
			description: "get plain",
			req:         NewRequest(RequestLine{Method: MethodGet, URI: "/index.html"}, nil, nil),
			expected:    Target{Path: "/index.html"},
		},
		{
			description: "get with query",
			req:         NewRequest(RequestLine{Method: MethodGet, URI: "/script.cgi?x=1"}, nil, nil),
			expected:    Target{Path: "/script.cgi", Args: "x=1", HasArgs: true},
		},
		{
			description: "only first question mark splits",
			req:         NewRequest(RequestLine{Method: MethodGet, URI: "/s?x=1?y=2"}, nil, nil),
			expected:    Target{Path: "/s", Args: "x=1?y=2", HasArgs: true},
		},
		{
			description: "empty query still counts",
			req:         NewRequest(RequestLine{Method: MethodGet, URI: "/s?"}, nil, nil),
			expected:    Target{Path: "/s", HasArgs: true},
		},
		{
			description: "post takes body",
			req:         NewRequest(RequestLine{Method: MethodPost, URI: "/handler"}, nil, &body),
			expected:    Target{Path: "/handler", Args: body, HasArgs: true},
		},
		{
			description: "post without body has empty args",
			req:         NewRequest(RequestLine{Method: MethodPost, URI: "/handler?q=1"}, nil, nil),
			expected:    Target{Path: "/handler", HasArgs: true},
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			require.Equal(t, c.expected, ResolveTarget(c.req))
			require.Equal(t, ResolveTarget(c.req), ResolveTarget(c.req))
		})
	}
}
