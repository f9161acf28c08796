package handler

import (
	"io"

	"github.com/pkg/errors"
)

const contentTypeHTML = "text/html; charset=utf-8"

// Fixed responses. These are never mutated after init.
var (
	notFound = []byte("HTTP/1.0 404 NOT FOUND\r\n" +
		"Content-Type: " + contentTypeHTML + "\r\n" +
		"\r\n" +
		"<html><title>404 Not Found</title>" +
		"<body><center><h1>Not Found!</h1><p>忘れた</p></center></body></html>\r\n")

	badRequest = []byte("HTTP/1.0 400 BAD REQUEST\r\n" +
		"Content-Type: " + contentTypeHTML + "\r\n" +
		"\r\n" +
		"<html><title>400 Bad Request</title>" +
		"<body><center><h1>Bad Request!</h1></center></body></html>\r\n")

	internalError = []byte("HTTP/1.0 500 INTERNAL SERVER ERROR\r\n" +
		"Content-Type: " + contentTypeHTML + "\r\n" +
		"\r\n" +
		"<html><title>500 Internal Server Error</title>" +
		"<body><center><h1>Internal Server Error!</h1></center></body></html>\r\n")

	// welcome carries no Server line, unlike the regular success header.
	welcome = []byte("HTTP/1.0 200 OK\r\n" +
		"Content-type: " + contentTypeHTML + "\r\n" +
		"\r\n" +
		"<html><head><title>君の名は!</title></head>" +
		"<body><center><h1>Welcome!</h1><p>君の名は!</p></center></body></html>")
)

// successHeader is the status line and headers sent ahead of every 200 body.
func successHeader(serverName string) []byte {
	return []byte("HTTP/1.0 200 OK\r\n" +
		"Content-type: " + contentTypeHTML + "\r\n" +
		"Server: " + serverName + "\r\n" +
		"\r\n")
}

func writeAll(w io.Writer, chunks ...[]byte) error {
	for _, c := range chunks {
		n, err := w.Write(c)
		if err != nil {
			return errors.Wrap(err, "write response")
		}
		if n != len(c) {
			return errors.Wrapf(io.ErrShortWrite, "wrote %d of %d bytes", n, len(c))
		}
	}
	return nil
}
