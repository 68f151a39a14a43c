// Package server exposes question answering over HTTP.
//
// Responses use a JSON envelope: {"data": ...} on success and
// {"error": "message"} on failure. Every response carries an X-Request-ID
// header; a client-supplied value is echoed back.
package server
