// Package server exposes the query pipeline over HTTP.
//
// Routes: POST /query answers a question from the corpus, GET /health
// reports corpus counts, GET / describes the service. Errors are JSON
// bodies with a detail field. The server drains in-flight requests on
// SIGINT or SIGTERM before exiting.
package server
