// Package httpapi exposes stored news over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /news?topic=&limit=
//	GET  /news/{id}
//	POST /admin/fetch?limit=
//	POST /users/{id}/preferences
//	GET  /users/{id}/preferences
package httpapi
