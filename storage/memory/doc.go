// Package memory provides the default, process-local record store.
package memory
