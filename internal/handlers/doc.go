// Package handlers exposes the culling library over HTTP: collection
// listing with filters, rating and category mutation, thumbnail and
// full-image serving, scan control, and a server-sent event stream of
// change notifications.
package handlers
