// Package library composes the scanner, attribute stores, and
// thumbnail loader into the culling session: one in-memory collection
// with ratings, categories, filtering, and explicit change
// notification for the presentation layer.
package library
