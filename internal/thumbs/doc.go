// Package thumbs loads thumbnails and full-resolution images.
//
// Decoding goes through the Decoder boundary (libvips when available,
// pure-Go decoders otherwise). Thumbnails live in a bounded LRU cache
// with both an entry ceiling and a byte budget; invalidation is only
// ever an explicit whole-cache clear.
package thumbs
