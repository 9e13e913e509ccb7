// Package logging provides leveled logging for photo-cull.
//
// The level is read once from the DEBUG and LOG_LEVEL environment
// variables; the default is info.
package logging
