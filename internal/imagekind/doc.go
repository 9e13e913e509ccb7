// Package imagekind classifies image files by extension.
//
// Classification is pure string work: no I/O, no failure mode. Files
// whose extension is not in the raw or standard list classify as
// KindOther.
package imagekind
