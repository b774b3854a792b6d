// Package codec converts canonical sessions into a compact, precision-reduced
// form and a zstd-compressed byte stream, and back.
//
// The pipeline is Optimize -> JSON -> zstd. Deoptimize and Decompress are its
// inverses; Unpack runs both. Precision loss is fixed by the format and is
// the only difference a round trip may show.
package codec
