// Package export turns attachment records into renamed copies inside an
// output directory.
//
// Plan derives the destination name from a record's creation timestamp and
// original file name. Exporter.Run copies each planned file, reporting one
// line per record through a Reporter. Records whose source file is gone are
// reported and skipped; any copy failure halts the run.
//
// With Workers > 1 copies run on a bounded pool while report lines keep the
// query order.
package export
