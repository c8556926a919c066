// Package manifest lists exported audio files as JSON for a web player.
//
// Files named by the exporter ("20230101_153000_memo.m4a") get a display
// name and a human date; anything else is listed under its bare name.
package manifest
