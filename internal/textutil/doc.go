// Package textutil normalizes attachment file names before they are joined
// onto the output directory.
//
// Names are composed into Unicode NFC. No characters are replaced or
// dropped, so the exported name keeps the original base name and extension.
package textutil
