// Package vaultfile reads and writes the passvault container format.
//
// Layout (little-endian):
//
//	offset    field       size
//	0         magic       4 bytes, 0x53504D56 ("SPMV")
//	4         version     1 byte
//	5         saltLen     4 bytes (int32)
//	9         salt        saltLen bytes
//	9+sL      nonce       12 bytes
//	21+sL     ctLen       4 bytes (int32)
//	25+sL     ciphertext  ctLen bytes
//	25+sL+cL  tag         16 bytes
//
// Nonce and tag sizes are constants and carry no length prefix. The header
// is validated before any cryptographic material is returned to the caller.
// Writes go through a temporary file and rename, so a crash never leaves a
// half-written vault behind.
package vaultfile
