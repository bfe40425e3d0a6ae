// Package secmem provides best-effort erasure of sensitive buffers.
//
// Every buffer that held password material or decrypted entry data is
// overwritten with zeros before it is released. The master key lives in a
// Key, which keeps the bytes in guarded, mlock'd memory and wipes them on
// Destroy.
//
// The Go runtime may copy memory behind our back (stack growth, string
// conversions), so erasure only covers buffers this program explicitly owns.
package secmem
