package kvs

import "encoding/binary"

// Adler-32 block size recommended to keep the running sums from overflowing
// uint32 before the modulo reduction (RFC 1950).
const adler32Nmax = 5552

const adler32Base = 65521

// adler32Checksum computes the Adler-32 checksum of data per RFC 1950,
// processing in 5552-byte blocks to reduce the number of modulo operations.
// Implemented by hand (not hash/adler32) — integrity is one of this store's
// four core subsystems, not a delegated external collaborator.
func adler32Checksum(data []byte) uint32 {
	var a, b uint32 = 1, 0
	n := len(data)
	i := 0
	for n > 0 {
		tlen := n
		if tlen > adler32Nmax {
			tlen = adler32Nmax
		}
		n -= tlen
		for j := 0; j < tlen; j++ {
			a += uint32(data[i])
			b += a
			i++
		}
		a %= adler32Base
		b %= adler32Base
	}
	return (b << 16) | a
}

// adler32Tag returns the 4-byte big-endian on-disk representation of the
// checksum of data.
func adler32Tag(data []byte) [4]byte {
	var tag [4]byte
	binary.BigEndian.PutUint32(tag[:], adler32Checksum(data))
	return tag
}

// parseAdler32Tag decodes a 4-byte big-endian tag. ok is false if b is not
// exactly 4 bytes.
func parseAdler32Tag(b []byte) (uint32, bool) {
	if len(b) != 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(b), true
}
