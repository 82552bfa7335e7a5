// Package lla implements P25 Link Layer Authentication: the AM1-AM4
// AES-128-ECB challenge/response steps used to authenticate a subscriber
// unit during registration. No example repository implements LLA; this
// package is built directly against the specification's bit-exact
// description and its exact test vectors (see lla_test.go / spec.md §8).
package lla

import (
	"crypto/aes"
	"crypto/subtle"
)

// ecbEncryptBlock encrypts a single 16-byte block with key under AES-ECB.
// crypto/cipher deliberately omits an ECB mode constructor (it is
// insecure for multi-block messages), so a single-block encrypt is done
// directly against the cipher.Block, the standard idiom for the rare
// case — like this one — where ECB is the wire-mandated mode.
func ecbEncryptBlock(key, plaintext [16]byte) [16]byte {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		// AES-128 keys are always 16 bytes; a construction error here
		// indicates a corrupt build, not a runtime condition.
		panic(err)
	}
	var out [16]byte
	block.Encrypt(out[:], plaintext[:])
	return out
}

// expand16 left-justifies src into a 16-byte buffer, zero-padding the
// remainder.
func expand16(src []byte) [16]byte {
	var out [16]byte
	copy(out[:], src)
	return out
}

func complement16(b [16]byte) [16]byte {
	var out [16]byte
	for i := range b {
		out[i] = ^b[i]
	}
	return out
}

// AM1 computes KS = AES_ECB(K, RS‖0x00^6) from a 16-byte K and a 10-byte
// RS.
func AM1(k [16]byte, rs [10]byte) [16]byte {
	return ecbEncryptBlock(k, expand16(rs[:]))
}

// AM2 computes RES1, the first 4 bytes of AES_ECB(KS, RAND1‖0^11), from
// KS and a 5-byte RAND1.
func AM2(ks [16]byte, rand1 [5]byte) [4]byte {
	out := ecbEncryptBlock(ks, expand16(rand1[:]))
	var res [4]byte
	copy(res[:], out[:4])
	return res
}

// AM3 computes KS = AES_ECB(K, ~(RS‖0x00^6)), the bitwise complement of
// AM1's plaintext, under the same K and RS.
func AM3(k [16]byte, rs [10]byte) [16]byte {
	return ecbEncryptBlock(k, complement16(expand16(rs[:])))
}

// AM4 computes RES2 from the AM3-derived KS and a 5-byte RAND2; the
// computation is identical in shape to AM2.
func AM4(ks [16]byte, rand2 [5]byte) [4]byte {
	return AM2(ks, rand2)
}

// ConstantTimeCompare reports whether two RES values match, compared in
// constant time to avoid a timing side channel on the authentication
// outcome.
func ConstantTimeCompare(a, b [4]byte) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
