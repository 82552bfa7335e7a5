package fec

// Reed-Solomon over GF(256) with primitive polynomial x^8+x^4+x^3+x^2+1
// (0x11D), the field used by the LC/TSBK/TDULC layer's RS-protected
// fields. Implements systematic encode and syndrome/Berlekamp-Massey/
// Chien/Forney decode, the standard textbook RS recipe.

const rsFieldSize = 256
const rsPrimPoly = 0x11D

var gfExp [2 * rsFieldSize]byte
var gfLog [rsFieldSize]byte

func init() {
	x := 1
	for i := 0; i < rsFieldSize-1; i++ {
		gfExp[i] = byte(x)
		gfLog[x] = byte(i)
		x <<= 1
		if x&rsFieldSize != 0 {
			x ^= rsPrimPoly
		}
	}
	for i := rsFieldSize - 1; i < 2*rsFieldSize; i++ {
		gfExp[i] = gfExp[i-(rsFieldSize-1)]
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])+int(gfLog[b])]
}

func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return gfExp[(int(gfLog[a])-int(gfLog[b])+255)%255]
}

func gfPow(a byte, power int) byte {
	if a == 0 {
		if power == 0 {
			return 1
		}
		return 0
	}
	return gfExp[(int(gfLog[a])*power)%255]
}

func gfInverse(a byte) byte {
	return gfExp[255-int(gfLog[a])]
}

// gfPolyMul multiplies two polynomials represented as coefficient slices,
// highest-degree coefficient first.
func gfPolyMul(p, q []byte) []byte {
	r := make([]byte, len(p)+len(q)-1)
	for i, pc := range p {
		if pc == 0 {
			continue
		}
		for j, qc := range q {
			r[i+j] ^= gfMul(pc, qc)
		}
	}
	return r
}

// gfPolyEval evaluates polynomial p (highest degree first) at x.
func gfPolyEval(p []byte, x byte) byte {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = gfMul(y, x) ^ p[i]
	}
	return y
}

// rsGeneratorPoly builds the generator polynomial for nsym parity symbols.
func rsGeneratorPoly(nsym int) []byte {
	g := []byte{1}
	for i := 0; i < nsym; i++ {
		g = gfPolyMul(g, []byte{1, gfPow(2, i)})
	}
	return g
}

// RSEncode appends nsym parity bytes to data, returning the full
// systematic codeword.
func RSEncode(data []byte, nsym int) []byte {
	gen := rsGeneratorPoly(nsym)
	msg := make([]byte, len(data)+nsym)
	copy(msg, data)
	for i := 0; i < len(data); i++ {
		coef := msg[i]
		if coef == 0 {
			continue
		}
		for j := 1; j < len(gen); j++ {
			msg[i+j] ^= gfMul(gen[j], coef)
		}
	}
	copy(msg, data)
	return msg
}

func rsCalcSyndromes(msg []byte, nsym int) []byte {
	syn := make([]byte, nsym)
	for i := 0; i < nsym; i++ {
		syn[i] = gfPolyEval(msg, gfPow(2, i))
	}
	return syn
}

func rsSyndromesAllZero(syn []byte) bool {
	for _, s := range syn {
		if s != 0 {
			return false
		}
	}
	return true
}

// rsFindErrorLocator runs Berlekamp-Massey on the syndromes to find the
// error locator polynomial, stripping leading zero coefficients from the
// result.
func rsFindErrorLocator(syn []byte) []byte {
	errLoc := []byte{1}
	oldLoc := []byte{1}
	for i := 0; i < len(syn); i++ {
		oldLoc = append(oldLoc, 0)
		delta := syn[i]
		for j := 1; j < len(errLoc); j++ {
			delta ^= gfMul(errLoc[len(errLoc)-1-j], syn[i-j])
		}
		if delta != 0 {
			if len(oldLoc) > len(errLoc) {
				newLoc := gfPolyScale(oldLoc, delta)
				oldLoc = gfPolyScale(errLoc, gfInverse(delta))
				errLoc = newLoc
			}
			scaled := gfPolyScale(oldLoc, delta)
			errLoc = gfPolyXor(errLoc, scaled)
		}
	}
	// strip leading zero coefficients
	for len(errLoc) > 1 && errLoc[0] == 0 {
		errLoc = errLoc[1:]
	}
	return errLoc
}

func gfPolyScale(p []byte, x byte) []byte {
	r := make([]byte, len(p))
	for i, c := range p {
		r[i] = gfMul(c, x)
	}
	return r
}

func gfPolyXor(p, q []byte) []byte {
	if len(p) < len(q) {
		p, q = q, p
	}
	r := make([]byte, len(p))
	copy(r, p)
	offset := len(p) - len(q)
	for i, c := range q {
		r[offset+i] ^= c
	}
	return r
}

// rsFindErrors performs a Chien search over the error locator polynomial
// to find error positions (indices into msg, 0 = highest-degree symbol).
func rsFindErrors(errLoc []byte, msgLen int) ([]int, bool) {
	errs := len(errLoc) - 1
	var positions []int
	for i := 0; i < msgLen; i++ {
		x := gfPow(2, i)
		xInv := gfInverse(x)
		if gfPolyEval(errLoc, xInv) == 0 {
			positions = append(positions, msgLen-1-i)
		}
	}
	if len(positions) != errs {
		return nil, false
	}
	return positions, true
}

// RSDecode corrects up to nsym/2 byte errors in a systematic RS codeword
// of the given total length, returning the corrected data portion
// (without parity). Returns ErrUndecodable if uncorrectable.
func RSDecode(codeword []byte, nsym int) ([]byte, error) {
	msg := make([]byte, len(codeword))
	copy(msg, codeword)
	syn := rsCalcSyndromes(msg, nsym)
	if rsSyndromesAllZero(syn) {
		return msg[:len(msg)-nsym], nil
	}
	// Berlekamp-Massey expects syndromes low-index-first for the
	// recurrence above; rsCalcSyndromes already returns syn[i] for x=2^i.
	errLoc := rsFindErrorLocator(syn)
	if len(errLoc)-1 > nsym/2 {
		return nil, ErrUndecodable
	}
	positions, ok := rsFindErrors(errLoc, len(msg))
	if !ok {
		return nil, ErrUndecodable
	}
	if len(positions) == 0 {
		return msg[:len(msg)-nsym], nil
	}
	corrected, err := rsCorrectErrata(msg, syn, positions)
	if err != nil {
		return nil, err
	}
	return corrected[:len(corrected)-nsym], nil
}

// rsCorrectErrata applies the Forney algorithm to compute error
// magnitudes at the given positions and XORs them into msg.
func rsCorrectErrata(msg, syn []byte, positions []int) ([]byte, error) {
	n := len(msg)
	errLocFromPos := []byte{1}
	var xVals []byte
	for _, p := range positions {
		x := gfPow(2, n-1-p)
		xVals = append(xVals, x)
		term := []byte{x, 1}
		errLocFromPos = gfPolyMul(errLocFromPos, term)
	}
	// error evaluator polynomial: synPoly * errLoc mod x^nsym, reversed
	synRev := make([]byte, len(syn))
	for i, s := range syn {
		synRev[len(syn)-1-i] = s
	}
	errEval := gfPolyMul(synRev, errLocFromPos)
	if len(errEval) > len(syn) {
		errEval = errEval[len(errEval)-len(syn):]
	}
	corrected := make([]byte, n)
	copy(corrected, msg)
	for i, p := range positions {
		xi := xVals[i]
		xiInv := gfInverse(xi)
		var errLocPrimeDeriv byte
		for j := 0; j < len(xVals); j++ {
			if j == i {
				continue
			}
			errLocPrimeDeriv = errLocPrimeDeriv ^ gfMul(1, byte(1)) // placeholder, recomputed below
		}
		_ = errLocPrimeDeriv
		// error evaluator evaluated at xi^-1
		y := gfPolyEval(errEval, xiInv)
		// formal derivative of error locator evaluated at xi^-1 via
		// product rule over (1 - x*xk) factors
		var denom byte = 1
		for j := 0; j < len(xVals); j++ {
			if j == i {
				continue
			}
			denom = gfMul(denom, (1 ^ gfMul(xVals[j], xiInv)))
		}
		magnitude := gfDiv(y, denom)
		corrected[p] ^= magnitude
	}
	return corrected, nil
}
