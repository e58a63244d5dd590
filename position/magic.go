package position

import "math/rand"

// magic maps the relevant blockers of one square to a slot in its attack table.
type magic struct {
	mask    uint64
	magic   uint64
	shift   uint
	attacks []uint64
}

func (m *magic) index(occ uint64) uint64 {
	return ((occ & m.mask) * m.magic) >> m.shift
}

var rookMagics [64]magic
var bishopMagics [64]magic

var rookDirs = [4]int{dirN, dirS, dirE, dirW}
var bishopDirs = [4]int{dirNE, dirSW, dirNW, dirSE}

// RookAttacks returns the rook attack set from sq for the given occupancy.
func RookAttacks(sq Square, occ uint64) uint64 {
	m := &rookMagics[sq]
	return m.attacks[m.index(occ)]
}

// BishopAttacks returns the bishop attack set from sq for the given occupancy.
func BishopAttacks(sq Square, occ uint64) uint64 {
	m := &bishopMagics[sq]
	return m.attacks[m.index(occ)]
}

// slidingAttacks walks the rays one blocker at a time. Only used to build and
// verify the magic tables.
func slidingAttacks(dirs [4]int, sq Square, occ uint64) uint64 {
	var att uint64
	for _, d := range dirs {
		att |= interrupt(d, sq, occ)
	}
	return att
}

// relevantMask drops the last square of each ray; a blocker there never
// changes the attack set.
func relevantMask(dirs [4]int, sq Square) uint64 {
	var mask uint64
	for _, d := range dirs {
		ray := rays[d][sq]
		if ray == 0 {
			continue
		}
		if positiveDir(d) {
			ray &^= bit(msb(ray))
		} else {
			ray &^= bit(lsb(ray))
		}
		mask |= ray
	}
	return mask
}

func initMagics() {
	// Fixed seed: the search for magics is deterministic and every candidate
	// is checked against the ray walk, so the tables are exact.
	rng := rand.New(rand.NewSource(0x5EED))
	for sq := Square(0); sq < 64; sq++ {
		findMagic(&rookMagics[sq], rookDirs, sq, rng)
		findMagic(&bishopMagics[sq], bishopDirs, sq, rng)
	}
}

func findMagic(m *magic, dirs [4]int, sq Square, rng *rand.Rand) {
	m.mask = relevantMask(dirs, sq)
	n := popCount(m.mask)
	m.shift = uint(64 - n)
	size := 1 << uint(n)

	occupancies := make([]uint64, 0, size)
	reference := make([]uint64, 0, size)
	// Carry-rippler enumeration of every subset of the mask.
	sub := uint64(0)
	for {
		occupancies = append(occupancies, sub)
		reference = append(reference, slidingAttacks(dirs, sq, sub))
		sub = (sub - m.mask) & m.mask
		if sub == 0 {
			break
		}
	}

	m.attacks = make([]uint64, size)
	epoch := make([]int, size)
	for attempt := 1; ; attempt++ {
		candidate := rng.Uint64() & rng.Uint64() & rng.Uint64()
		if popCount((m.mask*candidate)>>56) < 6 {
			continue
		}
		m.magic = candidate
		ok := true
		for i, occ := range occupancies {
			idx := m.index(occ)
			if epoch[idx] < attempt {
				epoch[idx] = attempt
				m.attacks[idx] = reference[i]
			} else if m.attacks[idx] != reference[i] {
				ok = false
				break
			}
		}
		if ok {
			return
		}
	}
}
