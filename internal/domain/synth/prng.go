package synth

// golden is the splitmix64 increment (2^64 / phi).
const golden = 0x9e3779b97f4a7c15

// PRNG is a stateless splitmix64 generator keyed by a seed. Each band is an
// independent stream, so values drawn from different bands never coincide
// by construction no matter how many indices are read.
type PRNG struct {
	seed uint64
}

// NewPRNG returns a generator for seed.
func NewPRNG(seed int64) PRNG {
	return PRNG{seed: uint64(seed)}
}

// At returns a value in [0,1) that depends only on (seed, band, index).
func (p PRNG) At(band, index int) float64 {
	key := mix(p.seed ^ mix(uint64(band)))
	v := mix(key + uint64(index)*golden)
	// top 53 bits -> float64 mantissa
	return float64(v>>11) / (1 << 53)
}

// Uniform maps At onto [lo, hi).
func (p PRNG) Uniform(band, index int, lo, hi float64) float64 {
	return lo + p.At(band, index)*(hi-lo)
}

func mix(z uint64) uint64 {
	z += golden
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
