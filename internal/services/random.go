package services

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/utils"
)

// RandomSource picks winners. Intn returns a value in [0, n).
type RandomSource interface {
	Intn(n int) int
}

type lockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a goroutine-safe math/rand source
func NewRandomSource(seed int64) RandomSource {
	return &lockedRandom{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// sampleIndexes picks k distinct indexes from [0, n) by partial Fisher-Yates
func sampleIndexes(rng RandomSource, n, k int) []int {
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// CodeGenerator produces voucher references and verification codes
type CodeGenerator interface {
	VoucherReference(now time.Time) (string, error)
	VerificationCode() (string, error)
}

type randomCodes struct{}

// NewCodeGenerator returns the crypto/rand backed generator
func NewCodeGenerator() CodeGenerator {
	return randomCodes{}
}

func (randomCodes) VoucherReference(now time.Time) (string, error) {
	return utils.VoucherReference(now)
}

func (randomCodes) VerificationCode() (string, error) {
	return utils.VerificationCode(utils.DefaultVerificationLength)
}
