package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	codeRetries  = 10
)

// CodeChecker answers whether a short code is already taken by a stored quiz.
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// ShortCodeGenerator produces shareable 6-character codes. Uniqueness is
// best-effort: each candidate is checked against the store and resampled on
// collision, up to codeRetries times. If every candidate collides, the last
// one gets a 2-digit numeric suffix and is returned unchecked.
type ShortCodeGenerator struct {
	codes CodeChecker
	mu    sync.Mutex
	rnd   *rand.Rand
}

func NewShortCodeGenerator(codes CodeChecker) *ShortCodeGenerator {
	return NewShortCodeGeneratorWithRand(codes, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewShortCodeGeneratorWithRand allows a seeded source for deterministic tests.
func NewShortCodeGeneratorWithRand(codes CodeChecker, rnd *rand.Rand) *ShortCodeGenerator {
	return &ShortCodeGenerator{codes: codes, rnd: rnd}
}

// Generate never fails; store errors count as collisions and the fallback
// suffix covers the pathological case.
func (g *ShortCodeGenerator) Generate(ctx context.Context) string {
	var candidate string
	for i := 0; i < codeRetries; i++ {
		candidate = g.randomCode()
		exists, err := g.codes.CodeExists(ctx, candidate)
		if err != nil {
			log.Printf("short code check failed, resampling: %v", err)
			continue
		}
		if !exists {
			return candidate
		}
	}
	return fmt.Sprintf("%s%02d", candidate, g.intn(100))
}

func (g *ShortCodeGenerator) randomCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[g.intn(len(codeAlphabet))]
	}
	return string(buf)
}

func (g *ShortCodeGenerator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}
