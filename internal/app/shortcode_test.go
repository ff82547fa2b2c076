package app_test

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"knowme-quiz-service/internal/app"
)

type codeSet map[string]bool

func (s codeSet) CodeExists(_ context.Context, code string) (bool, error) {
	return s[code], nil
}

func TestGenerateShape(t *testing.T) {
	ctx := context.Background()
	gen := app.NewShortCodeGeneratorWithRand(codeSet{}, rand.New(rand.NewSource(1)))

	seen := make(map[string]bool)
	for i := 0; i < 2000; i++ {
		code := gen.Generate(ctx)
		if len(code) != 6 {
			t.Fatalf("expected 6-character code, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	// 2000 draws from a 36^6 space should essentially never collide.
	if len(seen) < 1990 {
		t.Fatalf("expected near-distinct codes, got %d unique of 2000", len(seen))
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(7))
	taken := codeSet{}

	// Pre-take the first candidate the seeded source would produce.
	probe := app.NewShortCodeGeneratorWithRand(codeSet{}, rand.New(rand.NewSource(7)))
	first := probe.Generate(ctx)
	taken[first] = true

	gen := app.NewShortCodeGeneratorWithRand(taken, rnd)
	code := gen.Generate(ctx)
	if code == first {
		t.Fatalf("expected a resample after collision, got the taken code %q", code)
	}
	if taken[code] {
		t.Fatalf("generated code %q is already taken", code)
	}
}

type allTaken struct{}

func (allTaken) CodeExists(context.Context, string) (bool, error) { return true, nil }

func TestGenerateFallbackSuffix(t *testing.T) {
	gen := app.NewShortCodeGeneratorWithRand(allTaken{}, rand.New(rand.NewSource(3)))
	code := gen.Generate(context.Background())
	if len(code) != 8 {
		t.Fatalf("expected suffixed fallback code, got %q", code)
	}
	suffix := code[6:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric suffix, got %q", code)
		}
	}
}
