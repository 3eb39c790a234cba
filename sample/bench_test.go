package sample

import "testing"

// BenchmarkDrawOne_Seeded measures a single draw over a small table.
func BenchmarkDrawOne_Seeded(b *testing.B) {
	s := NewSeeded(1)
	t := NewTable[string]().Set("a", 1).Set("b", 5).Set("c", 10).Set("d", 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DrawOne(s, t)
	}
}

// BenchmarkDrawOne_Crypto measures the crypto-backed source.
func BenchmarkDrawOne_Crypto(b *testing.B) {
	s := NewCrypto()
	t := NewTable[string]().Set("a", 1).Set("b", 5).Set("c", 10).Set("d", 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DrawOne(s, t)
	}
}

// BenchmarkDrawMany measures drawing half of a larger table without replacement.
func BenchmarkDrawMany(b *testing.B) {
	s := NewSeeded(1)
	t := NewTable[int]()
	for k := range 100 {
		t.Set(k, k%7+1)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = DrawMany(s, t, 50)
	}
}
