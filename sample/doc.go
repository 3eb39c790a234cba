// Package sample draws random selections from weighted tables and slices.
//
// A Sampler owns one long-lived random source. It is never reseeded per
// call: NewCrypto reads fresh bytes from crypto/rand for every draw, and
// NewSeeded keeps a single ChaCha8 stream for reproducible runs.
//
//	s := sample.NewCrypto()
//
//	t := sample.NewTable[string]()
//	t.Set("common", 90)
//	t.Set("rare", 9)
//	t.Set("legendary", 1)
//
//	drop, ok := sample.DrawOne(s, t)
//	top3 := sample.DrawMany(s, t, 3) // distinct keys, draw order
//
// Keys with weight 0 are never selected. An empty table, or one whose total
// weight is 0, yields the zero key and false rather than an error.
package sample
