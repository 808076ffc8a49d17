// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func randomBytes(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	rng.Read(b)
	return b
}

// ============================================================
// Decoder Fuzz Tests
// ============================================================

// TestFuzz_DecodersRandomPayloads checks that every decoder either returns a
// message or a *DecodeError for arbitrary payloads, and never panics or
// modifies its input.
func TestFuzz_DecodersRandomPayloads(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()
	d := NewDispatcher(WithClock(testClock))

	keys := make([]MessageKey, 0, len(builtinDecoders))
	for key := range builtinDecoders {
		keys = append(keys, key)
	}

	for i := 0; i < rounds; i++ {
		key := keys[rng.Intn(len(keys))]
		payload := randomBytes(rng, rng.Intn(160))
		original := append([]byte{}, payload...)

		m, err := d.Dispatch(NewFrame(key.Class, key.ID, payload))
		if err != nil {
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("round %d %s: unexpected error type %T: %v", i, key, err, err)
			}
			if de.Need <= len(payload) {
				t.Fatalf("round %d %s: DecodeError with enough bytes: %v", i, key, err)
			}
			if m != nil {
				t.Fatalf("round %d %s: message returned with error", i, key)
			}
		} else if m == nil {
			t.Fatalf("round %d %s: nil message without error", i, key)
		} else {
			_ = FormatMessage(nil, m)
			_ = ValidateMessage(nil, m)
		}

		if !bytes.Equal(original, payload) {
			t.Fatalf("round %d %s: payload modified", i, key)
		}
	}
}

// TestFuzz_SatListCounts checks count-bounded lists against random counts
func TestFuzz_SatListCounts(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		count := rng.Intn(256)
		size := 6 + rng.Intn(8+12*count)
		payload := randomBytes(rng, size)
		payload[5] = byte(count)

		m, err := DecodeNavSat(payload, testContext)
		fits := count == 0 || size >= 8+12*count
		if fits {
			if err != nil {
				t.Fatalf("round %d: count=%d size=%d: %v", i, count, size, err)
			}
			if len(m.Data.Sats) != count {
				t.Fatalf("round %d: got %d sats, want %d", i, len(m.Data.Sats), count)
			}
		} else if !errors.Is(err, ErrShortPayload) {
			t.Fatalf("round %d: count=%d size=%d: expected short payload, got %v", i, count, size, err)
		}
	}
}

// ============================================================
// Framer Fuzz Tests
// ============================================================

// TestFuzz_FramerRandomNoise feeds random bytes and checks the framer never
// panics and only returns frames whose checksum verifies.
func TestFuzz_FramerRandomNoise(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()
	f := NewFramer()

	for i := 0; i < rounds; i++ {
		for _, b := range randomBytes(rng, 64) {
			frame, err := f.DecodeByte(b)
			if err != nil {
				var fe *FrameError
				if !errors.As(err, &fe) {
					t.Fatalf("round %d: unexpected error type %T", i, err)
				}
				continue
			}
			if frame != nil && len(frame.Payload) > MaxPayloadSize {
				t.Fatalf("round %d: oversized frame", i)
			}
		}
	}
}

// TestFuzz_FramesInNoise interleaves valid frames with noise that contains
// no sync byte and checks every frame is recovered.
func TestFuzz_FramesInNoise(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds() / 10
	if rounds == 0 {
		rounds = 1
	}

	for i := 0; i < rounds; i++ {
		var stream bytes.Buffer
		var want [][]byte
		for n := rng.Intn(10) + 1; n > 0; n-- {
			for _, b := range randomBytes(rng, rng.Intn(20)) {
				if b != SyncChar1 {
					stream.WriteByte(b)
				}
			}
			payload := randomBytes(rng, rng.Intn(100))
			want = append(want, payload)
			stream.Write(mustEncode(byte(rng.Intn(256)), byte(rng.Intn(256)), payload))
		}

		r := NewReader(&stream)
		var got [][]byte
		for {
			frame, err := r.ReadFrame()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				t.Fatalf("round %d: %v", i, err)
			}
			got = append(got, frame.Payload)
		}

		if len(got) != len(want) {
			t.Fatalf("round %d: got %d frames, want %d", i, len(got), len(want))
		}
		for j := range want {
			if !bytes.Equal(got[j], want[j]) {
				t.Fatalf("round %d frame %d: payload mismatch", i, j)
			}
		}
	}
}
