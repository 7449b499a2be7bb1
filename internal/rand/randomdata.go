// Package rand produces random payloads for tests.
package rand

import (
	"bytes"
	"io"
	"math/rand"
	"sync"
	"time"
)

// Bytes returns a random slice of bytes
func Bytes(n int) []byte {
	return randBytes(n)
}

// LetterBytes returns a random slice of bytes picked in the [0-9]|[a-z] range
func LetterBytes(n int) []byte {
	return randLetterBytes(n)
}

// LetterString returns a random string picked in the [0-9]|[a-z] range
func LetterString(n int) string {
	return string(randLetterBytes(n))
}

// Reader yields exactly n random bytes, without holding them all in memory
func Reader(n int64) io.Reader {
	return io.LimitReader(&source{}, n)
}

var (
	onceSource  sync.Once
	rgen        *rand.Rand
	onceLetters sync.Once
	randMutex   sync.Mutex
	letters     []byte
)

func seed() {
	src := rand.NewSource(time.Now().UnixNano())
	rgen = rand.New(src) // #nosec
}

type source struct{}

func (source) Read(p []byte) (int, error) {
	onceSource.Do(seed)
	randMutex.Lock()
	defer randMutex.Unlock()
	return rgen.Read(p)
}

func randBytes(n int) []byte {
	buf := make([]byte, n)
	_, _ = source{}.Read(buf)
	return buf
}

func makeLetters() {
	// pads 36 signs over the 256 values of a byte, so "a" is slightly more frequent
	letters = bytes.Repeat([]byte("abcdefghijklmnopqrstuvwxyz0123456789a"), 7)
}

func randLetterBytes(n int) []byte {
	onceLetters.Do(makeLetters)
	buf := randBytes(n)
	for i, b := range buf {
		buf[i] = letters[b]
	}
	return buf
}
