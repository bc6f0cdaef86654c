package test

import (
	"math/rand"
	"strconv"
	"sync"
	"time"
)

const digits = "0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomOrderID returns a pseudo-random numeric order id of the given length.
// The first digit is never zero.
func RandomOrderID(length int) string {
	if length <= 0 {
		length = 1
	}
	buf := make([]byte, length)
	buf[0] = digits[1+randomIntn(len(digits)-1)]
	for i := 1; i < length; i++ {
		buf[i] = digits[randomIntn(len(digits))]
	}
	return string(buf)
}

// RandomQuantity returns a pseudo-random quantity within [1, maxQty].
func RandomQuantity(maxQty int) int64 {
	if maxQty <= 1 {
		return 1
	}
	return int64(1 + randomIntn(maxQty))
}

// VariantID formats a deterministic variant id for fixtures.
func VariantID(n int) string {
	return "v" + strconv.Itoa(n)
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
