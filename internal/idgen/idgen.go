package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// NewFunc produces identifiers; defaults to random UUIDs.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// Sequence returns a generator of prefix-1, prefix-2, ...
func Sequence(prefix string) func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("%s-%d", prefix, n.Add(1)) }
}
