package rules

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sergioamr/farm-management/internal/model"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// SKUGenerator synthesizes SKUs as CAT-NNNNNN-XXX from the category, the
// last six digits of the millisecond clock and three base-36 characters.
// Generated values can collide; callers must still run the uniqueness check.
type SKUGenerator struct {
	Now  func() time.Time
	Rand *rand.Rand

	mu sync.Mutex
}

// NewSKUGenerator returns a generator on the wall clock
func NewSKUGenerator() *SKUGenerator {
	return &SKUGenerator{
		Now:  time.Now,
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate returns a SKU for an item of the given category
func (g *SKUGenerator) Generate(category model.Category) string {
	prefix := strings.ToUpper(string(category))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	millis := strconv.FormatInt(g.Now().UnixMilli(), 10)
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}

	suffix := make([]byte, 3)
	g.mu.Lock()
	for i := range suffix {
		suffix[i] = base36[g.Rand.Intn(len(base36))]
	}
	g.mu.Unlock()

	return fmt.Sprintf("%s-%s-%s", prefix, millis, suffix)
}
