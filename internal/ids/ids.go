// Package ids generates record identifiers.
//
// Trades use ULIDs so ids sort by creation time, which keeps review queues and
// SQLite indexes in insertion order. Profiles use random UUIDs.
package ids

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator produces monotonic ULIDs. It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewGenerator returns a generator seeded from crypto/rand.
func NewGenerator() *Generator {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// NewTradeID returns a ULID stamped with at. IDs generated within the same
// millisecond remain lexicographically increasing.
func (g *Generator) NewTradeID(at time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(at.UTC()), g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewProfileID returns a random UUID string.
func NewProfileID() string {
	return uuid.NewString()
}

// IsProfileID reports whether s parses as a UUID.
func IsProfileID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// TradeTime extracts the creation timestamp encoded in a trade id.
func TradeTime(id string) (time.Time, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()).UTC(), nil
}
