package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MarketStagePrefix prefixes market condition names in the factor log.
const MarketStagePrefix = "market_"

// MarketFactor is one named market-condition multiplier.
type MarketFactor struct {
	Name       string  `json:"name" yaml:"name"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// MarketSnapshot is an immutable, ordered set of market-condition multipliers.
// One snapshot is shared by every quote computed in the same batch.
type MarketSnapshot struct {
	id      string
	takenAt time.Time
	factors []MarketFactor
}

// SnapshotRecord is the wire form of a MarketSnapshot.
type SnapshotRecord struct {
	ID      string         `json:"id"`
	TakenAt time.Time      `json:"taken_at"`
	Factors []MarketFactor `json:"factors"`
}

// NewMarketSnapshot validates factors (non-empty unique names, multipliers > 0)
// and freezes them in the given order.
func NewMarketSnapshot(takenAt time.Time, factors ...MarketFactor) (*MarketSnapshot, error) {
	seen := make(map[string]struct{}, len(factors))
	for _, f := range factors {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, newValidationError("market_conditions", "condition name is required")
		}
		if _, dup := seen[name]; dup {
			return nil, newValidationError("market_conditions."+name, "duplicate condition")
		}
		seen[name] = struct{}{}
		if !positive(f.Multiplier) {
			return nil, newValidationError("market_conditions."+name, "multiplier must be greater than zero, got %v", f.Multiplier)
		}
	}

	frozen := make([]MarketFactor, len(factors))
	for i, f := range factors {
		frozen[i] = MarketFactor{Name: strings.TrimSpace(f.Name), Multiplier: f.Multiplier}
	}
	return &MarketSnapshot{
		id:      contentHash(frozen),
		takenAt: takenAt.UTC(),
		factors: frozen,
	}, nil
}

// SnapshotFromRecord rebuilds a snapshot from its wire form. The id is recomputed
// from content, so a tampered record cannot claim another snapshot's id.
func SnapshotFromRecord(rec SnapshotRecord) (*MarketSnapshot, error) {
	return NewMarketSnapshot(rec.TakenAt, rec.Factors...)
}

// DefaultMarketSnapshot returns the built-in market conditions.
func DefaultMarketSnapshot() *MarketSnapshot {
	s, err := NewMarketSnapshot(time.Time{},
		MarketFactor{Name: "demand_index", Multiplier: 1.15},
		MarketFactor{Name: "supply_constraint", Multiplier: 1.08},
		MarketFactor{Name: "economic_indicator", Multiplier: 0.95},
		MarketFactor{Name: "seasonal_factor", Multiplier: 1.05},
		MarketFactor{Name: "competitive_pressure", Multiplier: 0.92},
	)
	if err != nil {
		panic("pricing: built-in market snapshot is invalid: " + err.Error())
	}
	return s
}

// ID is a content hash of the ordered factors.
func (s *MarketSnapshot) ID() string { return s.id }

func (s *MarketSnapshot) TakenAt() time.Time { return s.takenAt }

func (s *MarketSnapshot) Len() int { return len(s.factors) }

// Factors returns a copy of the factors in snapshot order.
func (s *MarketSnapshot) Factors() []MarketFactor {
	return append([]MarketFactor(nil), s.factors...)
}

// Record returns the wire form of the snapshot.
func (s *MarketSnapshot) Record() SnapshotRecord {
	return SnapshotRecord{ID: s.id, TakenAt: s.takenAt, Factors: s.Factors()}
}

// contentHash length-prefixes every name so that no name can absorb a neighbouring
// factor's encoding.
func contentHash(factors []MarketFactor) string {
	h := sha256.New()
	for _, f := range factors {
		fmt.Fprintf(h, "%d:%s=%s;", len(f.Name), f.Name, strconv.FormatFloat(f.Multiplier, 'g', -1, 64))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
