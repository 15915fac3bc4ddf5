package alloc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
)

// Provenance is a lineage record stored as the annotation value of a claim.
// It ties the claimed wells to the run and source material that filled them.
type Provenance struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source,omitempty"`
	Note      string    `json:"note,omitempty"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// NewProvenance returns a record with a fresh run ID and the current time.
func NewProvenance(source string) Provenance {
	return Provenance{
		RunID:     uuid.NewString(),
		Source:    source,
		ClaimedAt: time.Now().UTC(),
	}
}

// Encode returns the JSON form used as an annotation value.
func (p Provenance) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInternal, err, "encode provenance")
	}
	return string(data), nil
}

// DecodeProvenance parses an annotation value written by ClaimProvenance.
func DecodeProvenance(value string) (Provenance, error) {
	var p Provenance
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return Provenance{}, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "value is not a provenance record")
	}
	if _, err := uuid.Parse(p.RunID); err != nil {
		return Provenance{}, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid run id %q", p.RunID)
	}
	return p, nil
}

// ClaimProvenance claims target under key with p encoded as the value.
func (a *Allocator) ClaimProvenance(ctx context.Context, target []plate.Coordinate, key string, p Provenance) error {
	value, err := p.Encode()
	if err != nil {
		return err
	}
	return a.Claim(ctx, target, key, value)
}
