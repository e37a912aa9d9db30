package matcher

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/zeebo/blake3"

	"votegate/internal/biometric/models"
)

// vectorSize is the dimension of vectors produced by the Deterministic matcher.
const vectorSize = 64

// Deterministic derives a vector from the image bytes with BLAKE3, so the same
// image always scores 1 against its own enrollment and unrelated images score
// near 0.5. It has no notion of faces and exists for local development and tests.
type Deterministic struct{}

func NewDeterministic() Deterministic { return Deterministic{} }

func (Deterministic) Extract(ctx context.Context, sample models.Sample) (*models.Features, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(sample.Image) == 0 {
		return nil, ErrSampleUnusable
	}
	return &models.Features{Vector: embed(sample.Image), Quality: 1}, nil
}

func (Deterministic) Score(ctx context.Context, enrolled []float64, sample models.Sample) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(sample.Image) == 0 {
		return 0, ErrSampleUnusable
	}
	if len(enrolled) != vectorSize {
		return 0, nil
	}
	cos := cosine(enrolled, embed(sample.Image))
	return (cos + 1) / 2, nil
}

// embed expands the image digest into a unit vector with components in [-1, 1].
func embed(image []byte) []float64 {
	h := blake3.New()
	_, _ = h.Write(image)
	buf := make([]byte, vectorSize*2)
	_, _ = h.Digest().Read(buf)

	vec := make([]float64, vectorSize)
	var norm float64
	for i := range vec {
		u := binary.BigEndian.Uint16(buf[i*2:])
		vec[i] = float64(u)/math.MaxUint16*2 - 1
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, c))
}
