// Package proportional spreads the words of a translated line across the
// words of its source line. Each source word receives zero or more target
// words, and across a line every target word is handed out exactly once.
//
// The number of target words per source word is either a floor or a ceiling
// value derived from the ratio of the two word counts. The fractional part
// is carried between steps as an exact rational, the same way error
// diffusion works in line rasterisation, so the total never drifts no matter
// how long the line is.
package proportional

import (
	"io"
	"log/slog"
	"math/big"
	"strings"
)

// Allocation maps one source word to the target words assigned to it.
type Allocation struct {
	Source string
	Target []string
}

// Distributor walks one source line and hands out target words for each of
// its words. It is single pass and cannot be restarted.
type Distributor struct {
	source []string
	target []string
	si, ti int

	floor          int64
	floorUnderage  *big.Rat
	ceiling        int64
	ceilingOverage *big.Rat
	overage        *big.Rat

	done bool
}

// NewDistributor prepares the allocation of the words of target onto the
// words of source. A source without words is only valid when the target has
// none either.
func NewDistributor(source, target string) (*Distributor, error) {
	d := &Distributor{
		source:         strings.Fields(source),
		target:         strings.Fields(target),
		floorUnderage:  new(big.Rat),
		ceilingOverage: new(big.Rat),
		overage:        new(big.Rat),
	}

	s, t := int64(len(d.source)), int64(len(d.target))
	if s == 0 {
		if t > 0 {
			return nil, &DegenerateSourceLineError{Target: target}
		}
		return d, nil
	}

	diff := t - s

	// Mixed fraction of diff/s: the integer part is truncated toward zero and
	// the remainder keeps the sign of diff.
	d.floor = diff / s
	d.floorUnderage.SetFrac64(diff-d.floor*s, s)

	switch {
	case d.floorUnderage.Sign() == 0:
		d.ceiling = d.floor
	case diff > 0:
		d.ceiling = d.floor + 1
		d.ceilingOverage.Sub(big.NewRat(1, 1), d.floorUnderage)
	default:
		d.ceiling = d.floor - 1
		d.ceilingOverage.Sub(big.NewRat(-1, 1), d.floorUnderage)
	}

	slog.Debug("distributor setup",
		"source_words", s,
		"target_words", t,
		"floor", d.floor,
		"floor_underage", d.floorUnderage.RatString(),
		"ceiling", d.ceiling,
		"ceiling_overage", d.ceilingOverage.RatString())

	return d, nil
}

// Next returns the allocation for the next source word. Once the source
// words are exhausted it returns io.EOF, after checking that every target
// word was handed out and that no overage is left over.
func (d *Distributor) Next() (Allocation, error) {
	if d.done {
		return Allocation{}, io.EOF
	}

	if d.si == len(d.source) {
		d.done = true
		if d.ti != len(d.target) {
			return Allocation{}, d.conservationError("source words exhausted yet target words remain")
		}
		if d.overage.Sign() != 0 {
			return Allocation{}, d.conservationError("overage is not zero at the end of the line")
		}
		return Allocation{}, io.EOF
	}

	n := int(d.nextCount())
	if n < 0 || d.ti+n > len(d.target) {
		d.done = true
		return Allocation{}, d.conservationError("not enough target words left")
	}

	a := Allocation{
		Source: d.source[d.si],
		Target: d.target[d.ti : d.ti+n : d.ti+n],
	}
	d.si++
	d.ti += n
	return a, nil
}

// nextCount applies one step of the floor/ceiling decision and updates the
// running overage.
func (d *Distributor) nextCount() int64 {
	switch d.overage.Sign() {
	case 0:
		d.overage.Add(d.overage, d.floorUnderage)
		return 1 + d.floor
	case 1:
		if new(big.Rat).Sub(d.overage, d.ceilingOverage).Sign() >= 0 {
			d.overage.Sub(d.overage, d.ceilingOverage)
			return 1 + d.ceiling
		}
		d.overage.Add(d.overage, d.floorUnderage)
		return 1 + d.floor
	default:
		if new(big.Rat).Sub(d.overage, d.ceilingOverage).Sign() <= 0 {
			d.overage.Sub(d.overage, d.ceilingOverage)
			return 1 + d.ceiling
		}
		d.overage.Add(d.overage, d.floorUnderage)
		return 1 + d.floor
	}
}

func (d *Distributor) conservationError(reason string) error {
	return &ConservationError{
		Source:  strings.Join(d.source, " "),
		Target:  strings.Join(d.target, " "),
		Reason:  reason,
		Overage: d.overage.RatString(),
	}
}
