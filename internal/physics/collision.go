package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// CollisionRecord is the set of touching pairs found during one evaluation.
// Each pair is stored once, keyed under its heavier body; on equal masses
// the lower index is the massive one. Contacts keep registration order.
//
// The backing slice is reused across ticks, so a record reaches a steady
// size and stops allocating.
type CollisionRecord struct {
	contacts []dynamo.Contact
}

func NewCollisionRecord(capacity int) *CollisionRecord {
	return &CollisionRecord{contacts: make([]dynamo.Contact, 0, capacity)}
}

func (c *CollisionRecord) Reset() { c.contacts = c.contacts[:0] }

func (c *CollisionRecord) Len() int { return len(c.contacts) }

// Contacts returns the recorded pairs. The slice is only valid until the
// next Reset.
func (c *CollisionRecord) Contacts() []dynamo.Contact { return c.contacts }

// Contains reports whether a and b are already paired, in either direction.
func (c *CollisionRecord) Contains(a, b int) bool {
	for _, p := range c.contacts {
		if (p.Massive == a && p.Small == b) || (p.Massive == b && p.Small == a) {
			return true
		}
	}
	return false
}

// Massive returns the small-body indices keyed under idx, appended to dst.
func (c *CollisionRecord) Massive(idx int, dst []int) []int {
	for _, p := range c.contacts {
		if p.Massive == idx {
			dst = append(dst, p.Small)
		}
	}
	return dst
}

// register files the scan pair i<j under the heavier body.
func (c *CollisionRecord) register(bodies []dynamo.Body, i, j int) {
	massive, small := i, j
	if bodies[j].Mass > bodies[i].Mass {
		massive, small = j, i
	}
	if c.Contains(massive, small) {
		return
	}
	c.contacts = append(c.contacts, dynamo.Contact{Massive: massive, Small: small})
}

// Resolve separates and bounces every contact pair, in order.
//
// Overlapping pairs are pushed apart along the line of centres in inverse
// proportion to mass, then an elastic impulse is applied if they are still
// approaching. Pairs that have already separated only get the impulse test.
// Total momentum is unchanged.
//
// A pair with coincident (or non-finite) centres has no contact normal.
// Resolution stops there and a *dynamo.CollisionError is returned; pairs
// before it stay applied.
func Resolve(bodies []dynamo.Body, contacts []dynamo.Contact) error {
	for _, c := range contacts {
		b1 := &bodies[c.Massive]
		b2 := &bodies[c.Small]

		d := b1.Position.Sub(b2.Position)
		mag := d.Len()
		if mag == 0 || math.IsNaN(mag) {
			return &dynamo.CollisionError{Massive: c.Massive, Small: c.Small, Wrapped: dynamo.ErrDegenerateVector}
		}

		inv1 := 1 / b1.Mass
		inv2 := 1 / b2.Mass
		invSum := inv1 + inv2

		if pen := b1.Radius + b2.Radius - mag; pen > 0 {
			corr := d.Scale(pen / mag)
			b1.Position.AddScaledInPlace(corr, inv1/invSum)
			b2.Position.AddScaledInPlace(corr, -inv2/invSum)
		}

		normal := d.Scale(1 / mag)
		vn := b1.Velocity.Sub(b2.Velocity).Dot(normal)
		if vn > 0 {
			continue
		}
		j := -2 * vn / invSum
		b1.Velocity.AddScaledInPlace(normal, j*inv1)
		b2.Velocity.AddScaledInPlace(normal, -j*inv2)
	}
	return nil
}
