package metrics

import "github.com/san-kum/gravsim/internal/dynamo"

// CollisionCount totals the contact pairs reported across all steps.
type CollisionCount struct {
	name  string
	total int
}

func NewCollisionCount() *CollisionCount {
	return &CollisionCount{name: "collisions"}
}

func (c *CollisionCount) Name() string {
	return c.name
}

func (c *CollisionCount) Observe(bodies []dynamo.Body, res dynamo.StepResult, t float64) {
	c.total += len(res.Collisions)
}

func (c *CollisionCount) Value() float64 {
	return float64(c.total)
}

func (c *CollisionCount) Reset() {
	c.total = 0
}
