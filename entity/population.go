package entity

import (
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/pool"
)

// Population is the per-kind enemy pool set of a match
type Population = pool.Registry[Kind, *Entity]

// NewPopulation preallocates one pool per kind; the boss pool holds bossCapacity
// IDs are unique across all pools
func NewPopulation(capacity, bossCapacity int) *Population {
	reg := pool.NewRegistry[Kind, *Entity]()
	var next ID
	for _, k := range Kinds() {
		kind := k
		c := capacity
		if kind == KindBoss {
			c = bossCapacity
		}
		reg.Register(kind, pool.New(c, func() *Entity {
			next++
			return New(next, kind)
		}))
	}
	return reg
}

// DefaultPopulation uses the standard pool capacities
func DefaultPopulation() *Population {
	return NewPopulation(parameter.PoolCapacityDefault, parameter.PoolCapacityBoss)
}

// NewProjectilePool preallocates projectiles shared by every owner
func NewProjectilePool(capacity int) *pool.Pool[*Projectile] {
	return pool.New(capacity, NewProjectile)
}
