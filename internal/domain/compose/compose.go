// Package compose builds reply text from weighted message pools.
//
// Given an RNG the composer is pure; tests inject a seeded source to make
// pool selection deterministic.
package compose

import (
	"math/rand"
	"strconv"
	"strings"

	"kudos/internal/domain/model"
	"kudos/internal/domain/registry"
)

// defaultSeed keeps unconfigured composers deterministic.
const defaultSeed = 42

// Pool is a weighted family of candidate reply strings.
type Pool struct {
	Weight   int
	Messages []string
}

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithSource sets the random source used for pool and message selection.
func WithSource(src rand.Source) Option {
	return func(c *Composer) {
		if src != nil {
			c.rng = rand.New(src) //nolint:gosec // reply variety, not cryptography
		}
	}
}

// WithPools replaces the pool set for one operation.
func WithPools(op registry.Op, pools ...Pool) Option {
	return func(c *Composer) {
		if len(pools) > 0 {
			c.pools[op] = pools
		}
	}
}

// Composer selects and fills reply templates.
type Composer struct {
	rng   *rand.Rand
	pools map[registry.Op][]Pool
}

// New creates a Composer with the default pools and configuration options.
func New(opts ...Option) *Composer {
	c := &Composer{
		rng:   rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // deterministic default for reproducible replies
		pools: defaultPools(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compose produces reply text for an operation against target. The plural
// suffix placeholder resolves against total: exactly 1 reads singular,
// everything else including 0 reads plural.
func (c *Composer) Compose(op registry.Op, target model.Item, total, temp int64) string {
	pools, ok := c.pools[op]
	if !ok || len(pools) == 0 {
		// A kind without a pool family is a programmer error.
		panic("compose: no pools for operation " + op.String())
	}

	pool := c.pick(pools)
	msg := pool.Messages[c.rng.Intn(len(pool.Messages))]

	suffix := "s"
	if total == 1 {
		suffix = ""
	}

	r := strings.NewReplacer(
		"{item}", target.Mention(),
		"{total}", strconv.FormatInt(total, 10),
		"{temp}", strconv.FormatInt(temp, 10),
		"{s}", suffix,
	)
	return r.Replace(msg)
}

// pick draws a pool by weighted random: draw uniformly over the weight sum,
// walk the pools, first pool whose cumulative weight exceeds the draw wins.
func (c *Composer) pick(pools []Pool) Pool {
	sum := 0
	for _, p := range pools {
		sum += p.Weight
	}
	if sum <= 0 {
		// Injected pools must carry positive weight; fail loudly with a
		// message that names the problem instead of Intn's generic panic.
		panic("compose: pool weights must sum to a positive value")
	}

	draw := c.rng.Intn(sum)
	cum := 0
	for _, p := range pools {
		cum += p.Weight
		if draw < cum {
			return p
		}
	}
	return pools[len(pools)-1]
}
