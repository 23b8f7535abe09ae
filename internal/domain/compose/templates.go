package compose

import "kudos/internal/domain/registry"

// Pool weights for the increment family. The random and really-random
// families leak into ordinary increments at low weight.
const (
	standardWeight     = 100
	randomWeight       = 8
	reallyRandomWeight = 1
)

// randomPool and reallyRandomPool are shared between their own operation
// kinds and the low-weight tail of the increment family.
func randomPool() Pool {
	return Pool{
		Weight: randomWeight,
		Messages: []string{
			"{item} is on a roll: {total} point{s} and counting",
			"someone likes {item}. {total} point{s} now",
			"{item} just leveled up to {total} point{s}",
		},
	}
}

func reallyRandomPool() Pool {
	return Pool{
		Weight: reallyRandomWeight,
		Messages: []string{
			"the council has spoken: {item} holds {total} point{s}",
			"legend says {item} once hit {total} point{s} in a single era ({temp} this one)",
		},
	}
}

// defaultPools binds every operation kind to its template families.
func defaultPools() map[registry.Op][]Pool {
	return map[registry.Op][]Pool{
		registry.OpIncrement: {
			{
				Weight: standardWeight,
				Messages: []string{
					"{item} now has {total} point{s}",
					"nice one, {item}! {total} point{s} total, {temp} this era",
					"{item} +1! that makes {total} point{s}",
				},
			},
			randomPool(),
			reallyRandomPool(),
		},
		registry.OpDecrement: {
			{
				Weight: standardWeight,
				Messages: []string{
					"{item} drops to {total} point{s}",
					"ouch. {item} is down to {total} point{s}",
				},
			},
		},
		registry.OpQuery: {
			{
				Weight: standardWeight,
				Messages: []string{
					"{item} has {total} point{s} ({temp} this era)",
					"current standing for {item}: {total} point{s}, {temp} this era",
				},
			},
		},
		registry.OpSelfAttempt: {
			{
				Weight: standardWeight,
				Messages: []string{
					"no self-service, {item}. still {total} point{s}",
					"patting your own back doesn't count, {item}",
				},
			},
		},
		registry.OpRandom:       {randomPool()},
		registry.OpReallyRandom: {reallyRandomPool()},
	}
}
