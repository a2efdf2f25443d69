package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
)

type Scenario struct {
	Description string
	Steps       int
	Bodies      []dynamo.Body
}

func b(mass, radius, x, y, vx, vy float64, tag string) dynamo.Body {
	return dynamo.Body{
		Mass:     mass,
		Radius:   radius,
		Position: dynamo.V2(x, y),
		Velocity: dynamo.V2(vx, vy),
		Tag:      tag,
	}
}

// Distances are in simulation pixels, masses in kg and speeds in px per
// internal second.
var Scenarios = map[string]Scenario{
	"solar": {
		Description: "the Sun, eight planets and their larger moons",
		Steps:       20000,
		Bodies: []dynamo.Body{
			b(1.9889e30, 6960, 500000, 300000, 0, 0, "#ff0"),
			b(3.3022e23, 3000, 1079100, 300000, 0, 5289.007336, "#ddd"),
			b(4.8685e24, 3000, 1582100, 300000, 0, 3869.165024, "#aac"),
			b(5.9736e24, 3000, 1996000, 300000, 0, 3290.6762, "#99f"),
			b(7.3477e22, 3000, 1999844, 300000, 0, 3178.17145, "#ddd"),
			b(6.4185e23, 3000, 2779400, 300000, 0, 2665.880512, "#f99"),
			b(1.896e27, 3000, 8285500, 300000, 0, 1442.473015, "#99f"),
			b(4.8e22, 3000, 8292209, 300000, 0, -74.69873852, "#fff"),
			b(1.4819e23, 3000, 8296204, 300000, 0, 241.341411, "#ddd"),
			b(1.0759e23, 3000, 8304430, 300000, 0, 536.868698, "#eee"),
			b(5.6846e26, 3000, 14834000, 300000, 0, 1063.083192, "#99f"),
			b(2.306e21, 3000, 14839271, 300000, 0, 155.8494292, "#ddd"),
			b(1.3452e23, 3000, 14846220, 300000, 0, 447.539578, "#88f"),
			b(8.6810e25, 3000, 29267000, 300000, 0, 750.4187296, "#9f9"),
			b(3.527e21, 3000, 29271359, 300000, 0, 347.6683842, "#ddd"),
			b(3.014e21, 3000, 29272840, 300000, 0, 402.4638492, "#ddd"),
			b(1.0243e26, 3000, 45534000, 300000, 0, 599.7644084, "#bbf"),
			b(2.14e22, 3000, 45537547, 300000, 0, 114.7803426, "#eee"),
			b(3.1e19, 3000, 45589137, 300000, 0, 476.7555188, "#ddd"),
		},
	},
	"binary": {
		Description: "two equal stars on a circular orbit",
		Steps:       1245,
		Bodies: []dynamo.Body{
			b(1e29, 10000, 500000, 300000, 0, 1009.01932588033218502780, "#ff0"),
			b(1e29, 10000, 900000, 300000, 0, -1009.01932588033218502780, "#ff0"),
		},
	},
	"sun-jupiter": {
		Description: "Sun and Jupiter with a massless particle at the L3 point",
		Steps:       10000,
		Bodies: []dynamo.Body{
			b(1.9889e30, 10000, 499809.3418472522, 300000, 0, 8.5753931246, "#ff0"),
			b(1.896e27, 5000, 699809.341847252, 300000, 0, -8995.5692961461, "#ff0"),
			b(1e-30, 1, 294700.658152748, 300000, 0, 8879.6940, "#ff0"),
		},
	},
	"four-body": {
		Description: "four equal stars circling their common centre",
		Steps:       5000,
		Bodies: []dynamo.Body{
			b(1e29, 6000, 300000, 300000, 0, 1611.913967132568359375, "#ff0"),
			b(1e29, 6000, 900000, 300000, 0, -1611.913967132568359375, "#ff0"),
			b(1e29, 6000, 600000, 600000, 1611.913967132568359375, 0, "#ff0"),
			b(1e29, 6000, 600000, 0, -1611.913967132568359375, 0, "#ff0"),
		},
	},
	"gliese-876": {
		Description: "red dwarf with two giant planets in 2:1 resonance",
		Steps:       10000,
		Bodies: []dynamo.Body{
			b(6.642926e29, 6960, 6000000, 3000000, 0, 0, "#ff0"),
			b(1.57368e27, 3000, 6197472, 3000000, 0, 5234.45442451708230028402, "#f0f"),
			b(5.0054e27, 3000, 6315656, 3000000, 0, 4140.16034, "#0ff"),
		},
	},
	"55-cancri": {
		Description: "55 Cancri A, four of its planets and the distant companion B",
		Steps:       10000,
		Bodies: []dynamo.Body{
			b(1.8895e30, 6960, 6000000, 3000000, 0, 0, "#ff0"),
			b(1.5623e27, 3000, 6172040, 3000000, 0, 9458.08492, "#f0f"),
			b(3.2042e26, 3000, 6359040, 3000000, 0, 6547.062824, "#0ff"),
			b(2.7302e26, 3000, 7168376, 3000000, 0, 3629.3312848, "#ff0"),
			b(7.2712e27, 3000, 14631920, 3000000, 0, 1335.25503, "#f0f"),
			b(2.58557e29, 3000, 1599240000, 3000000, 0, 98.2827558, "#ff0"),
		},
	},
	"51-pegasi": {
		Description: "a hot Jupiter on a four-day orbit",
		Steps:       5000,
		Bodies: []dynamo.Body{
			b(2.1082e30, 6960, 6000000, 3000000, 0, 0, "#ff0"),
			b(8.9491e26, 3000, 6078839, 3000000, 0, 14758.078936, "#f00"),
		},
	},
	"47-uma": {
		Description: "47 Ursae Majoris and three gas giants",
		Steps:       20000,
		Bodies: []dynamo.Body{
			b(2.148e30, 6960, 6000000, 3000000, 0, 0, "#ff0"),
			b(4.79688e27, 3000, 9141600, 3000000, 0, 2359.8596376, "#f0f"),
			b(1.02384e27, 3000, 11385600, 3000000, 0, 1802.37257, "#0ff"),
			b(3.10944e27, 3000, 23353600, 3000000, 0, 1004.0765516, "#f00"),
		},
	},
	"upsilon-andromedae": {
		Description: "Upsilon Andromedae and its outer two planets",
		Steps:       10000,
		Bodies: []dynamo.Body{
			b(2.5468e30, 6960, 6000000, 3000000, 0, 0, "#ff0"),
			b(3.6453e27, 3000, 7244672, 3000000, 0, 4082.38952, "#f0f"),
			b(7.8412e27, 3000, 9784880, 3000000, 0, 2341.07776, "#0ff"),
		},
	},
	"pyramid": {
		Description: "a stack of touching balls struck by a huge fast sphere",
		Steps:       3000,
		Bodies: []dynamo.Body{
			b(3e28, 27000, 200000, 300000, 0, 0, "#f00"),
			b(3e28, 27000, 254000, 300000, 0, 0, "#f00"),
			b(9.6e38, 506400000, -9000000000, 450000, 4555000, 0, "#f00"),
			b(3e28, 27000, 308000, 393530.7436087194, 0, 0, "#ff0"),
			b(3e28, 27000, 254000, 393530.7436087194, 0, 0, "#ff0"),
			b(3e28, 27000, 362000, 393530.7436087194, 0, 0, "#ff0"),
			b(3e28, 27000, 416000, 393530.7436087194, 0, 0, "#ff0"),
			b(3e28, 27000, 227000, 346765.3718043597, 0, 0, "#ff0"),
			b(3e28, 27000, 281000, 346765.3718043597, 0, 0, "#ff0"),
			b(3e28, 27000, 335000, 440296.1154130791, 0, 0, "#0ff"),
			b(3e28, 27000, 389000, 440296.1154130791, 0, 0, "#0ff"),
			b(3e28, 27000, 281000, 440296.1154130791, 0, 0, "#0ff"),
			b(3e28, 27000, 308000, 487061.4872174388, 0, 0, "#0ff"),
			b(3e28, 27000, 362000, 487061.4872174388, 0, 0, "#0ff"),
			b(3e28, 27000, 335000, 533826.8590217985, 0, 0, "#0ff"),
			b(3e28, 27000, 335000, 346765.3718043597, 0, 0, "#ff0"),
			b(3e28, 27000, 389000, 346765.3718043597, 0, 0, "#ff0"),
			b(3e28, 27000, 443000, 346765.3718043597, 0, 0, "#ff0"),
			b(3e28, 27000, 308000, 300000, 0, 0, "#f00"),
			b(3e28, 27000, 362000, 300000, 0, 0, "#f00"),
			b(3e28, 27000, 416000, 300000, 0, 0, "#f00"),
			b(3e28, 27000, 470000, 300000, 0, 0, "#f00"),
		},
	},
	"kepler-16": {
		Description: "circumbinary planet around a K and an M dwarf",
		Steps:       20000,
		Bodies: []dynamo.Body{
			b(1.37174433e30, 6000, 423913.45703234486238017826, 300000, 0, -1427.52795303998368297237, "#ff0"),
			b(4.02255025e29, 2000, 759465.45703234486238017826, 300000, 0, 4862.24823832120908357513, "#ff0"),
			b(6.3199999999999368e26, 500, 1554380, 300000, 0, 3701.88107120123905059218, "#fff"),
		},
	},
	"collision-line": {
		Description: "a row of shrinking balls thrown at a heavy target",
		Steps:       500,
		Bodies: []dynamo.Body{
			b(1e28, 80000, 0, 300000, 0, 0, "#f0f"),
			b(5e20, 50000, 800000, 300000, -10000, 0, "#ff0"),
			b(4e20, 40000, 890000, 300000, -10000, 0, "#ff0"),
			b(3e20, 30000, 960000, 300000, -10000, 0, "#ff0"),
			b(2e20, 20000, 1010000, 300000, -10000, 0, "#ff0"),
			b(1e20, 10000, 1040000, 300000, -10000, 0, "#ff0"),
		},
	},
	"two-body-fall": {
		Description: "two balls released at rest",
		Steps:       2000,
		Bodies: []dynamo.Body{
			b(3e28, 27000, 100000, 300000, 0, 0, "#f00"),
			b(3e28, 27000, 1000000, 300000, 0, 0, "#ff0"),
		},
	},
	"empty": {
		Description: "nothing; add bodies interactively",
		Steps:       1000,
	},
}

// GetScenario returns a copy of the named scenario. Its bodies may be
// modified freely.
func GetScenario(name string) (Scenario, error) {
	sc, ok := Scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", dynamo.ErrUnknownScenario, name)
	}
	sc.Bodies = append([]dynamo.Body(nil), sc.Bodies...)
	return sc, nil
}

func ListScenarios() []string {
	names := make([]string, 0, len(Scenarios))
	for name := range Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset builds a run config for a scenario with its suggested length.
func Preset(name string) (*Config, error) {
	sc, ok := Scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownScenario, name)
	}
	cfg := DefaultConfig()
	cfg.Scenario = name
	cfg.Steps = sc.Steps
	return cfg, nil
}
