package config

// hippoWaterO and hippoWaterH approximate the HIPPO water parameters in
// e, Å and kcal/mol units.
func hippoWaterO(z, x int) ParticleConfig {
	return ParticleConfig{
		Mass:          15.999,
		CoreCharge:    8.0,
		ValenceCharge: -8.594,
		Dipole:        [3]float64{0.0, 0.0, 0.079},
		Quadrupole:    [6]float64{0.227, 0.0, 0.0, -0.324, 0.0, 0.097},
		Frame:         FrameConfig{Axis: "bisector", Z: z, X: x, Y: -1},
		Alpha:          4.70,
		Polarizability: 0.976,
		C6:             2.58,
		PauliK:         4.12,
		PauliQ:         1.22,
		PauliAlpha:     4.45,
		EpsilonCT:      0.54,
		DampingCT:      3.99,
	}
}

func hippoWaterH(z, x int) ParticleConfig {
	return ParticleConfig{
		Mass:          1.008,
		CoreCharge:    1.0,
		ValenceCharge: -0.703,
		Dipole:        [3]float64{-0.047, 0.0, -0.064},
		Quadrupole:    [6]float64{-0.005, 0.0, -0.008, 0.027, 0.0, -0.022},
		Frame:         FrameConfig{Axis: "z-then-x", Z: z, X: x, Y: -1},
		Alpha:          4.88,
		Polarizability: 0.427,
		C6:             0.84,
		PauliK:         1.31,
		PauliQ:         0.47,
		PauliAlpha:     4.08,
		EpsilonCT:      0.37,
		DampingCT:      4.66,
	}
}

func at(p ParticleConfig, x, y, z float64) ParticleConfig {
	p.Position = [3]float64{x, y, z}
	return p
}

func waterExceptions(o, h1, h2 int) []ExceptionConfig {
	return []ExceptionConfig{
		{I: o, J: h1, DipoleMultipole: 1, DipoleDipole: 1},
		{I: o, J: h2, DipoleMultipole: 1, DipoleDipole: 1},
		{I: h1, J: h2, DipoleMultipole: 1, DipoleDipole: 1},
	}
}

func waterDimer() *Config {
	cfg := DefaultConfig()
	cfg.Particles = []ParticleConfig{
		at(hippoWaterO(1, 2), -1.517, 0.000, 0.059),
		at(hippoWaterH(0, 2), -0.560, 0.000, -0.046),
		at(hippoWaterH(0, 1), -1.854, 0.000, -0.841),
		at(hippoWaterO(4, 5), 1.396, 0.000, -0.062),
		at(hippoWaterH(3, 5), 1.753, 0.762, 0.409),
		at(hippoWaterH(3, 4), 1.753, -0.762, 0.409),
	}
	cfg.Exceptions = append(waterExceptions(0, 1, 2), waterExceptions(3, 4, 5)...)
	return cfg
}

func waterBox() *Config {
	cfg := waterDimer()
	cfg.Method = "pme"
	cfg.Cutoff = 7.0
	cfg.Box = &BoxConfig{
		A: [3]float64{18.6, 0, 0},
		B: [3]float64{0, 18.6, 0},
		C: [3]float64{0, 0, 18.6},
	}
	return cfg
}

func ionPair() *Config {
	cfg := DefaultConfig()
	cfg.Polarization = "direct"
	cfg.Particles = []ParticleConfig{
		at(ParticleConfig{
			Mass:       22.990,
			CoreCharge: 9.0, ValenceCharge: -8.0,
			Frame: FrameConfig{Axis: "none", Z: -1, X: -1, Y: -1},
			Alpha: 5.84, Polarizability: 0.144,
			C6: 0.86, PauliK: 1.55, PauliAlpha: 5.27,
		}, 0, 0, 0),
		at(ParticleConfig{
			Mass:       35.453,
			CoreCharge: 7.0, ValenceCharge: -8.0,
			Frame: FrameConfig{Axis: "none", Z: -1, X: -1, Y: -1},
			Alpha: 3.66, Polarizability: 3.25,
			C6: 3.42, PauliK: 3.88, PauliAlpha: 3.85,
		}, 2.8, 0, 0),
	}
	return cfg
}

var Presets = map[string]*Config{
	"water-dimer": waterDimer(),
	"water-box":   waterBox(),
	"ion-pair":    ionPair(),
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
