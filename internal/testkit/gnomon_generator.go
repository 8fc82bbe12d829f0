package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"vectralab/domain/gnomon"
)

// Column headers written by the acquisition software.
const (
	HeaderTime   = "Time (s)"
	HeaderAngle  = "Angle"
	HeaderAngleX = "Angle x"
	HeaderAngleY = "Angle y"
)

// GnomonGeneratorConfig configures a synthetic channel recording
type GnomonGeneratorConfig struct {
	Name          string             `json:"name"`
	Kind          gnomon.ChannelKind `json:"kind"`
	Samples       int                `json:"samples"`
	IntervalSec   float64            `json:"interval_sec"`
	StartTimeSec  float64            `json:"start_time_sec"`
	PeriodHours   float64            `json:"period_hours"`
	StartAngleDeg float64            `json:"start_angle_deg"`
	HeadingDeg    float64            `json:"heading_deg"` // direction of travel of radial channels
	NoiseDeg      float64            `json:"noise_deg"`   // gaussian sd added to each angle
	Seed          int64              `json:"seed"`
}

// DefaultSolarConfig returns a noiseless six-hour linear recording at one reading per minute.
func DefaultSolarConfig() GnomonGeneratorConfig {
	return GnomonGeneratorConfig{
		Name:          "solar",
		Kind:          gnomon.KindLinear,
		Samples:       360,
		IntervalSec:   60,
		PeriodHours:   gnomon.SolarPeriodHours,
		StartAngleDeg: 15,
		Seed:          42,
	}
}

// DefaultSiderealConfig returns the radial counterpart of DefaultSolarConfig.
func DefaultSiderealConfig() GnomonGeneratorConfig {
	cfg := DefaultSolarConfig()
	cfg.Name = "sidereal"
	cfg.Kind = gnomon.KindRadial
	cfg.PeriodHours = gnomon.SiderealPeriodHours
	cfg.HeadingDeg = 30
	return cfg
}

// GnomonDataGenerator generates channels whose angle advances at a constant rate
type GnomonDataGenerator struct {
	config GnomonGeneratorConfig
	rng    *rand.Rand
}

// NewGnomonDataGenerator creates a new generator
func NewGnomonDataGenerator(config GnomonGeneratorConfig) *GnomonDataGenerator {
	return &GnomonDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// DegreesPerSecond is the angular rate implied by the configured period.
func (g *GnomonDataGenerator) DegreesPerSecond() float64 {
	return 360.0 / (g.config.PeriodHours * 3600)
}

// Generate produces one channel. Radial channels move along a fixed heading so the
// Euclidean displacement grows at the same rate as the linear angle.
func (g *GnomonDataGenerator) Generate() (gnomon.Channel, error) {
	cfg := g.config
	if cfg.Samples <= 0 || cfg.IntervalSec <= 0 || cfg.PeriodHours <= 0 {
		return gnomon.Channel{}, fmt.Errorf("generator needs positive samples, interval and period")
	}

	ch := gnomon.Channel{Name: cfg.Name, Kind: cfg.Kind}
	rate := g.DegreesPerSecond()
	heading := cfg.HeadingDeg * math.Pi / 180

	for i := 0; i < cfg.Samples; i++ {
		elapsed := float64(i) * cfg.IntervalSec
		t := cfg.StartTimeSec + elapsed
		swept := rate * elapsed

		if cfg.Kind == gnomon.KindRadial {
			ch.RadialSamples = append(ch.RadialSamples, gnomon.RadialSample{
				Time:   t,
				AngleX: cfg.StartAngleDeg + swept*math.Cos(heading) + g.noise(),
				AngleY: cfg.StartAngleDeg + swept*math.Sin(heading) + g.noise(),
			})
			continue
		}
		ch.Samples = append(ch.Samples, gnomon.Sample{
			Time:  t,
			Angle: cfg.StartAngleDeg + swept + g.noise(),
		})
	}
	return ch, nil
}

func (g *GnomonDataGenerator) noise() float64 {
	if g.config.NoiseDeg == 0 {
		return 0
	}
	return g.rng.NormFloat64() * g.config.NoiseDeg
}

// WriteCSV writes ch in the acquisition software's column layout.
func WriteCSV(path string, ch gnomon.Channel) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range Rows(ch) {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Rows renders ch as a header row followed by one row per reading.
func Rows(ch gnomon.Channel) [][]string {
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	if ch.Kind == gnomon.KindRadial {
		rows := [][]string{{HeaderTime, HeaderAngleX, HeaderAngleY}}
		for _, s := range ch.RadialSamples {
			rows = append(rows, []string{format(s.Time), format(s.AngleX), format(s.AngleY)})
		}
		return rows
	}
	rows := [][]string{{HeaderTime, HeaderAngle}}
	for _, s := range ch.Samples {
		rows = append(rows, []string{format(s.Time), format(s.Angle)})
	}
	return rows
}
