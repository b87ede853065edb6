// Package features maps a (village, optional live reading) pair into the
// fixed feature vector the ensemble consumes. No ground-truth symptom
// stream exists outside the historical generator, so non-sensor features
// are drawn from the same noise model the untrained fallback uses.
package features

import (
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"aquaguard/internal/catalog"
	"aquaguard/internal/models"
)

// Builder constructs feature vectors for prediction calls.
type Builder struct {
	catalog *catalog.Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBuilder creates a builder over the village catalog. A nil src yields
// non-deterministic noise draws.
func NewBuilder(cat *catalog.Catalog, src rand.Source) *Builder {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Builder{catalog: cat, rng: rand.New(src)}
}

// Build produces the feature vector for a village, folding in water-quality
// fields from the live reading when one is supplied. Unknown villages are a
// lookup error; the build itself never fails for a known village.
func (b *Builder) Build(villageID string, reading *models.SensorReading) (models.FeatureVector, error) {
	village, err := b.catalog.Get(villageID)
	if err != nil {
		return models.FeatureVector{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var ph, turbidity, tds float64
	if reading != nil {
		ph = reading.PHLevel
		turbidity = reading.TurbidityNTU
		tds = reading.TDSPPM
	} else {
		ph = 7.0 + b.normal(0, 0.2)
		turbidity = 2.0 + b.gamma(2, 0.5)
		tds = 350 + b.normal(0, 30)
	}

	symptomScore := b.gamma(2, 1.5)
	coliform := 5 + b.gamma(2, 2)
	chlorine := math.Max(0, 0.5-b.gamma(0.5, 0.2))

	wqi := models.Clamp(
		100-(math.Abs(ph-7)*10+turbidity*5+coliform*2+chlorine*15),
		0, 100)

	rainfall := b.gamma(3, 5)
	temperature := 25 + b.normal(0, 3)
	environmentalRisk := rainfall*0.3 + math.Abs(25-temperature)*0.2

	var fv models.FeatureVector
	fv[models.FeatSymptomScore] = symptomScore
	fv[models.FeatWaterQualityIndex] = wqi
	fv[models.FeatEnvironmentalRisk] = environmentalRisk
	fv[models.FeatRolling7DayCaseRate] = float64(b.poisson(3))
	fv[models.FeatLag1Cases] = float64(b.poisson(2))
	fv[models.FeatLag3Cases] = float64(b.poisson(2))
	fv[models.FeatLag7Cases] = float64(b.poisson(2))
	fv[models.FeatPHLevel] = ph
	fv[models.FeatTurbidityNTU] = turbidity
	fv[models.FeatTDSPPM] = tds
	fv[models.FeatColiformCFU] = coliform
	fv[models.FeatChlorinePPM] = chlorine
	fv[models.FeatRainfallMM] = rainfall
	fv[models.FeatTemperatureCelsius] = temperature
	fv[models.FeatPopulation] = float64(village.Population)
	return fv, nil
}

// FromRecord maps a historical record into the shared feature order. Used
// by training.
func FromRecord(rec models.HistoricalRecord, population int) models.FeatureVector {
	var fv models.FeatureVector
	fv[models.FeatSymptomScore] = rec.SymptomScore
	fv[models.FeatWaterQualityIndex] = rec.WaterQualityIndex
	fv[models.FeatEnvironmentalRisk] = rec.EnvironmentalRisk
	fv[models.FeatRolling7DayCaseRate] = rec.Rolling7DayCaseRate
	fv[models.FeatLag1Cases] = rec.Lag1Cases
	fv[models.FeatLag3Cases] = rec.Lag3Cases
	fv[models.FeatLag7Cases] = rec.Lag7Cases
	fv[models.FeatPHLevel] = rec.PHLevel
	fv[models.FeatTurbidityNTU] = rec.TurbidityNTU
	fv[models.FeatTDSPPM] = rec.TDSPPM
	fv[models.FeatColiformCFU] = rec.ColiformCFU
	fv[models.FeatChlorinePPM] = rec.ChlorinePPM
	fv[models.FeatRainfallMM] = rec.RainfallMM
	fv[models.FeatTemperatureCelsius] = rec.TemperatureCelsius
	fv[models.FeatPopulation] = float64(population)
	return fv
}

func (b *Builder) gamma(shape, scale float64) float64 {
	return distuv.Gamma{Alpha: shape, Beta: 1 / scale, Src: b.rng}.Rand()
}

func (b *Builder) normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: b.rng}.Rand()
}

func (b *Builder) poisson(lambda float64) int {
	return int(distuv.Poisson{Lambda: lambda, Src: b.rng}.Rand())
}
