// Package ensemble implements the outbreak risk inference model: three base
// learners (disease classifier, risk regressor, alert classifier) trained on
// synthetic history and reconciled by a stacking meta-model. While
// untrained, predictions come from a static per-village table.
package ensemble

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"aquaguard/internal/catalog"
	"aquaguard/internal/features"
	"aquaguard/internal/logger"
	"aquaguard/internal/metrics"
	"aquaguard/internal/models"
)

// Ensemble errors
var (
	// ErrUntrainedVillage means the untrained fallback table has no entry
	// for a village that does exist in the catalog.
	ErrUntrainedVillage = errors.New("village not in untrained fallback table")

	// ErrInsufficientData rejects training sets too small to fit on.
	ErrInsufficientData = errors.New("insufficient training data")
)

const (
	minTrainingRecords = 100
	testFraction       = 0.2

	softmaxIters = 300
	softmaxLR    = 0.5
)

// trainedModel is the immutable state produced by one training run. The
// predictor swaps the whole struct atomically, so concurrent Predict calls
// always see either the old model or the new one, never a mix.
type trainedModel struct {
	scaler     scaler
	metaScaler scaler

	disease *softmaxModel
	risk    *linearModel
	alert   *softmaxModel

	// meta reconciles the base models. Its input is the fixed-order
	// concatenation: disease class probabilities ++ risk scalar ++ alert
	// class probabilities. Changing any base model's output shape breaks
	// this contract and requires retraining.
	meta *softmaxModel

	diseaseClasses []models.DiseaseType

	DiseaseAccuracy float64
	AlertAccuracy   float64
	MetaAccuracy    float64
	RiskR2          float64
	Records         int
	TrainedAt       time.Time
}

// Predictor is the ensemble facade. Train is all-or-nothing; Predict is
// safe for concurrent use against a shared trained model.
type Predictor struct {
	catalog *catalog.Catalog
	builder *features.Builder

	model atomic.Pointer[trainedModel]

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an untrained predictor. A nil src yields non-deterministic
// sampling for the train/test split and the derived case estimates.
func New(cat *catalog.Catalog, builder *features.Builder, src rand.Source) *Predictor {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Predictor{
		catalog: cat,
		builder: builder,
		rng:     rand.New(src),
	}
}

// Trained reports whether a model is currently loaded.
func (p *Predictor) Trained() bool { return p.model.Load() != nil }

// Stats summarizes the current model for operators.
type Stats struct {
	Trained         bool      `json:"trained"`
	Records         int       `json:"records"`
	DiseaseAccuracy float64   `json:"disease_accuracy"`
	AlertAccuracy   float64   `json:"alert_accuracy"`
	MetaAccuracy    float64   `json:"meta_accuracy"`
	RiskR2          float64   `json:"risk_r2"`
	TrainedAt       time.Time `json:"trained_at,omitempty"`
}

// Stats returns training metadata for the loaded model, if any.
func (p *Predictor) Stats() Stats {
	m := p.model.Load()
	if m == nil {
		return Stats{}
	}
	return Stats{
		Trained:         true,
		Records:         m.Records,
		DiseaseAccuracy: m.DiseaseAccuracy,
		AlertAccuracy:   m.AlertAccuracy,
		MetaAccuracy:    m.MetaAccuracy,
		RiskR2:          m.RiskR2,
		TrainedAt:       m.TrainedAt,
	}
}

// Train fits all base models and the stacking meta-model on the dataset.
// It is idempotent: a successful run replaces the prior model atomically,
// and any failure leaves the previous model (or untrained state) in place.
func (p *Predictor) Train(records []models.HistoricalRecord) (err error) {
	log := logger.WithComponent("ensemble")
	start := time.Now()

	// A fit failure must never leave a partially trained predictor.
	defer func() {
		if r := recover(); r != nil {
			metrics.PanicsRecovered.WithLabelValues("ensemble").Inc()
			err = fmt.Errorf("training panic: %v", r)
		}
	}()

	if len(records) < minTrainingRecords {
		return fmt.Errorf("%w: %d records, need %d", ErrInsufficientData, len(records), minTrainingRecords)
	}

	diseaseClasses := collectDiseaseClasses(records)
	diseaseIndex := make(map[models.DiseaseType]int, len(diseaseClasses))
	for i, d := range diseaseClasses {
		diseaseIndex[d] = i
	}

	n := len(records)
	x := mat.NewDense(n, models.NumFeatures, nil)
	diseaseLabels := make([]int, n)
	alertLabels := make([]int, n)
	riskTargets := make([]float64, n)

	for i, rec := range records {
		population := 20000
		if v, lookupErr := p.catalog.Get(rec.VillageID); lookupErr == nil {
			population = v.Population
		}
		fv := features.FromRecord(rec, population)
		x.SetRow(i, fv.Slice())
		diseaseLabels[i] = diseaseIndex[rec.DiseaseType]
		alertLabels[i] = rec.AlertLevel.Rank()
		riskTargets[i] = rec.RiskScore
	}

	trainIdx, testIdx := p.split(n)

	xTrain := subsetRows(x, trainIdx)
	xTest := subsetRows(x, testIdx)
	sc := fitScaler(xTrain)
	sc.transform(xTrain)
	sc.transform(xTest)

	diseaseTrain := subsetInts(diseaseLabels, trainIdx)
	diseaseTest := subsetInts(diseaseLabels, testIdx)
	alertTrain := subsetInts(alertLabels, trainIdx)
	alertTest := subsetInts(alertLabels, testIdx)
	riskTrain := subsetFloats(riskTargets, trainIdx)
	riskTest := subsetFloats(riskTargets, testIdx)

	log.Info().Int("records", n).Int("train", len(trainIdx)).Int("test", len(testIdx)).
		Msg("training ensemble")

	diseaseModel, err := trainSoftmax(xTrain, diseaseTrain, len(diseaseClasses), softmaxIters, softmaxLR)
	if err != nil {
		return fmt.Errorf("disease model: %w", err)
	}

	riskModel, err := trainLinear(xTrain, riskTrain)
	if err != nil {
		return fmt.Errorf("risk model: %w", err)
	}

	alertModel, err := trainSoftmax(xTrain, alertTrain, len(models.AlertLevels), softmaxIters, softmaxLR)
	if err != nil {
		return fmt.Errorf("alert model: %w", err)
	}

	// Stack base-model outputs into the meta feature matrix.
	metaTrain := stackMeta(xTrain, diseaseModel, riskModel, alertModel)
	metaScaler := fitScaler(metaTrain)
	metaScaler.transform(metaTrain)
	metaModel, err := trainSoftmax(metaTrain, alertTrain, len(models.AlertLevels), softmaxIters, softmaxLR)
	if err != nil {
		return fmt.Errorf("meta model: %w", err)
	}

	metaTest := stackMeta(xTest, diseaseModel, riskModel, alertModel)
	metaScaler.transform(metaTest)

	m := &trainedModel{
		scaler:          sc,
		metaScaler:      metaScaler,
		disease:         diseaseModel,
		risk:            riskModel,
		alert:           alertModel,
		meta:            metaModel,
		diseaseClasses:  diseaseClasses,
		DiseaseAccuracy: diseaseModel.accuracy(xTest, diseaseTest),
		AlertAccuracy:   alertModel.accuracy(xTest, alertTest),
		MetaAccuracy:    metaModel.accuracy(metaTest, alertTest),
		RiskR2:          riskModel.rSquared(xTest, riskTest),
		Records:         n,
		TrainedAt:       time.Now(),
	}

	p.model.Store(m)

	metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	metrics.TrainingRecords.Set(float64(n))
	metrics.ModelAccuracy.WithLabelValues("disease").Set(m.DiseaseAccuracy)
	metrics.ModelAccuracy.WithLabelValues("alert").Set(m.AlertAccuracy)
	metrics.ModelAccuracy.WithLabelValues("meta").Set(m.MetaAccuracy)
	metrics.ModelAccuracy.WithLabelValues("risk_r2").Set(m.RiskR2)

	log.Info().
		Float64("disease_accuracy", m.DiseaseAccuracy).
		Float64("alert_accuracy", m.AlertAccuracy).
		Float64("meta_accuracy", m.MetaAccuracy).
		Float64("risk_r2", m.RiskR2).
		Dur("duration", time.Since(start)).
		Msg("ensemble trained")
	return nil
}

// Predict generates a prediction for a village, optionally conditioned on a
// live sensor reading. Unknown villages fail with a lookup error on both
// the trained and untrained path.
func (p *Predictor) Predict(villageID string, reading *models.SensorReading) (models.Prediction, error) {
	village, err := p.catalog.Get(villageID)
	if err != nil {
		metrics.PredictionsFailed.Inc()
		return models.Prediction{}, err
	}

	m := p.model.Load()
	if m == nil {
		return p.predictFallback(village, reading)
	}

	fv, err := p.builder.Build(villageID, reading)
	if err != nil {
		metrics.PredictionsFailed.Inc()
		return models.Prediction{}, err
	}

	xstd := m.scaler.transformVec(fv.Slice())

	diseaseProba := m.disease.proba(xstd)
	diseaseIdx := argmax(diseaseProba)
	disease := m.diseaseClasses[diseaseIdx]
	confidence := diseaseProba[diseaseIdx] * 100

	risk := models.Clamp(m.risk.predict(xstd), 0, 100)

	alertProba := m.alert.proba(xstd)

	// Meta-model input: disease probabilities ++ risk scalar ++ alert
	// probabilities, in that fixed order. The meta-model, not any base
	// model, is authoritative for the final alert level.
	metaRaw := make([]float64, 0, len(diseaseProba)+1+len(alertProba))
	metaRaw = append(metaRaw, diseaseProba...)
	metaRaw = append(metaRaw, risk)
	metaRaw = append(metaRaw, alertProba...)
	level := models.AlertLevels[m.meta.predict(m.metaScaler.transformVec(metaRaw))]

	factors, ok := m.explain(xstd, diseaseIdx)
	if !ok {
		factors = fallbackRiskFactors(villageID)
	}

	metrics.PredictionsTotal.WithLabelValues("trained").Inc()
	return models.Prediction{
		VillageID:               villageID,
		VillageName:             village.Name,
		RiskScore:               math.Round(risk*10) / 10,
		AlertLevel:              level,
		PredictedDisease:        disease,
		ConfidencePercent:       math.Round(confidence*10) / 10,
		CasesPredictedNext7Days: p.estimateCases(risk),
		TopRiskFactors:          factors,
		RecommendedActions:      recommendedActions(level),
		WaterQualityIndex:       estimateWQI(risk),
		Trend:                   trendFor(risk),
		SensorContributed:       reading != nil,
		LastUpdated:             time.Now(),
	}, nil
}

// predictFallback serves the static per-village table used while no model
// is trained. Table misses are a lookup error for that call.
func (p *Predictor) predictFallback(village catalog.Village, reading *models.SensorReading) (models.Prediction, error) {
	demo, ok := demoPredictions[village.ID]
	if !ok {
		metrics.PredictionsFailed.Inc()
		return models.Prediction{}, fmt.Errorf("%w: %s", ErrUntrainedVillage, village.ID)
	}

	metrics.PredictionsTotal.WithLabelValues("fallback").Inc()
	return models.Prediction{
		VillageID:               village.ID,
		VillageName:             village.Name,
		RiskScore:               demo.RiskScore,
		AlertLevel:              demo.AlertLevel,
		PredictedDisease:        demo.Disease,
		ConfidencePercent:       demo.Confidence,
		CasesPredictedNext7Days: p.estimateCases(demo.RiskScore),
		TopRiskFactors:          fallbackRiskFactors(village.ID),
		RecommendedActions:      recommendedActions(demo.AlertLevel),
		WaterQualityIndex:       estimateWQI(demo.RiskScore),
		Trend:                   trendFor(demo.RiskScore),
		SensorContributed:       reading != nil,
		LastUpdated:             time.Now(),
	}, nil
}

// explain attributes the disease classification to individual features via
// the model's weights over the standardized input, reporting the three
// largest absolute impacts. Any failure degrades to the static fallback
// instead of failing the prediction.
func (m *trainedModel) explain(xstd []float64, classIdx int) (factors []models.RiskFactor, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			factors, ok = nil, false
		}
	}()

	if m.disease == nil || m.disease.dim != models.NumFeatures || len(xstd) < models.NumFeatures {
		return nil, false
	}

	type contribution struct {
		feature int
		value   float64
	}
	contribs := make([]contribution, models.NumFeatures)
	for j := 0; j < models.NumFeatures; j++ {
		contribs[j] = contribution{feature: j, value: m.disease.weights.At(classIdx, j) * xstd[j]}
	}
	sort.Slice(contribs, func(a, b int) bool {
		return math.Abs(contribs[a].value) > math.Abs(contribs[b].value)
	})

	top := contribs[:3]
	factors = make([]models.RiskFactor, 0, len(top))
	for _, c := range top {
		direction := models.DirectionDecreasesRisk
		if c.value > 0 {
			direction = models.DirectionIncreasesRisk
		}
		factors = append(factors, models.RiskFactor{
			Feature:   models.FeatureDisplayName(c.feature),
			Impact:    math.Round(math.Abs(c.value)*100) / 100,
			Direction: direction,
		})
	}
	return factors, true
}

// estimateCases draws the expected 7-day case load from one of four risk
// bands; higher bands use distributions with larger means.
func (p *Predictor) estimateCases(risk float64) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	var cases float64
	switch {
	case risk >= 80:
		cases = distuv.Gamma{Alpha: 15, Beta: 0.5, Src: p.rng}.Rand()
	case risk >= 60:
		cases = distuv.Gamma{Alpha: 8, Beta: 1 / 1.5, Src: p.rng}.Rand()
	case risk >= 40:
		cases = distuv.Gamma{Alpha: 4, Beta: 1, Src: p.rng}.Rand()
	default:
		cases = distuv.Poisson{Lambda: 2, Src: p.rng}.Rand()
	}
	if cases < 0 {
		return 0
	}
	return int(cases)
}

func estimateWQI(risk float64) float64 {
	return math.Round(models.Clamp(100-risk*0.8, 0, 100)*10) / 10
}

func trendFor(risk float64) models.Trend {
	switch {
	case risk >= 70:
		return models.TrendWorsening
	case risk <= 30:
		return models.TrendImproving
	default:
		return models.TrendStable
	}
}

// split shuffles row indices and carves off the held-out test fraction.
func (p *Predictor) split(n int) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	p.mu.Lock()
	p.rng.Shuffle(n, func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
	p.mu.Unlock()

	testN := int(float64(n) * testFraction)
	if testN < 1 {
		testN = 1
	}
	return idx[testN:], idx[:testN]
}

// collectDiseaseClasses label-encodes the disease types present in the
// dataset, sorted for a stable encoding.
func collectDiseaseClasses(records []models.HistoricalRecord) []models.DiseaseType {
	seen := make(map[models.DiseaseType]bool)
	for _, rec := range records {
		seen[rec.DiseaseType] = true
	}
	classes := make([]models.DiseaseType, 0, len(seen))
	for d := range seen {
		classes = append(classes, d)
	}
	sort.Slice(classes, func(a, b int) bool { return classes[a] < classes[b] })
	return classes
}

// stackMeta computes the meta feature matrix for already-standardized base
// inputs.
func stackMeta(x *mat.Dense, disease *softmaxModel, risk *linearModel, alert *softmaxModel) *mat.Dense {
	rows, _ := x.Dims()
	cols := disease.classes + 1 + alert.classes
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, x)
		row := make([]float64, 0, cols)
		row = append(row, disease.proba(sample)...)
		row = append(row, models.Clamp(risk.predict(sample), 0, 100))
		row = append(row, alert.proba(sample)...)
		out.SetRow(i, row)
	}
	return out
}

func subsetRows(x *mat.Dense, idx []int) *mat.Dense {
	_, cols := x.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, r := range idx {
		out.SetRow(i, mat.Row(nil, r, x))
	}
	return out
}

func subsetInts(v []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, r := range idx {
		out[i] = v[r]
	}
	return out
}

func subsetFloats(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = v[r]
	}
	return out
}
