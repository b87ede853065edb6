package ensemble

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"aquaguard/internal/catalog"
	"aquaguard/internal/dataset"
	"aquaguard/internal/features"
	"aquaguard/internal/models"
)

func newTestPredictor(seed uint64) *Predictor {
	cat := catalog.Default()
	builder := features.NewBuilder(cat, rand.NewPCG(seed, seed))
	return New(cat, builder, rand.NewPCG(seed+1, seed+1))
}

func trainingRecords(seed uint64) []models.HistoricalRecord {
	gen := dataset.New(rand.NewPCG(seed, seed))
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)
	return gen.Generate(catalog.Default().All(), start, end)
}

func TestPredictUnknownVillage(t *testing.T) {
	p := newTestPredictor(1)

	if _, err := p.Predict("XX_NOPE", nil); !errors.Is(err, catalog.ErrUnknownVillage) {
		t.Fatalf("Predict error = %v, want ErrUnknownVillage", err)
	}
}

func TestPredictFallbackTable(t *testing.T) {
	p := newTestPredictor(2)
	if p.Trained() {
		t.Fatalf("fresh predictor should not be trained")
	}

	pred, err := p.Predict("MH_SHA", nil)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if pred.RiskScore != 91 || pred.AlertLevel != models.AlertCritical {
		t.Errorf("MH_SHA fallback = %.0f/%s, want 91/critical", pred.RiskScore, pred.AlertLevel)
	}
	if pred.PredictedDisease != models.DiseaseCholera {
		t.Errorf("MH_SHA disease = %s, want cholera", pred.PredictedDisease)
	}
	if pred.Trend != models.TrendWorsening {
		t.Errorf("risk 91 trend = %s, want worsening", pred.Trend)
	}
	if len(pred.TopRiskFactors) != 3 {
		t.Errorf("got %d risk factors, want 3", len(pred.TopRiskFactors))
	}
	if len(pred.RecommendedActions) == 0 {
		t.Errorf("no recommended actions for a critical prediction")
	}
	if pred.SensorContributed {
		t.Errorf("prediction without a reading marked sensor-contributed")
	}

	calm, err := p.Predict("MH_CHA", nil)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if calm.RiskScore != 12 || calm.AlertLevel != models.AlertBaseline {
		t.Errorf("MH_CHA fallback = %.0f/%s, want 12/baseline", calm.RiskScore, calm.AlertLevel)
	}
	if calm.Trend != models.TrendImproving {
		t.Errorf("risk 12 trend = %s, want improving", calm.Trend)
	}
}

func TestPredictFallbackMissIsError(t *testing.T) {
	cat := catalog.New(append(catalog.DefaultVillages(),
		catalog.Village{ID: "MH_NEW", Name: "Newtown", Population: 9000}))
	builder := features.NewBuilder(cat, rand.NewPCG(3, 3))
	p := New(cat, builder, rand.NewPCG(4, 4))

	if _, err := p.Predict("MH_NEW", nil); !errors.Is(err, ErrUntrainedVillage) {
		t.Fatalf("Predict error = %v, want ErrUntrainedVillage", err)
	}
}

func TestTrainRejectsSmallDataset(t *testing.T) {
	p := newTestPredictor(5)

	records := trainingRecords(5)[:50]
	if err := p.Train(records); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Train error = %v, want ErrInsufficientData", err)
	}
	if p.Trained() {
		t.Fatalf("failed training must leave the predictor untrained")
	}
}

func TestTrainAndPredict(t *testing.T) {
	p := newTestPredictor(6)
	records := trainingRecords(6)

	if err := p.Train(records); err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	if !p.Trained() {
		t.Fatalf("predictor not trained after successful Train")
	}

	stats := p.Stats()
	if stats.Records != len(records) {
		t.Errorf("Stats.Records = %d, want %d", stats.Records, len(records))
	}
	if stats.MetaAccuracy <= 0 || stats.MetaAccuracy > 1 {
		t.Errorf("meta accuracy %v outside (0,1]", stats.MetaAccuracy)
	}

	for _, village := range catalog.Default().All() {
		pred, err := p.Predict(village.ID, nil)
		if err != nil {
			t.Fatalf("Predict(%s) returned error: %v", village.ID, err)
		}
		if pred.RiskScore < 0 || pred.RiskScore > 100 {
			t.Errorf("%s risk score %v outside [0,100]", village.ID, pred.RiskScore)
		}
		if !pred.AlertLevel.IsValid() {
			t.Errorf("%s alert level %q invalid", village.ID, pred.AlertLevel)
		}
		if pred.CasesPredictedNext7Days < 0 {
			t.Errorf("%s negative case estimate", village.ID)
		}
		if len(pred.TopRiskFactors) != 3 {
			t.Errorf("%s has %d risk factors, want 3", village.ID, len(pred.TopRiskFactors))
		}
		if pred.WaterQualityIndex < 0 || pred.WaterQualityIndex > 100 {
			t.Errorf("%s WQI %v outside [0,100]", village.ID, pred.WaterQualityIndex)
		}
	}
}

func TestTrainDeterministicWithSeed(t *testing.T) {
	records := trainingRecords(7)

	a := newTestPredictor(7)
	b := newTestPredictor(7)
	if err := a.Train(records); err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	if err := b.Train(records); err != nil {
		t.Fatalf("Train returned error: %v", err)
	}

	sa, sb := a.Stats(), b.Stats()
	if sa.DiseaseAccuracy != sb.DiseaseAccuracy || sa.AlertAccuracy != sb.AlertAccuracy ||
		sa.MetaAccuracy != sb.MetaAccuracy || sa.RiskR2 != sb.RiskR2 {
		t.Fatalf("identically seeded training produced different stats:\n%+v\n%+v", sa, sb)
	}

	pa, err := a.Predict("MH_SHP", nil)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	pb, err := b.Predict("MH_SHP", nil)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if pa.RiskScore != pb.RiskScore || pa.AlertLevel != pb.AlertLevel ||
		pa.PredictedDisease != pb.PredictedDisease {
		t.Fatalf("identically seeded predictions differ:\n%+v\n%+v", pa, pb)
	}
}

func TestPredictWithSensorReading(t *testing.T) {
	p := newTestPredictor(8)
	if err := p.Train(trainingRecords(8)); err != nil {
		t.Fatalf("Train returned error: %v", err)
	}

	reading := &models.SensorReading{
		DeviceID:     "AQG-UNIT-001",
		VillageID:    "MH_SHP",
		PHLevel:      7.2,
		TurbidityNTU: 1.1,
		TDSPPM:       312,
	}

	pred, err := p.Predict("MH_SHP", reading)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if !pred.SensorContributed {
		t.Errorf("prediction with a live reading not marked sensor-contributed")
	}
}

func TestEstimateCasesBands(t *testing.T) {
	p := newTestPredictor(9)

	avg := func(risk float64) float64 {
		sum := 0
		for i := 0; i < 300; i++ {
			c := p.estimateCases(risk)
			if c < 0 {
				t.Fatalf("negative case estimate for risk %v", risk)
			}
			sum += c
		}
		return float64(sum) / 300
	}

	low := avg(10)
	mid := avg(45)
	high := avg(65)
	severe := avg(85)

	if !(severe > high && high > mid && mid > low) {
		t.Fatalf("case estimates not ordered by risk band: %.1f %.1f %.1f %.1f",
			low, mid, high, severe)
	}
}

func TestTrendAndWQIFromRisk(t *testing.T) {
	if trendFor(75) != models.TrendWorsening {
		t.Errorf("risk 75 should trend worsening")
	}
	if trendFor(50) != models.TrendStable {
		t.Errorf("risk 50 should trend stable")
	}
	if trendFor(20) != models.TrendImproving {
		t.Errorf("risk 20 should trend improving")
	}

	if got := estimateWQI(0); got != 100 {
		t.Errorf("estimateWQI(0) = %v, want 100", got)
	}
	if got := estimateWQI(100); got != 20 {
		t.Errorf("estimateWQI(100) = %v, want 20", got)
	}
	if got := estimateWQI(50); got != 60 {
		t.Errorf("estimateWQI(50) = %v, want 60", got)
	}
}
