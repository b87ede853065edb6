// Package alerting turns predictions into alert decisions and carries them
// to an alert sink. The policy is a pure threshold function; the sink is
// the abstract surface consumed by the layers outside this core.
package alerting

import (
	"aquaguard/internal/models"
)

// EmitThreshold is the risk score at and above which an alert is emitted.
const EmitThreshold = 60.0

// Policy maps a prediction to an alert emission decision and a resource
// estimate.
type Policy struct{}

// NewPolicy returns the standard decision policy.
func NewPolicy() *Policy { return &Policy{} }

// Decide emits an alert iff the prediction's risk score reaches the
// threshold. Population is accepted for the estimate but the reference
// resource tiers use fixed minimums, not a population-scaled formula.
func (p *Policy) Decide(pred models.Prediction, population int) models.AlertDecision {
	return models.AlertDecision{
		ShouldEmit:  pred.RiskScore >= EmitThreshold,
		AlertLevel:  pred.AlertLevel,
		RiskScore:   pred.RiskScore,
		CasesAtRisk: pred.CasesPredictedNext7Days,
		Resources:   EstimateResources(pred.AlertLevel, pred.CasesPredictedNext7Days, population),
	}
}

// EstimateResources computes the response resource plan. The tiers are a
// step function of the alert level; only the ORS minimum scales with the
// projected case load.
func EstimateResources(level models.AlertLevel, casesAtRisk, population int) models.ResourceEstimate {
	_ = population // tiers are deliberately population-independent

	var est models.ResourceEstimate
	switch level {
	case models.AlertCritical:
		est = models.ResourceEstimate{
			ORSPackets:       maxInt(500, casesAtRisk*10),
			MedicalStaff:     8,
			WaterTestingKits: 20,
			ChlorineTablets:  1000,
			EstimatedCostINR: 45000,
		}
	case models.AlertHigh:
		est = models.ResourceEstimate{
			ORSPackets:       maxInt(200, casesAtRisk*8),
			MedicalStaff:     4,
			WaterTestingKits: 10,
			ChlorineTablets:  500,
			EstimatedCostINR: 22000,
		}
	case models.AlertMedium:
		est = models.ResourceEstimate{
			ORSPackets:       maxInt(100, casesAtRisk*5),
			MedicalStaff:     2,
			WaterTestingKits: 5,
			ChlorineTablets:  250,
			EstimatedCostINR: 12000,
		}
	default:
		est = models.ResourceEstimate{
			ORSPackets:       50,
			MedicalStaff:     1,
			WaterTestingKits: 2,
			ChlorineTablets:  100,
			EstimatedCostINR: 5000,
		}
	}

	if level == models.AlertCritical || level == models.AlertHigh {
		est.ResponseTimeEstimate = "2-4 hours"
	} else {
		est.ResponseTimeEstimate = "24-48 hours"
	}
	return est
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
