package inventory

import (
	"math"
	"time"
)

// AgingBucket tramo de antigüedad de una capa.
type AgingBucket string

const (
	Bucket0To30   AgingBucket = "0-30"
	Bucket30To60  AgingBucket = "30-60"
	Bucket60To90  AgingBucket = "60-90"
	Bucket90To180 AgingBucket = "90-180"
	Bucket180Plus AgingBucket = "180+"
)

// RiskTier nivel de riesgo de obsolescencia.
type RiskTier string

const (
	RiskLow      RiskTier = "low"
	RiskMedium   RiskTier = "medium"
	RiskHigh     RiskTier = "high"
	RiskCritical RiskTier = "critical"
)

// Buckets en orden de presentación.
var Buckets = []AgingBucket{Bucket0To30, Bucket30To60, Bucket60To90, Bucket90To180, Bucket180Plus}

// agingThresholds se evalúa de mayor a menor; el primer umbral alcanzado gana.
var agingThresholds = []struct {
	minDays int
	bucket  AgingBucket
	risk    RiskTier
}{
	{180, Bucket180Plus, RiskCritical},
	{90, Bucket90To180, RiskHigh},
	{60, Bucket60To90, RiskMedium},
	{30, Bucket30To60, RiskLow},
}

// AgeInDays días completos (periodos de 24h) entre receivedAt y asOf. Nunca negativo.
func AgeInDays(receivedAt, asOf time.Time) int {
	d := asOf.Sub(receivedAt)
	if d <= 0 {
		return 0
	}
	return int(math.Floor(d.Hours() / 24))
}

// ClassifyAge asigna tramo y riesgo. Los límites son cerrados por abajo: 180 días ya es crítico.
func ClassifyAge(ageDays int) (AgingBucket, RiskTier) {
	for _, t := range agingThresholds {
		if ageDays >= t.minDays {
			return t.bucket, t.risk
		}
	}
	return Bucket0To30, RiskLow
}

// MinDays límite inferior del tramo.
func (b AgingBucket) MinDays() int {
	for _, t := range agingThresholds {
		if t.bucket == b {
			return t.minDays
		}
	}
	return 0
}
