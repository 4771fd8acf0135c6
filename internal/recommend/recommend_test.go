package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim/freezone-audit/internal/delta"
	"github.com/karim/freezone-audit/internal/remediate"
	"github.com/karim/freezone-audit/internal/taxonomy"
)

func emptyDelta() *delta.Delta {
	return &delta.Delta{
		BothFields:    taxonomy.NewSet(),
		DBOnlyFields:  taxonomy.NewSet(),
		WebOnlyFields: taxonomy.NewSet(),
	}
}

func emptyOutcome() *remediate.Outcome {
	return &remediate.Outcome{
		FieldsImproved:     taxonomy.NewSet(),
		FieldsStillMissing: taxonomy.NewSet(),
	}
}

func TestSynthesizeEmptyInputs(t *testing.T) {
	recs := Synthesize(emptyDelta(), emptyOutcome())
	assert.Empty(t, recs)
}

func TestSynthesizeMissingFieldPriorities(t *testing.T) {
	outcome := emptyOutcome()
	outcome.FieldsStillMissing = taxonomy.NewSet(
		taxonomy.FieldFeeStructure, // weight 10 -> high
		taxonomy.FieldFacilities,   // weight 5  -> medium
		taxonomy.FieldBenefits,     // weight 4  -> low
	)

	recs := Synthesize(emptyDelta(), outcome)
	require.Len(t, recs, 3)

	byField := make(map[taxonomy.Field]Recommendation)
	for _, r := range recs {
		assert.Equal(t, ActionManualDataCollection, r.Action)
		byField[r.Field] = r
	}
	assert.Equal(t, PriorityHigh, byField[taxonomy.FieldFeeStructure].Priority)
	assert.Equal(t, PriorityMedium, byField[taxonomy.FieldFacilities].Priority)
	assert.Equal(t, PriorityLow, byField[taxonomy.FieldBenefits].Priority)
}

func TestSynthesizeMissingFieldsInCanonicalOrder(t *testing.T) {
	outcome := emptyOutcome()
	outcome.FieldsStillMissing = taxonomy.NewSet(
		taxonomy.FieldTimelines,
		taxonomy.FieldSetupProcess,
	)

	recs := Synthesize(emptyDelta(), outcome)
	require.Len(t, recs, 2)
	assert.Equal(t, taxonomy.FieldSetupProcess, recs[0].Field)
	assert.Equal(t, taxonomy.FieldTimelines, recs[1].Field)
}

func TestSynthesizeInconsistencyReconciliation(t *testing.T) {
	d := emptyDelta()
	d.Inconsistent = []delta.Inconsistency{
		{Field: taxonomy.FieldCosts, DBEvidence: "based on 2 records", Confidence: 0.5},
	}

	recs := Synthesize(d, emptyOutcome())
	require.Len(t, recs, 1)
	assert.Equal(t, PriorityMedium, recs[0].Priority)
	assert.Equal(t, ActionDataReconciliation, recs[0].Action)
	assert.Equal(t, taxonomy.FieldCosts, recs[0].Field)
	assert.Contains(t, recs[0].Details, "0.5")
}

func TestSynthesizeSkipsImprovedInconsistency(t *testing.T) {
	d := emptyDelta()
	d.Inconsistent = []delta.Inconsistency{
		{Field: taxonomy.FieldCosts, Confidence: 0.5},
	}
	outcome := emptyOutcome()
	outcome.FieldsImproved = taxonomy.NewSet(taxonomy.FieldCosts)

	recs := Synthesize(d, outcome)
	assert.Empty(t, recs)
}

func TestSynthesizeCrawlerImprovementOnFailedCrawl(t *testing.T) {
	outcome := emptyOutcome()
	outcome.Attempted = true
	outcome.Succeeded = false
	outcome.FieldsStillMissing = taxonomy.NewSet(taxonomy.FieldVisaInformation)

	recs := Synthesize(emptyDelta(), outcome)

	var crawler *Recommendation
	for i := range recs {
		if recs[i].Action == ActionCrawlerImprovement {
			crawler = &recs[i]
		}
	}
	require.NotNil(t, crawler)
	assert.Equal(t, PriorityHigh, crawler.Priority)
	assert.Contains(t, crawler.Details, "visa_information")

	// A failed crawl never produces the manual-entry follow-up.
	for _, r := range recs {
		assert.NotEqual(t, ActionManualDataEntry, r.Action)
	}
}

func TestSynthesizeManualEntryAfterSuccessfulCrawlWithGaps(t *testing.T) {
	outcome := emptyOutcome()
	outcome.Attempted = true
	outcome.Succeeded = true
	outcome.FieldsStillMissing = taxonomy.NewSet(taxonomy.FieldTimelines)

	recs := Synthesize(emptyDelta(), outcome)

	actions := make(map[Action]int)
	for _, r := range recs {
		actions[r.Action]++
	}
	// timelines shows up three times: its own missing-data entry plus both
	// aggregate follow-ups.
	assert.Equal(t, 1, actions[ActionManualDataCollection])
	assert.Equal(t, 1, actions[ActionCrawlerImprovement])
	assert.Equal(t, 1, actions[ActionManualDataEntry])
}

func TestSynthesizeSuccessfulCrawlNoGaps(t *testing.T) {
	outcome := emptyOutcome()
	outcome.Attempted = true
	outcome.Succeeded = true

	recs := Synthesize(emptyDelta(), outcome)
	assert.Empty(t, recs)
}

func TestWeightPriority(t *testing.T) {
	tests := []struct {
		weight int
		want   Priority
	}{
		{10, PriorityHigh},
		{8, PriorityHigh},
		{7, PriorityMedium},
		{5, PriorityMedium},
		{4, PriorityLow},
		{1, PriorityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, weightPriority(tt.weight), "weight %d", tt.weight)
	}
}
