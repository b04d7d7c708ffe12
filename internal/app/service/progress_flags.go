package service

import (
	"github.com/medikart/medikart-backend/internal/app/model"
)

// stepDocKeys maps flag index i to the document key whose presence marks
// step i+1 complete.
var stepDocKeys = [model.NumSteps]string{
	model.DocKeyStep1,
	model.DocKeyStep2,
	model.DocKeyStep3,
	model.DocKeyStep4,
	model.DocKeyStep5,
	model.DocKeyFinal,
}

// ReconcileFlags derives the six completion flags and their count from the
// step counters and the merged document. Pure; runs on both the read path
// (to heal rows whose stored flags drifted) and the write path.
//
// Flags only ever move false -> true:
//   - every step below max(existingStep, newStep) is forced complete
//     (reaching step K implies 1..K-1 are done)
//   - a populated stepN sub-object marks step N complete, and a populated
//     final sub-object marks step 6 complete, regardless of step counters
//   - explicitComplete forces the flag at newStep
func ReconcileFlags(existing [model.NumSteps]bool, existingStep, newStep int, doc model.JSONDocument, explicitComplete bool) ([model.NumSteps]bool, int) {
	flags := existing

	maxReached := existingStep
	if newStep > maxReached {
		maxReached = newStep
	}
	for i := 1; i < maxReached && i <= model.NumSteps; i++ {
		flags[i-1] = true
	}

	for i, key := range stepDocKeys {
		if hasContent(doc, key) {
			flags[i] = true
		}
	}

	if explicitComplete && newStep >= 1 && newStep <= model.NumSteps {
		flags[newStep-1] = true
	}

	count := 0
	for _, f := range flags {
		if f {
			count++
		}
	}
	return flags, count
}

// hasContent reports whether the document holds a truthy value at key. An
// explicit null or an empty sub-object does not count.
func hasContent(doc model.JSONDocument, key string) bool {
	if doc == nil {
		return false
	}
	v, ok := doc[key]
	if !ok || v == nil {
		return false
	}
	if m, isMap := v.(map[string]interface{}); isMap {
		return len(m) > 0
	}
	return true
}
