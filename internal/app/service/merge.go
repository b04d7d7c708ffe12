package service

// MergeDocuments deep-merges patch into base and returns a new document.
// Neither input is mutated.
//
// Rules, per key in patch:
//   - a nil value is stored as nil (an explicit clear, distinct from
//     omitting the key, which leaves the base value alone)
//   - when both sides hold plain maps, merge recurses
//   - anything else (array, primitive, type mismatch) replaces the base
//     value wholesale
//
// Keys present only in base are preserved, so a patch touching only step4
// never perturbs step1..step3.
func MergeDocuments(base, patch map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(patch))
	for k, v := range base {
		result[k] = v
	}

	for k, patchVal := range patch {
		if patchVal == nil {
			result[k] = nil
			continue
		}

		patchMap, patchIsMap := patchVal.(map[string]interface{})
		if !patchIsMap {
			result[k] = patchVal
			continue
		}

		baseMap, baseIsMap := result[k].(map[string]interface{})
		if baseIsMap {
			result[k] = MergeDocuments(baseMap, patchMap)
		} else {
			// Copy so the result never aliases the caller's patch
			result[k] = MergeDocuments(nil, patchMap)
		}
	}

	return result
}
