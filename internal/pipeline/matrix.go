package pipeline

// VendorMatrix maps vendor -> analyte -> ordered hits. Every vendor entry
// carries a slot for each requested analyte, empty slots included, so
// completeness checks never hit missing keys. Hit order within a slot is the
// order hits were accumulated (task completion order, not URL order).
type VendorMatrix map[string]map[string][]PageHit

// Ingest builds a matrix from the accumulated hit list. Vendors with partial
// analyte coverage are retained; completeness is applied by Complete, not
// during accumulation.
func Ingest(hits []PageHit, analytes []string) VendorMatrix {
	m := make(VendorMatrix)
	for _, hit := range hits {
		slots, ok := m[hit.Vendor]
		if !ok {
			slots = make(map[string][]PageHit, len(analytes))
			for _, a := range analytes {
				slots[a] = nil
			}
			m[hit.Vendor] = slots
		}
		slots[hit.Analyte] = append(slots[hit.Analyte], hit)
	}
	return m
}

// Complete returns the sub-matrix of vendors that have at least one hit for
// every requested analyte. It recomputes from scratch on each call; hit
// volume is bounded by the fetch cap, so the filter stays cheap.
func (m VendorMatrix) Complete(analytes []string) VendorMatrix {
	out := make(VendorMatrix)
	for vendor, slots := range m {
		covered := true
		for _, a := range analytes {
			if len(slots[a]) == 0 {
				covered = false
				break
			}
		}
		if covered {
			out[vendor] = slots
		}
	}
	return out
}
