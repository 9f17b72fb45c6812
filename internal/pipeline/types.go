package pipeline

// PageHit is the classification result for one successfully fetched page.
// It is immutable once created and owned by the aggregation step after being
// appended to the run's hit list.
type PageHit struct {
	FinalURL     string
	Vendor       string
	Analyte      string
	Title        string
	SpeciesFound bool
	SamplesFound bool
	HasElisa     bool
}

// Gates toggles the accept/reject checks applied to classified pages. An
// enabled gate drops the hit entirely when its flag is false.
type Gates struct {
	RequireSpecies bool
	RequireSamples bool
	RequireElisa   bool
}
