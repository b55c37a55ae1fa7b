package domain

// FeatureSet holds the raw (or normalized) applicant fields keyed by
// canonical field name. Numeric covers numbers and 0/1 binary flags;
// Categorical covers string-valued fields such as entity type.
type FeatureSet struct {
	Numeric     map[string]float64 `json:"numeric,omitempty"`
	Categorical map[string]string  `json:"categorical,omitempty"`
}

// NewFeatureSet returns an empty feature set with allocated maps.
func NewFeatureSet() FeatureSet {
	return FeatureSet{
		Numeric:     make(map[string]float64),
		Categorical: make(map[string]string),
	}
}

// Num returns a numeric field and whether it was present.
func (f FeatureSet) Num(name string) (float64, bool) {
	v, ok := f.Numeric[name]
	return v, ok
}

// Cat returns a categorical field and whether it was present.
func (f FeatureSet) Cat(name string) (string, bool) {
	v, ok := f.Categorical[name]
	return v, ok
}

// Clone returns a deep copy. Normalization works on a copy so the
// caller-supplied feature set is never mutated.
func (f FeatureSet) Clone() FeatureSet {
	out := FeatureSet{
		Numeric:     make(map[string]float64, len(f.Numeric)),
		Categorical: make(map[string]string, len(f.Categorical)),
	}
	for k, v := range f.Numeric {
		out.Numeric[k] = v
	}
	for k, v := range f.Categorical {
		out.Categorical[k] = v
	}
	return out
}
