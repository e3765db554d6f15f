package limits

// Rule is the threshold policy for one kind. A hit exceeds the rule when
// its metric is at least Threshold; a zero Threshold flags every hit.
type Rule struct {
	Threshold int64 `toml:"threshold" json:"threshold" yaml:"threshold" validate:"gte=0"`
	// CountThreshold is read for instantiateType only: a hit whose
	// instantiation count reaches it exceeds at any depth. Zero disables it.
	CountThreshold int64 `toml:"count_threshold" json:"countThreshold,omitempty" yaml:"countThreshold,omitempty" validate:"gte=0"`
	HardError      bool  `toml:"hard_error" json:"hardError" yaml:"hardError"`
}

// Policy holds one Rule per kind. The zero Policy flags every hit and
// treats none as a hard error; use DefaultPolicy for the analyzer's limits.
type Policy struct {
	rules [kindCount]Rule
}

// DefaultPolicy mirrors the limits of current analyzer releases. The values
// move with the analyzer, so they are overridable from configuration.
func DefaultPolicy() Policy {
	var p Policy
	p.rules = [kindCount]Rule{
		InstantiateType:                    {Threshold: 100, CountThreshold: 5_000_000, HardError: true},
		RecursiveTypeRelatedTo:             {Threshold: 100},
		TypeRelatedToDiscriminatedType:     {Threshold: 25},
		CheckCrossProductUnion:             {Threshold: 100_000, HardError: true},
		GetTypeAtFlowNode:                  {HardError: true},
		RemoveSubtypes:                     {HardError: true},
		TraceUnionsOrIntersectionsTooLarge: {Threshold: 1_000_000},
		CheckTypeRelatedTo:                 {Threshold: 100, HardError: true},
	}
	return p
}

// Rule returns the rule for k.
func (p Policy) Rule(k Kind) Rule {
	if k >= kindCount {
		return Rule{}
	}
	return p.rules[k]
}

// With returns a copy of p with the rule for k replaced.
func (p Policy) With(k Kind, r Rule) Policy {
	if k < kindCount {
		p.rules[k] = r
	}
	return p
}
