package diag

import "fmt"

// Subject locates a finding inside the loaded artifacts. Index is the record
// index within Artifact, or -1 when the finding is about the artifact as a
// whole.
type Subject struct {
	Artifact string `json:"artifact" yaml:"artifact"`
	Index    int    `json:"index" yaml:"index"`
	TS       int64  `json:"ts,omitempty" yaml:"ts,omitempty"`
}

func (s Subject) String() string {
	if s.Index < 0 {
		return s.Artifact
	}
	return fmt.Sprintf("%s[%d]", s.Artifact, s.Index)
}

type Note struct {
	Subject Subject `json:"subject" yaml:"subject"`
	Msg     string  `json:"msg" yaml:"msg"`
}

type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     Code     `json:"code" yaml:"code"`
	Message  string   `json:"message" yaml:"message"`
	Primary  Subject  `json:"primary" yaml:"primary"`
	Notes    []Note   `json:"notes,omitempty" yaml:"notes,omitempty"`
}
