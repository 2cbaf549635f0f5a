package model

// Status is the quality label assigned to a scored record
type Status string

const (
	StatusValid         Status = "Valid"         // Confident the place is real
	StatusReview        Status = "Review"        // Grey zone, needs a human look
	StatusLikelyInvalid Status = "LikelyInvalid" // Too weak to trust
)

// NeedsReview reports whether a record belongs in the manual review extract
func (s Status) NeedsReview() bool {
	return s == StatusReview || s == StatusLikelyInvalid
}

// ScoredRecord is one input row augmented with its score and status.
// Row holds the original cells untouched so every input column survives to the output.
type ScoredRecord struct {
	Index    int         `json:"index"` // Position of the row in the input table (0-based)
	Row      Row         `json:"-"`
	Record   PlaceRecord `json:"record"`
	Features Features    `json:"features"`
	Score    Score       `json:"score"`
}

// Score is the transparent scoring breakdown for one record
type Score struct {
	Value    float64  `json:"value"`    // Clamped score in [0, 100]
	Raw      float64  `json:"raw"`      // Sum of all blocks before clamping
	Status   Status   `json:"status"`   // Final status after overrides
	Override bool     `json:"override"` // Whether the chain override changed the status
	Signals  []Signal `json:"signals"`  // One signal per scoring block, plus overrides
}

// Signal represents a scoring block result with transparent data
type Signal struct {
	Type         SignalType             `json:"type"`
	Severity     SignalSeverity         `json:"severity"`
	Description  string                 `json:"description"`
	Contribution float64                `json:"contribution"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the scoring block that produced a signal
type SignalType string

const (
	SignalCompleteness  SignalType = "completeness"   // Presence of core attributes
	SignalFreshness     SignalType = "freshness"      // Age of the last edit
	SignalAddress       SignalType = "address"        // Tagged vs geocoded address agreement
	SignalNameQuality   SignalType = "name_quality"   // Name, type and cuisine plausibility
	SignalPenalties     SignalType = "penalties"      // Red flags
	SignalChainOverride SignalType = "chain_override" // Known brand rescued from LikelyInvalid
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// StatusCounts tallies statuses across a scoring run
type StatusCounts struct {
	Total         int `json:"total"`
	Valid         int `json:"valid"`
	Review        int `json:"review"`
	LikelyInvalid int `json:"likely_invalid"`
}

// Add counts one status
func (c *StatusCounts) Add(s Status) {
	c.Total++
	switch s {
	case StatusValid:
		c.Valid++
	case StatusReview:
		c.Review++
	case StatusLikelyInvalid:
		c.LikelyInvalid++
	}
}

// CountStatuses tallies the statuses of the given records
func CountStatuses(records []ScoredRecord) StatusCounts {
	var c StatusCounts
	for _, r := range records {
		c.Add(r.Score.Status)
	}
	return c
}
