package intent

import "strings"

// Intent is the bucket that selects a message handler.
type Intent int

const (
	DeviceStatusInquiry Intent = iota
	GeneralAdviceRequest
	OutOfScope
)

func (i Intent) String() string {
	switch i {
	case DeviceStatusInquiry:
		return "device_status_inquiry"
	case GeneralAdviceRequest:
		return "general_advice_request"
	case OutOfScope:
		return "out_of_scope"
	default:
		return "unknown"
	}
}

// SysinfoCommand is the exact (case-insensitive) input that requests a device report.
const SysinfoCommand = "sysinfo"

// Classifier maps raw text to an Intent. Rules are evaluated in order and the
// first match wins.
type Classifier struct {
	lexicon *Lexicon
}

// NewClassifier returns a classifier backed by lexicon, or by the default
// lexicon when lexicon is nil.
func NewClassifier(lexicon *Lexicon) *Classifier {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Classifier{lexicon: lexicon}
}

func (c *Classifier) Classify(text string) Intent {
	if strings.TrimSpace(strings.ToLower(text)) == SysinfoCommand {
		return DeviceStatusInquiry
	}

	if c.lexicon.ContainsDomainKeyword(text) {
		return GeneralAdviceRequest
	}

	return OutOfScope
}
