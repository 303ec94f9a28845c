package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		input string
		want  Intent
	}{
		{"sysinfo", DeviceStatusInquiry},
		{"SysInfo  ", DeviceStatusInquiry},
		{"  SYSINFO", DeviceStatusInquiry},
		{"how is my battery", GeneralAdviceRequest},
		{"what's the capital of France", OutOfScope},
		{"sysinfo please", OutOfScope},
		{"sysinfo phone", GeneralAdviceRequest},
		{"sys-info", OutOfScope},
		{"", OutOfScope},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.input))
		})
	}
}

func TestClassifyUsesGivenLexicon(t *testing.T) {
	c := NewClassifier(NewLexicon([]string{"capital"}))

	assert.Equal(t, GeneralAdviceRequest, c.Classify("what's the capital of France"))
	assert.Equal(t, OutOfScope, c.Classify("how is my battery"))
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "device_status_inquiry", DeviceStatusInquiry.String())
	assert.Equal(t, "general_advice_request", GeneralAdviceRequest.String())
	assert.Equal(t, "out_of_scope", OutOfScope.String())
	assert.Equal(t, "unknown", Intent(42).String())
}
