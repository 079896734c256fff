package device

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nerrad567/biosignal-hal/internal/reliability"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want reliability.Outcome
	}{
		{"plain error", errors.New("x"), reliability.Unclassified},
		{"communication", WrapFailure(io.EOF, ClassCommunication, CodeLinkLost), reliability.Recoverable},
		{"hardware", WrapFailure(io.EOF, ClassHardware, CodeDeviceFault), reliability.Recoverable},
		{"configuration", WrapFailure(io.EOF, ClassConfiguration, CodeInvalidAddress), reliability.Terminal},
		{"state", stateConflict("busy"), reliability.Terminal},
		{"wrapped failure", errors.Join(errors.New("ctx"), WrapFailure(io.EOF, ClassCommunication, CodeTimeout)), reliability.Recoverable},
		{
			"mixed classes",
			NewFailure(
				HardwareError{Class: ClassCommunication, Code: CodeTimeout},
				HardwareError{Class: ClassConfiguration, Code: CodeUnsupportedSetup},
			),
			reliability.Terminal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFailure_ErrorsIsCopy(t *testing.T) {
	f := recoverableFailure(2)
	errs := f.Errors()
	errs[0].Message = "mutated"

	if f.Errors()[0].Message == "mutated" {
		t.Error("Errors() should return a copy")
	}
	if f.Len() != 2 {
		t.Errorf("Len() = %d, want 2", f.Len())
	}
}

func TestFailure_Unwrap(t *testing.T) {
	f := WrapFailure(io.ErrUnexpectedEOF, ClassCommunication, CodeLinkLost)

	if !errors.Is(f, io.ErrUnexpectedEOF) {
		t.Error("errors.Is should reach the cause")
	}
	if errors.Is(f, ErrStateConflict) {
		t.Error("communication failure should not match ErrStateConflict")
	}
	if f.Errors()[0].Message != io.ErrUnexpectedEOF.Error() {
		t.Errorf("message = %q", f.Errors()[0].Message)
	}
}

func TestFailure_ErrorString(t *testing.T) {
	single := WrapFailure(io.EOF, ClassCommunication, CodeLinkLost)
	if got := single.Error(); !strings.Contains(got, "communication/2002") {
		t.Errorf("Error() = %q", got)
	}

	multi := recoverableFailure(3)
	if got := multi.Error(); !strings.Contains(got, "3 errors") {
		t.Errorf("Error() = %q", got)
	}

	if got := WrapFailure(nil, ClassUnknown, 0).Error(); !strings.Contains(got, "unknown failure") {
		t.Errorf("Error() = %q", got)
	}
}

func TestStatus(t *testing.T) {
	if !StatusConnected.IsAnyOf(StatusConnecting, StatusConnected) {
		t.Error("IsAnyOf should match")
	}
	if StatusError.IsAnyOf() {
		t.Error("IsAnyOf() with no states should be false")
	}
	for _, s := range AllStatuses() {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("bogus").IsValid() {
		t.Error("bogus status should be invalid")
	}
}
