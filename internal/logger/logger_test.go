package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		DebugLevel: zapcore.DebugLevel,
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		"bogus":    zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Errorf("toZapLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel(WarnLevel) {
		t.Error("warn should be valid")
	}
	if ValidLevel("verbose") {
		t.Error("verbose should be invalid")
	}
}

func TestGetIsSingleton(t *testing.T) {
	a := Get(DebugLevel)
	b := Get(ErrorLevel)
	if a != b {
		t.Error("expected the same logger instance")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Infow("discarded", "k", 1)
}
