package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	. "github.com/onsi/gomega"
)

func TestWrapNil(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Wrap(Copy, "copy", "/x", nil)).To(BeNil())
}

func TestWrapKeepsChain(t *testing.T) {
	g := NewWithT(t)

	err := Wrap(Deletion, "remove", "/src/a.txt", fs.ErrPermission)
	wrapped := fmt.Errorf("retention: %w", err)

	g.Expect(stderrors.Is(wrapped, fs.ErrPermission)).To(BeTrue())
	g.Expect(KindOf(wrapped)).To(Equal(Deletion))
	g.Expect(err.Error()).To(Equal("remove: /src/a.txt: permission denied"))
}

func TestKindOfPlainError(t *testing.T) {
	g := NewWithT(t)
	g.Expect(KindOf(stderrors.New("boom"))).To(Equal(Internal))
}

func TestFatal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{Wrap(AttributeRead, "stat", "a", fs.ErrNotExist), false},
		{Wrap(Deletion, "remove", "a", fs.ErrPermission), false},
		{Wrap(Copy, "copy", "a", fs.ErrPermission), false},
		{Wrap(ReportCommit, "commit", "r", fs.ErrInvalid), true},
		{Wrap(IOFailure, "list", "d", fs.ErrNotExist), true},
		{stderrors.New("plain"), true},
	}

	for _, tt := range tests {
		if got := Fatal(tt.err); got != tt.want {
			t.Errorf("Fatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	g := NewWithT(t)

	g.Expect(ExitCode(nil)).To(Equal(0))
	g.Expect(ExitCode(Configf("days", "must be >= 0, got %d", -1))).To(Equal(2))
	g.Expect(ExitCode(Wrap(ReportCommit, "commit", "r", fs.ErrInvalid))).To(Equal(1))
	g.Expect(ExitCode(stderrors.New("plain"))).To(Equal(1))
}

func TestUserMessage(t *testing.T) {
	g := NewWithT(t)

	g.Expect(UserMessage(Configf("days", "must be >= 0"))).
		To(Equal("Invalid configuration: days: must be >= 0"))
	g.Expect(UserMessage(Wrap(ReportCommit, "commit", "/logs/backupsTo.log", fs.ErrInvalid))).
		To(ContainSubstring("/logs/backupsTo.log"))
	g.Expect(UserMessage(stderrors.New("plain"))).To(Equal("plain"))
}
