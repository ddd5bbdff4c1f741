package validate

import (
	"testing"

	"github.com/canonical/upload-charm-docs/internal/table"
)

func row(level int) table.Row {
	return table.Row{Level: level, Path: "x", Navlink: table.Navlink{Title: "X"}}
}

func TestLevelsValid(t *testing.T) {
	t.Parallel()

	rows := []table.Row{row(1), row(2), row(2), row(1), row(2), row(3)}
	if err := Levels(rows); err != nil {
		t.Errorf("Levels() error = %v, want nil", err)
	}
}

func TestLevelsEmpty(t *testing.T) {
	t.Parallel()
	if err := Levels(nil); err != nil {
		t.Errorf("Levels() error = %v, want nil for empty input", err)
	}
}

func TestLevelsFirstRowNotOne(t *testing.T) {
	t.Parallel()
	rows := []table.Row{row(2)}
	if err := Levels(rows); err == nil {
		t.Error("Levels() with first row level != 1 should return an error")
	}
}

func TestLevelsZeroOrNegative(t *testing.T) {
	t.Parallel()
	rows := []table.Row{row(1), row(0)}
	if err := Levels(rows); err == nil {
		t.Error("Levels() with a zero level should return an error")
	}
}

func TestLevelsJumpTooFar(t *testing.T) {
	t.Parallel()
	rows := []table.Row{row(1), row(3)}
	if err := Levels(rows); err == nil {
		t.Error("Levels() with a jump of more than 1 should return an error")
	}
}
