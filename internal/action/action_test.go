package action

import (
	"testing"

	"github.com/canonical/upload-charm-docs/internal/table"
)

func TestKindString(t *testing.T) {
	t.Parallel()
	cases := map[Kind]string{Create: "create", Update: "update", Delete: "delete", Noop: "noop", Kind(99): "unknown"}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestResultString(t *testing.T) {
	t.Parallel()
	cases := map[Result]string{Success: "success", Skipped: "skip", Fail: "fail", Result(99): "unknown"}
	for result, want := range cases {
		if got := result.String(); got != want {
			t.Errorf("Result(%d).String() = %q, want %q", result, got, want)
		}
	}
}

func TestNewCreate(t *testing.T) {
	t.Parallel()
	content := "body"
	act := NewCreate(2, "intro-getting-started", "Getting Started", &content)
	if act.Kind != Create || act.Level != 2 || act.Path != "intro-getting-started" || act.Title != "Getting Started" {
		t.Errorf("NewCreate() = %+v", act)
	}
	if act.Content == nil || *act.Content != content {
		t.Errorf("NewCreate() Content = %v, want %q", act.Content, content)
	}
}

func TestNewDeleteCarriesRemoteRow(t *testing.T) {
	t.Parallel()
	row := table.Row{Level: 1, Path: "old", Navlink: table.Navlink{Title: "Old", Link: table.NewLink("/t/old/1")}}
	act := NewDelete(row)
	if act.Kind != Delete || act.Level != 1 || act.Path != "old" || act.RemoteRow != row {
		t.Errorf("NewDelete() = %+v", act)
	}
}

func TestNewNoopCarriesRowAndContent(t *testing.T) {
	t.Parallel()
	row := table.Row{Level: 1, Path: "intro", Navlink: table.Navlink{Title: "Intro", Link: table.NewLink("/t/intro/1")}}
	content := "unchanged"
	act := NewNoop(row, &content)
	if act.Kind != Noop || act.Row != row || act.RowContent == nil || *act.RowContent != content {
		t.Errorf("NewNoop() = %+v", act)
	}
}

func TestNewUpdateCarriesOldAndNew(t *testing.T) {
	t.Parallel()
	oldNav := table.Navlink{Title: "Old Title", Link: table.NewLink("/t/topic/1")}
	newNav := table.Navlink{Title: "New Title", Link: table.NewLink("/t/topic/1")}
	oldContent, newContent := "old", "new"

	act := NewUpdate(1, "topic", oldNav, newNav, &oldContent, &newContent)
	if act.Kind != Update || act.OldNavlink != oldNav || act.NewNavlink != newNav {
		t.Errorf("NewUpdate() = %+v", act)
	}
	if act.OldContent == nil || *act.OldContent != oldContent || act.NewContent == nil || *act.NewContent != newContent {
		t.Errorf("NewUpdate() content = %+v", act)
	}
}
