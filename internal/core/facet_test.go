package core

import (
	"reflect"
	"testing"
)

func TestExtractFolders(t *testing.T) {
	records := []Record{
		{ColCollectionFolder: "Rock"},
		{ColCollectionFolder: "Jazz"},
		{ColCollectionFolder: ""},
		{ColCollectionFolder: "Rock"},
		{ColArtist: "no folder column"},
	}

	got := ExtractFolders(records)
	want := []FolderCount{
		{Folder: "Jazz", Count: 1},
		{Folder: "Rock", Count: 2},
		{Folder: UncategorizedFolder, Count: 2},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractFolders() = %v, want %v", got, want)
	}

	if names := FolderNames(got); !reflect.DeepEqual(names, []string{"Jazz", "Rock", UncategorizedFolder}) {
		t.Errorf("FolderNames() = %v", names)
	}
}

func TestExtractFolders_Empty(t *testing.T) {
	if got := ExtractFolders(nil); len(got) != 0 {
		t.Errorf("ExtractFolders(nil) = %v, want empty", got)
	}
}

func TestSelection_ZeroValueIsUnset(t *testing.T) {
	var s Selection

	if s.IsSet() {
		t.Error("zero Selection should be unset")
	}
	if !s.Contains("anything") {
		t.Error("unset Selection should contain every folder")
	}
	if s.Folders() != nil {
		t.Errorf("Folders() = %v, want nil", s.Folders())
	}
}

func TestSelection_ToggleIdempotent(t *testing.T) {
	var s Selection
	s.Reset([]string{"Jazz", "Rock"})

	if !s.SetFolderSelected("Rock", false) {
		t.Error("first removal should report a change")
	}
	first := s.Folders()

	if s.SetFolderSelected("Rock", false) {
		t.Error("second removal should report no change")
	}
	if second := s.Folders(); !reflect.DeepEqual(first, second) {
		t.Errorf("after second removal Folders() = %v, want %v", second, first)
	}

	if !s.SetFolderSelected("Rock", true) {
		t.Error("re-adding should report a change")
	}
	if s.SetFolderSelected("Rock", true) {
		t.Error("adding a present folder should report no change")
	}
	if got := s.Folders(); !reflect.DeepEqual(got, []string{"Jazz", "Rock"}) {
		t.Errorf("Folders() = %v", got)
	}
}

func TestSelection_ClearMatchesNothing(t *testing.T) {
	var s Selection
	s.Reset([]string{"Jazz"})
	s.Clear()

	if !s.IsSet() {
		t.Error("cleared Selection should still be set")
	}
	if s.Contains("Jazz") {
		t.Error("cleared Selection should contain nothing")
	}
	if got := s.Folders(); len(got) != 0 {
		t.Errorf("Folders() = %v, want empty", got)
	}
}

func TestSelection_FirstToggleFromUnset(t *testing.T) {
	var s Selection
	s.SetFolderSelected("Jazz", true)

	if !s.IsSet() {
		t.Fatal("toggle should set the selection")
	}
	if s.Contains("Rock") {
		t.Error("only the toggled folder should be selected")
	}
}

func TestSelection_CloneIsIndependent(t *testing.T) {
	var s Selection
	s.Reset([]string{"Jazz"})

	c := s.clone()
	c.SetFolderSelected("Rock", true)

	if s.Contains("Rock") {
		t.Error("mutating the clone changed the original")
	}
}
