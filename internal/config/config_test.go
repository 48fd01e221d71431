package config

import "testing"

func TestNewDefaults(t *testing.T) {
	o := New()
	if o.RunOnce {
		t.Error("RunOnce default should be false")
	}
	if o.WriteToFile {
		t.Error("WriteToFile default should be false")
	}
	if o.FilePath != DefaultFilePath {
		t.Errorf("FilePath default = %q, want %q", o.FilePath, DefaultFilePath)
	}
}

func TestOptionOverrides(t *testing.T) {
	o := New(WithRunOnce(true), WithWriteToFile(true), WithFilePath("/custom/path"))
	if !o.RunOnce || !o.WriteToFile {
		t.Errorf("got %+v, want RunOnce/WriteToFile true", o)
	}
	if o.FilePath != "/custom/path" {
		t.Errorf("FilePath = %q, want %q", o.FilePath, "/custom/path")
	}
}

func TestWithFilePathIgnoresEmpty(t *testing.T) {
	o := New(WithFilePath(""))
	if o.FilePath != DefaultFilePath {
		t.Errorf("FilePath = %q, want unchanged default %q", o.FilePath, DefaultFilePath)
	}
}
