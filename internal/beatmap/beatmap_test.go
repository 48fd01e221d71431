package beatmap

import "testing"

func TestReportFull(t *testing.T) {
	cases := []struct {
		name string
		r    Report
		want string
	}{
		{"normal", Report{SongsRoot: "/home/u/Songs", RelativePath: "Artist - Title/map.osu"}, "/home/u/Songs/Artist - Title/map.osu"},
		{"trailing slash on root", Report{SongsRoot: "/home/u/Songs/", RelativePath: "x/y.osu"}, "/home/u/Songs/x/y.osu"},
		{"unresolved root", Report{SongsRoot: "", RelativePath: "x/y.osu"}, "x/y.osu"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.r.Full(); got != c.want {
				t.Errorf("Full() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	cases := []struct {
		folder, file, want string
	}{
		{"Songs", "map.osu", "Songs/map.osu"},
		{"Songs", `sub\folder\map.osu`, "Songs/sub/folder/map.osu"},
		{`Artist - Title`, "map.osu", "Artist - Title/map.osu"},
	}
	for _, c := range cases {
		if got := Join(c.folder, c.file); got != c.want {
			t.Errorf("Join(%q, %q) = %q, want %q", c.folder, c.file, got, c.want)
		}
	}
}
