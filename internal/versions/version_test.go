package versions

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	vcs := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2025-03-04T05:06:07Z"},
	}

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
		settings  []debug.BuildSetting
		want      Info
	}{
		{
			name:      "release build keeps ldflags values",
			version:   "v1.2.3",
			commit:    "abc",
			buildDate: "2025-01-02T03:04:05Z",
			settings:  vcs,
			want:      Info{Version: "v1.2.3", Commit: "abc", BuildDate: "2025-01-02 03:04:05 UTC"},
		},
		{
			name:      "dev build reads vcs settings",
			version:   "dev",
			commit:    unknown,
			buildDate: unknown,
			settings:  vcs,
			want:      Info{Version: "build-01234567", Commit: "0123456789abcdef", BuildDate: "2025-03-04 05:06:07 UTC"},
		},
		{
			name:      "dev build without vcs",
			version:   "dev",
			commit:    unknown,
			buildDate: unknown,
			want:      Info{Version: "build-unknown", Commit: unknown, BuildDate: unknown},
		},
		{
			name:      "unparseable date is kept",
			version:   "v0.1.0",
			commit:    "abc",
			buildDate: "yesterday",
			want:      Info{Version: "v0.1.0", Commit: "abc", BuildDate: "yesterday"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := resolve(tt.version, tt.commit, tt.buildDate, tt.settings)
			tt.want.GoVersion = runtime.Version()
			tt.want.Platform = runtime.GOOS + "/" + runtime.GOARCH
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInfoString(t *testing.T) {
	t.Parallel()
	info := Info{Version: "v1.0.0", Commit: "abc", BuildDate: "today", GoVersion: "go1.25", Platform: "linux/amd64"}
	assert.Equal(t, "usersync v1.0.0 (commit abc, built today, go1.25 linux/amd64)", info.String())
}
