package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Tag is set with -ldflags "-X github.com/agalitsyn/todo-list/version.Tag=v1.2.3".
var Tag string

type Info struct {
	Tag      string
	Revision string
	BuildAt  time.Time
	Dirty    bool
}

var current = readInfo(debug.ReadBuildInfo)

func readInfo(read func() (*debug.BuildInfo, bool)) Info {
	info := Info{Tag: Tag}
	buildInfo, ok := read()
	if !ok {
		return info
	}

	for _, setting := range buildInfo.Settings {
		// https://pkg.go.dev/runtime/debug#BuildSetting
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				info.BuildAt = t
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	return info
}

func (i Info) String() string {
	// go run
	if i.Revision == "" {
		return "dev"
	}

	rev := i.Revision
	if len(rev) > 7 {
		rev = rev[:7]
	}

	s := rev
	if i.Tag != "" {
		s = i.Tag + " " + rev
	}
	if !i.BuildAt.IsZero() {
		s += fmt.Sprintf(" at %s", i.BuildAt.Format("2006-01-02 15:04:05"))
	}
	if i.Dirty {
		s += " dirty"
	}
	return s
}

func String() string {
	info := current
	if Tag != "" {
		info.Tag = Tag
	}
	return info.String()
}
