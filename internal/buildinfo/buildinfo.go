// Package buildinfo holds values stamped in at link time with -ldflags -X.
package buildinfo

import "fmt"

const Graffiti = "  ___ _      _   __  __ ___ \n / __| |    /_\\ |  \\/  | _ \\\n| (__| |__ / _ \\| |\\/| |  _/\n \\___|____/_/ \\_\\_|  |_|_|  \n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "CLAMP"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

// String is the one-line version banner.
func (b buildinfo) String() string {
	if b.Time() == "" {
		return fmt.Sprintf("%s %s", b.Name(), b.Tag())
	}
	return fmt.Sprintf("%s %s (built %s)", b.Name(), b.Tag(), b.Time())
}

var Info buildinfo
