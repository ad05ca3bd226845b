// Package buildinfo exposes build-time information about confread.
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/constellation39/confread/buildinfo.version=1.0.0
//	  -X github.com/constellation39/confread/buildinfo.commit=$(git rev-parse HEAD)
//	  -X 'github.com/constellation39/confread/buildinfo.buildTime=$(date -u '+%Y-%m-%d %H:%M:%S')'
//	  -X github.com/constellation39/confread/buildinfo.debug=false"
package buildinfo

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	debug     = "true"
)

// Info is the parsed build information.
type Info struct {
	Version   string
	Commit    string
	BuildTime time.Time
	Debug     bool
}

var instance = parse(version, commit, buildTime, debug)

func parse(version, commit, buildTime, debug string) *Info {
	t, err := time.Parse(time.DateTime, buildTime)
	if err != nil {
		t = time.Time{}
	}

	isDebug, err := strconv.ParseBool(debug)
	if err != nil {
		isDebug = true
	}

	return &Info{
		Version:   version,
		Commit:    commit,
		BuildTime: t,
		Debug:     isDebug,
	}
}

// Get returns the build information
func Get() *Info {
	return instance
}

// IsDebug returns whether this is a debug build
func IsDebug() bool {
	return instance.Debug
}

// String returns a one-line description suitable for --version.
func (i *Info) String() string {
	mode := "debug"
	if !i.Debug {
		mode = "release"
	}

	built := "unknown"
	if !i.BuildTime.IsZero() {
		built = i.BuildTime.Format(time.RFC3339)
	}

	return fmt.Sprintf("%s (%s, commit %.8s, built %s)", i.Version, mode, i.Commit, built)
}

// Fields returns the build information as log fields.
func (i *Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("version", i.Version),
		zap.String("commit", i.Commit),
		zap.Time("build_time", i.BuildTime),
		zap.Bool("debug", i.Debug),
	}
}
