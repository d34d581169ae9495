// Package compileinfo describes the build of the running binary, so that the
// log of every merge records which code produced it.
package compileinfo

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

type CompileInfo struct {
	Package    string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	mod := ""
	if c.Modified {
		mod = " Files in the repo were modified after that commit."
	}

	return fmt.Sprintf("This %s %s binary was built with %s at commit %v at time %v.%s", c.Package, c.Version, c.GoVersion, c.Commit, c.CommitTime, mod)
}

// Fields returns the build information as structured log fields.
func (c CompileInfo) Fields() []zap.Field {
	return []zap.Field{
		zap.String("package", c.Package),
		zap.String("version", c.Version),
		zap.String("go", c.GoVersion),
		zap.String("commit", c.Commit),
		zap.String("commitTime", c.CommitTime),
		zap.Bool("modified", c.Modified),
	}
}

func Get() CompileInfo {
	out := CompileInfo{}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	return fromBuildInfo(z)
}

func fromBuildInfo(z *debug.BuildInfo) CompileInfo {
	out := CompileInfo{
		GoVersion: z.GoVersion,
		Package:   z.Path,
		Version:   z.Main.Version,
	}
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// Log records the build at info level.
func Log(logger *zap.Logger) {
	logger.Info("Build", Get().Fields()...)
}
